package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by stores and
// services to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// Exercise errors
var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrSourceUnavailable = errors.New("exercise source unavailable")
)

// Progress errors
var (
	ErrUserNotFound    = errors.New("user progress not found")
	ErrInvalidProgress = errors.New("invalid user progress")
)

// Sandbox errors
var (
	ErrSandboxUnavailable = errors.New("execution service unavailable")
)

// General errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Package progress tracks per-learner exercise completion state.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cqlclinic/clinic/internal/domain"
)

// Store persists progress records
type Store interface {
	Save(ctx context.Context, progress *domain.UserProgress) error
	Get(ctx context.Context, userID string) (*domain.UserProgress, error)
}

// Publisher announces exercise completions to interested consumers.
// Publishing is best effort; a broker outage never fails the attempt.
type Publisher interface {
	PublishCompletion(ctx context.Context, userID, exerciseID string, score int) error
}

// Service coordinates progress reads and attempt recording
type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a progress service. publisher may be nil when no
// broker is configured.
func NewService(store Store, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the learner's progress record. An unknown learner gets a
// fresh empty record rather than an error; recommendations for a new
// learner are a normal case, not a failure.
func (s *Service) Get(ctx context.Context, userID string) (*domain.UserProgress, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	progress, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.NewUserProgress(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// RecordAttempt updates the learner's status for one exercise:
// attempts increment, completion is sticky, and the stored score is
// the best achieved so far.
func (s *Service) RecordAttempt(ctx context.Context, userID, exerciseID string, completed bool, score int) (*domain.UserProgress, error) {
	if userID == "" || exerciseID == "" {
		return nil, fmt.Errorf("%w: user id and exercise id are required", domain.ErrInvalidInput)
	}

	progress, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := progress.ExerciseProgress[exerciseID]
	wasCompleted := status.Completed

	status.Attempts++
	status.LastAttempt = s.now()
	if completed {
		status.Completed = true
	}
	if score > status.Score {
		status.Score = score
	}
	progress.ExerciseProgress[exerciseID] = status
	progress.UpdatedAt = s.now()

	if err := s.store.Save(ctx, progress); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	if completed && !wasCompleted && s.publisher != nil {
		if err := s.publisher.PublishCompletion(ctx, userID, exerciseID, status.Score); err != nil {
			s.logger.Warn("failed to publish completion event",
				"user_id", userID,
				"exercise_id", exerciseID,
				"error", err)
		}
	}

	return progress, nil
}

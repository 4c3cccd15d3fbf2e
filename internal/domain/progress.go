package domain

import "time"

// ExerciseStatus tracks a learner's state on a single exercise
type ExerciseStatus struct {
	Completed   bool      `json:"completed"`
	Score       int       `json:"score,omitempty"`
	Attempts    int       `json:"attempts,omitempty"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
}

// UserProgress is a learner's progress record across the exercise collection.
// It is supplied per request or loaded from the progress store.
type UserProgress struct {
	UserID           string                    `json:"user_id,omitempty"`
	ExerciseProgress map[string]ExerciseStatus `json:"exercise_progress"`
	CreatedAt        time.Time                 `json:"created_at,omitempty"`
	UpdatedAt        time.Time                 `json:"updated_at,omitempty"`
}

// NewUserProgress creates an empty progress record for a user
func NewUserProgress(userID string) *UserProgress {
	now := time.Now()
	return &UserProgress{
		UserID:           userID,
		ExerciseProgress: make(map[string]ExerciseStatus),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CompletedIDs returns the set of exercise ids marked completed
func (p *UserProgress) CompletedIDs() map[string]bool {
	completed := make(map[string]bool)
	for id, status := range p.ExerciseProgress {
		if status.Completed {
			completed[id] = true
		}
	}
	return completed
}

// CompletedCount returns how many exercises the learner has completed
func (p *UserProgress) CompletedCount() int {
	n := 0
	for _, status := range p.ExerciseProgress {
		if status.Completed {
			n++
		}
	}
	return n
}

// Valid reports whether the record is well-formed enough to score against
func (p *UserProgress) Valid() bool {
	return p != nil && p.ExerciseProgress != nil
}

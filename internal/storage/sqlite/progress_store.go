package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cqlclinic/clinic/internal/domain"
)

// ProgressStore persists learner progress records. The per-exercise
// status map is stored as a JSON document; it is read and written
// whole, never queried by field.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a progress store over an open database
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// Save upserts a progress record
func (s *ProgressStore) Save(ctx context.Context, progress *domain.UserProgress) error {
	if !progress.Valid() {
		return fmt.Errorf("%w: progress record is missing or malformed", domain.ErrInvalidProgress)
	}

	doc, err := json.Marshal(progress.ExerciseProgress)
	if err != nil {
		return fmt.Errorf("marshal exercise progress: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, exercise_progress, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			exercise_progress = excluded.exercise_progress,
			updated_at = excluded.updated_at`,
		progress.UserID, string(doc), progress.CreatedAt, progress.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save progress for %s: %w", progress.UserID, err)
	}
	return nil
}

// Get loads a progress record by user id
func (s *ProgressStore) Get(ctx context.Context, userID string) (*domain.UserProgress, error) {
	progress := &domain.UserProgress{UserID: userID}
	var doc string

	row := s.db.QueryRowContext(ctx, `
		SELECT exercise_progress, created_at, updated_at
		FROM user_progress WHERE user_id = ?`, userID)
	if err := row.Scan(&doc, &progress.CreatedAt, &progress.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("get progress for %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(doc), &progress.ExerciseProgress); err != nil {
		return nil, fmt.Errorf("unmarshal exercise progress for %s: %w", userID, err)
	}
	if progress.ExerciseProgress == nil {
		progress.ExerciseProgress = make(map[string]domain.ExerciseStatus)
	}
	return progress, nil
}

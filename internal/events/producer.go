package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SubmissionEvent records a code submission forwarded to the sandbox
type SubmissionEvent struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	ExerciseID  string    `json:"exercise_id,omitempty"`
	CodeLength  int       `json:"code_length"`
	ResultCount int       `json:"result_count"`
	ErrorCount  int       `json:"error_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CompletionEvent records a learner completing an exercise for the
// first time
type CompletionEvent struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	ExerciseID  string    `json:"exercise_id"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

// Producer publishes clinic events over an established connection
type Producer struct {
	conn   *Connection
	logger *slog.Logger
}

// NewProducer creates an event producer
func NewProducer(conn *Connection, logger *slog.Logger) *Producer {
	return &Producer{conn: conn, logger: logger}
}

// PublishSubmission announces a sandbox submission
func (p *Producer) PublishSubmission(ctx context.Context, event SubmissionEvent) error {
	event.ID = uuid.New()
	event.SubmittedAt = time.Now()

	if err := p.conn.PublishJSON(ctx, SubmissionQueueName, event); err != nil {
		return err
	}

	p.logger.Info("published submission event",
		"event_id", event.ID,
		"exercise_id", event.ExerciseID,
		"result_count", event.ResultCount)
	return nil
}

// PublishCompletion announces a first-time exercise completion
func (p *Producer) PublishCompletion(ctx context.Context, userID, exerciseID string, score int) error {
	event := CompletionEvent{
		ID:          uuid.New(),
		UserID:      userID,
		ExerciseID:  exerciseID,
		Score:       score,
		CompletedAt: time.Now(),
	}

	if err := p.conn.PublishJSON(ctx, CompletionQueueName, event); err != nil {
		return err
	}

	p.logger.Info("published completion event",
		"event_id", event.ID,
		"user_id", userID,
		"exercise_id", exerciseID)
	return nil
}

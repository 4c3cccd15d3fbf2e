package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cqlclinic/clinic/internal/events"
	"github.com/cqlclinic/clinic/internal/sandbox"
)

// maxCodeBytes bounds submitted CQL source
const maxCodeBytes = 64 * 1024

// SubmissionPublisher announces submissions to the event stream
type SubmissionPublisher interface {
	PublishSubmission(ctx context.Context, event events.SubmissionEvent) error
}

// ExecuteHandler forwards CQL code to the execution sandbox
type ExecuteHandler struct {
	sandbox   *sandbox.Client
	publisher SubmissionPublisher
	logger    *slog.Logger
}

// NewExecuteHandler creates an execute handler. publisher may be nil
// when no broker is configured.
func NewExecuteHandler(client *sandbox.Client, publisher SubmissionPublisher, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		sandbox:   client,
		publisher: publisher,
		logger:    logger,
	}
}

type executeRequest struct {
	Code       string `json:"code"`
	UserID     string `json:"user_id,omitempty"`
	ExerciseID string `json:"exercise_id,omitempty"`
}

// Execute submits code to the sandbox and relays the result list
func (h *ExecuteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCodeBytes)).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		jsonError(w, http.StatusBadRequest, "code is required")
		return
	}

	results, err := h.sandbox.Execute(r.Context(), req.Code)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	if h.publisher != nil {
		errorCount := 0
		for _, res := range results {
			if res.Error != "" {
				errorCount++
			}
		}
		event := events.SubmissionEvent{
			UserID:      req.UserID,
			ExerciseID:  req.ExerciseID,
			CodeLength:  len(req.Code),
			ResultCount: len(results),
			ErrorCount:  errorCount,
		}
		if err := h.publisher.PublishSubmission(r.Context(), event); err != nil {
			h.logger.Warn("failed to publish submission event",
				"exercise_id", req.ExerciseID,
				"error", err)
		}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

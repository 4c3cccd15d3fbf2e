package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cqlclinic/clinic/internal/progress"
)

// ProgressHandler handles learner progress endpoints
type ProgressHandler struct {
	service *progress.Service
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(service *progress.Service) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// Get returns a learner's progress record
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	p, err := h.service.Get(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, p)
}

type attemptRequest struct {
	Completed bool `json:"completed"`
	Score     int  `json:"score"`
}

// RecordAttempt records one attempt at an exercise
func (h *ProgressHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	exerciseID := r.PathValue("id")

	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Score < 0 || req.Score > 100 {
		jsonError(w, http.StatusBadRequest, "score must be between 0 and 100")
		return
	}

	p, err := h.service.RecordAttempt(r.Context(), userID, exerciseID, req.Completed, req.Score)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, p)
}

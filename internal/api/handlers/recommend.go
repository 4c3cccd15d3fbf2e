package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cqlclinic/clinic/internal/domain"
	"github.com/cqlclinic/clinic/internal/exercise"
	"github.com/cqlclinic/clinic/internal/progress"
	"github.com/cqlclinic/clinic/internal/recommend"
)

// RecommendHandler serves personalized exercise recommendations
type RecommendHandler struct {
	store    *exercise.Store
	scorer   *recommend.Scorer
	progress *progress.Service
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(store *exercise.Store, scorer *recommend.Scorer, progressSvc *progress.Service) *RecommendHandler {
	return &RecommendHandler{
		store:    store,
		scorer:   scorer,
		progress: progressSvc,
	}
}

// recommendRequest carries either a user id to load progress for, or
// an inline progress record (callers without persisted state)
type recommendRequest struct {
	UserID           string               `json:"user_id,omitempty"`
	Progress         *domain.UserProgress `json:"progress,omitempty"`
	Limit            int                  `json:"limit,omitempty"`
	IncludeCompleted bool                 `json:"include_completed,omitempty"`
}

// Recommend scores eligible exercises for the learner
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userProgress := req.Progress
	if userProgress == nil {
		if req.UserID == "" {
			jsonError(w, http.StatusBadRequest, "user_id or progress is required")
			return
		}
		var err error
		userProgress, err = h.progress.Get(r.Context(), req.UserID)
		if err != nil {
			WriteDomainError(w, r, err)
			return
		}
	}

	exercises, err := h.store.Load(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	recommendations, err := h.scorer.Recommend(r.Context(), exercises, userProgress, recommend.Options{
		Limit:            req.Limit,
		IncludeCompleted: req.IncludeCompleted,
	})
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"recommendations": recommendations,
		"total":           len(recommendations),
	})
}

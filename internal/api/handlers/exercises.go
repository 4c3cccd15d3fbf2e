package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cqlclinic/clinic/internal/domain"
	"github.com/cqlclinic/clinic/internal/exercise"
)

// ExerciseHandler handles exercise catalog endpoints
type ExerciseHandler struct {
	store *exercise.Store
}

// NewExerciseHandler creates a new exercise handler
func NewExerciseHandler(store *exercise.Store) *ExerciseHandler {
	return &ExerciseHandler{store: store}
}

// List searches the exercise collection using query parameters
func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}

	results, err := h.store.Search(r.Context(), criteria)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"exercises": results,
		"total":     len(results),
	})
}

// Get returns one exercise by id
func (h *ExerciseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ex, err := h.store.Get(r.Context(), id)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, ex)
}

// Analytics summarizes the current collection
func (h *ExerciseHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.store.Load(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, exercise.Aggregate(exercises, time.Now()))
}

// Validation reports on the prerequisite graph
func (h *ExerciseHandler) Validation(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.store.Load(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, exercise.ValidateDependencies(exercises))
}

// ClearCache drops the collection and search-result caches
func (h *ExerciseHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.store.Invalidate()

	jsonResponse(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}

// criteriaFromQuery maps URL query parameters onto search criteria
func criteriaFromQuery(r *http.Request) (exercise.SearchCriteria, error) {
	q := r.URL.Query()

	criteria := exercise.SearchCriteria{
		Query:      q.Get("q"),
		Difficulty: domain.Difficulty(q.Get("difficulty")),
		Type:       domain.ExerciseType(q.Get("type")),
		Concepts:   splitList(q.Get("concepts")),
		Tags:       splitList(q.Get("tags")),
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("sort_order"),
	}

	for param, dst := range map[string]*int{
		"time_min": &criteria.EstimatedTimeMin,
		"time_max": &criteria.EstimatedTimeMax,
		"limit":    &criteria.Limit,
		"offset":   &criteria.Offset,
	} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return exercise.SearchCriteria{}, &queryError{param: param, value: raw}
		}
		*dst = v
	}

	return criteria, nil
}

type queryError struct {
	param string
	value string
}

func (e *queryError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for parameter " + e.param
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

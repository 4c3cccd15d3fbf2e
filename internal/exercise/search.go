package exercise

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cqlclinic/clinic/internal/domain"
)

// Sort keys recognized by SearchCriteria.SortBy
const (
	SortByTitle         = "title"
	SortByDifficulty    = "difficulty"
	SortByEstimatedTime = "estimated_time"
	SortByCreated       = "created"
	SortByModified      = "modified"
	SortByQuality       = "quality"
)

// SearchCriteria is a transient query object. Every recognized field is
// enumerated; an unset field imposes no constraint. Filtering is a strict
// conjunction of all set criteria.
type SearchCriteria struct {
	Query            string              `json:"query,omitempty"`
	Difficulty       domain.Difficulty   `json:"difficulty,omitempty"`
	Type             domain.ExerciseType `json:"type,omitempty"`
	Concepts         []string            `json:"concepts,omitempty"`
	Tags             []string            `json:"tags,omitempty"`
	EstimatedTimeMin int                 `json:"estimated_time_min,omitempty"`
	EstimatedTimeMax int                 `json:"estimated_time_max,omitempty"`
	SortBy           string              `json:"sort_by,omitempty"`
	SortOrder        string              `json:"sort_order,omitempty"` // "asc" (default) or "desc"
	Limit            int                 `json:"limit,omitempty"`      // 0 = unlimited
	Offset           int                 `json:"offset,omitempty"`
}

// Key serializes the criteria into a stable cache key
func (c SearchCriteria) Key() string {
	return fmt.Sprintf("q=%s|d=%s|t=%s|c=%s|g=%s|min=%d|max=%d|sb=%s|so=%s|l=%d|o=%d",
		strings.ToLower(c.Query), c.Difficulty, c.Type,
		strings.Join(c.Concepts, ","), strings.Join(c.Tags, ","),
		c.EstimatedTimeMin, c.EstimatedTimeMax,
		c.SortBy, c.SortOrder, c.Limit, c.Offset)
}

// Search filters, sorts, and paginates the collection according to the
// criteria. The input slice is not modified.
func Search(exercises []domain.Exercise, criteria SearchCriteria) []domain.Exercise {
	matched := make([]domain.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if matches(&ex, criteria) {
			matched = append(matched, ex)
		}
	}

	sortExercises(matched, criteria.SortBy, criteria.SortOrder == "desc")

	return paginate(matched, criteria.Offset, criteria.Limit)
}

// matches applies the conjunction of all set criteria
func matches(ex *domain.Exercise, c SearchCriteria) bool {
	if c.Query != "" && !matchesQuery(ex, c.Query) {
		return false
	}
	if c.Difficulty != "" && ex.Difficulty != c.Difficulty {
		return false
	}
	if c.Type != "" && ex.Type != c.Type {
		return false
	}
	if len(c.Concepts) > 0 && !anyConcept(ex, c.Concepts) {
		return false
	}
	if len(c.Tags) > 0 && !anyTag(ex, c.Tags) {
		return false
	}
	if c.EstimatedTimeMin > 0 && ex.EstimatedTime < c.EstimatedTimeMin {
		return false
	}
	if c.EstimatedTimeMax > 0 && ex.EstimatedTime > c.EstimatedTimeMax {
		return false
	}
	return true
}

// matchesQuery does a case-insensitive substring match against title,
// description, instructions, concepts, and tags
func matchesQuery(ex *domain.Exercise, query string) bool {
	q := strings.ToLower(query)

	if strings.Contains(strings.ToLower(ex.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(ex.Description), q) {
		return true
	}
	if strings.Contains(strings.ToLower(ex.Content.Instructions), q) {
		return true
	}
	for _, c := range ex.Concepts {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	for _, t := range ex.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// anyConcept reports whether the exercise covers at least one listed concept
func anyConcept(ex *domain.Exercise, concepts []string) bool {
	for _, c := range concepts {
		if ex.HasConcept(c) {
			return true
		}
	}
	return false
}

// anyTag reports whether the exercise carries at least one listed tag
func anyTag(ex *domain.Exercise, tags []string) bool {
	for _, t := range tags {
		if ex.HasTag(t) {
			return true
		}
	}
	return false
}

// sortExercises sorts in place. The sort is stable so ties retain input
// order, which keeps pagination deterministic. An unrecognized key leaves
// the input order untouched.
func sortExercises(exercises []domain.Exercise, sortBy string, desc bool) {
	var less func(a, b *domain.Exercise) bool

	switch sortBy {
	case SortByTitle:
		less = func(a, b *domain.Exercise) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case SortByDifficulty:
		less = func(a, b *domain.Exercise) bool {
			return a.Difficulty.Ordinal() < b.Difficulty.Ordinal()
		}
	case SortByEstimatedTime:
		less = func(a, b *domain.Exercise) bool {
			return a.EstimatedTime < b.EstimatedTime
		}
	case SortByCreated:
		less = func(a, b *domain.Exercise) bool {
			return a.Metadata.Created.Before(b.Metadata.Created)
		}
	case SortByModified:
		less = func(a, b *domain.Exercise) bool {
			return a.Metadata.Modified.Before(b.Metadata.Modified)
		}
	case SortByQuality:
		less = func(a, b *domain.Exercise) bool {
			return a.Metadata.QualityScore < b.Metadata.QualityScore
		}
	default:
		return
	}

	sort.SliceStable(exercises, func(i, j int) bool {
		if desc {
			return less(&exercises[j], &exercises[i])
		}
		return less(&exercises[i], &exercises[j])
	})
}

// paginate slices [offset, offset+limit). A zero limit returns everything
// from offset onward.
func paginate(exercises []domain.Exercise, offset, limit int) []domain.Exercise {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(exercises) {
		return []domain.Exercise{}
	}

	end := len(exercises)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return exercises[offset:end]
}

// Package recommend ranks eligible exercises for a learner by a
// weighted heuristic over difficulty fit, concept reinforcement,
// engagement, and content quality.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/cqlclinic/clinic/internal/domain"
)

// Component weights of the total score
const (
	weightDifficulty = 40.0
	weightConcepts   = 30.0
	weightEngagement = 20.0
	weightQuality    = 10.0
)

// Completed-exercise thresholds for estimating the learner's level
const (
	intermediateMin = 5
	advancedMin     = 15
)

// DefaultLimit caps the recommendation list when the caller gives none
const DefaultLimit = 5

// EngagementSource supplies a behavioral engagement signal in [0,1]
// for a learner. The computation is an external concern; the scorer
// only requires the range contract.
type EngagementSource interface {
	Engagement(ctx context.Context, userID string) float64
}

// ConceptSource supplies the concepts a learner has historically
// struggled with. An empty set is a valid answer.
type ConceptSource interface {
	StrugglingConcepts(ctx context.Context, userID string) []string
}

// staticEngagement returns the same signal for every learner
type staticEngagement struct{ value float64 }

func (s staticEngagement) Engagement(context.Context, string) float64 { return s.value }

// emptyConcepts reports no struggling concepts for any learner
type emptyConcepts struct{}

func (emptyConcepts) StrugglingConcepts(context.Context, string) []string { return nil }

// Options tunes a single recommendation request
type Options struct {
	Limit            int
	IncludeCompleted bool
}

// Scorer ranks exercises for a learner. The zero signals are a
// constant 0.5 engagement and an empty struggling-concept set.
type Scorer struct {
	engagement EngagementSource
	concepts   ConceptSource
}

// NewScorer creates a scorer with the default constant signals
func NewScorer() *Scorer {
	return &Scorer{
		engagement: staticEngagement{value: 0.5},
		concepts:   emptyConcepts{},
	}
}

// NewScorerWithSignals creates a scorer over caller-supplied signal
// sources. Nil sources fall back to the defaults.
func NewScorerWithSignals(engagement EngagementSource, concepts ConceptSource) *Scorer {
	s := NewScorer()
	if engagement != nil {
		s.engagement = engagement
	}
	if concepts != nil {
		s.concepts = concepts
	}
	return s
}

// Recommend filters the collection down to eligible exercises, scores
// each, and returns them ordered by score descending. Ties keep the
// collection's order. The scored values are never clamped.
func (s *Scorer) Recommend(ctx context.Context, exercises []domain.Exercise, progress *domain.UserProgress, opts Options) ([]domain.Recommendation, error) {
	if !progress.Valid() {
		return nil, fmt.Errorf("%w: progress record is missing or malformed", domain.ErrInvalidProgress)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	completed := progress.CompletedIDs()
	level := learnerLevel(progress.CompletedCount())
	engagement := s.engagement.Engagement(ctx, progress.UserID)
	struggling := toSet(s.concepts.StrugglingConcepts(ctx, progress.UserID))

	recommendations := make([]domain.Recommendation, 0, limit)
	for i := range exercises {
		ex := &exercises[i]
		if !eligible(ex, completed, opts.IncludeCompleted) {
			continue
		}

		difficultyMatch := difficultyMatch(ex.Difficulty.Ordinal(), level)
		conceptScore := conceptScore(ex.Concepts, struggling)
		quality := qualityScore(ex)

		score := weightDifficulty*difficultyMatch +
			weightConcepts*conceptScore +
			weightEngagement*engagement +
			weightQuality*quality

		recommendations = append(recommendations, domain.Recommendation{
			Exercise: ex,
			Score:    score,
			Reason:   reasonFor(ex, difficultyMatch, conceptScore),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})

	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

// eligible excludes completed exercises (unless requested) and any
// exercise with an unsatisfied prerequisite
func eligible(ex *domain.Exercise, completed map[string]bool, includeCompleted bool) bool {
	if completed[ex.ID] && !includeCompleted {
		return false
	}
	for _, prereq := range ex.Prerequisites {
		if !completed[prereq] {
			return false
		}
	}
	return true
}

// learnerLevel estimates the learner's ordinal level from how many
// exercises they have completed
func learnerLevel(completedCount int) int {
	switch {
	case completedCount < intermediateMin:
		return 1
	case completedCount < advancedMin:
		return 2
	default:
		return 3
	}
}

// difficultyMatch maps the distance between exercise and learner
// ordinals to a fit value
func difficultyMatch(exerciseOrdinal, learnerOrdinal int) float64 {
	diff := exerciseOrdinal - learnerOrdinal
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1.0
	case 1:
		return 0.7
	case 2:
		return 0.4
	default:
		return 0.1
	}
}

// conceptScore is the fraction of the exercise's concepts the learner
// is struggling with
func conceptScore(concepts []string, struggling map[string]bool) float64 {
	if len(concepts) == 0 {
		return 0
	}
	matched := 0
	for _, c := range concepts {
		if struggling[c] {
			matched++
		}
	}
	return float64(matched) / float64(len(concepts))
}

func qualityScore(ex *domain.Exercise) float64 {
	quality := ex.Metadata.QualityScore
	if quality == 0 {
		quality = domain.DefaultQualityScore
	}
	return float64(quality) / 100
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

package exercise

import (
	"math"
	"time"

	"github.com/cqlclinic/clinic/internal/domain"
)

// Quality tier boundaries
const (
	qualityHighMin   = 85
	qualityMediumMin = 70
)

// recentWindow is how far back an exercise counts as recently created
const recentWindow = 7 * 24 * time.Hour

// Analytics summarizes the exercise collection into distribution counts
type Analytics struct {
	TotalExercises       int            `json:"total_exercises"`
	ByDifficulty         map[string]int `json:"by_difficulty"`
	ByType               map[string]int `json:"by_type"`
	ByConcept            map[string]int `json:"by_concept"`
	QualityTiers         QualityTiers   `json:"quality_tiers"`
	AverageEstimatedTime int            `json:"average_estimated_time"` // minutes, rounded
	DistinctConcepts     int            `json:"distinct_concepts"`
	RecentlyCreated      int            `json:"recently_created"` // last 7 days
}

// QualityTiers is a histogram over quality score bands
type QualityTiers struct {
	High   int `json:"high"`   // >= 85
	Medium int `json:"medium"` // 70-84
	Low    int `json:"low"`    // < 70
}

// Aggregate produces analytics in a single pass over the collection.
// Purely derived; no state, no caching.
func Aggregate(exercises []domain.Exercise, now time.Time) *Analytics {
	a := &Analytics{
		TotalExercises: len(exercises),
		ByDifficulty:   make(map[string]int),
		ByType:         make(map[string]int),
		ByConcept:      make(map[string]int),
	}

	totalMinutes := 0
	cutoff := now.Add(-recentWindow)

	for i := range exercises {
		ex := &exercises[i]

		a.ByDifficulty[string(ex.Difficulty)]++
		a.ByType[string(ex.Type)]++
		for _, c := range ex.Concepts {
			a.ByConcept[c]++
		}

		quality := ex.Metadata.QualityScore
		if quality == 0 {
			quality = domain.DefaultQualityScore
		}
		switch {
		case quality >= qualityHighMin:
			a.QualityTiers.High++
		case quality >= qualityMediumMin:
			a.QualityTiers.Medium++
		default:
			a.QualityTiers.Low++
		}

		minutes := ex.EstimatedTime
		if minutes == 0 {
			minutes = domain.DefaultEstimatedTime
		}
		totalMinutes += minutes

		if !ex.Metadata.Created.IsZero() && ex.Metadata.Created.After(cutoff) {
			a.RecentlyCreated++
		}
	}

	if len(exercises) > 0 {
		a.AverageEstimatedTime = int(math.Round(float64(totalMinutes) / float64(len(exercises))))
	}
	a.DistinctConcepts = len(a.ByConcept)

	return a
}

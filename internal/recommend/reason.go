package recommend

import (
	"fmt"
	"strings"

	"github.com/cqlclinic/clinic/internal/domain"
)

// reasonRule pairs a predicate with the message it produces. Rules
// are evaluated in order and the first match wins.
type reasonRule struct {
	applies func(ex *domain.Exercise, difficultyMatch, conceptScore float64) bool
	message func(ex *domain.Exercise) string
}

var reasonRules = []reasonRule{
	{
		applies: func(_ *domain.Exercise, difficultyMatch, _ float64) bool {
			return difficultyMatch >= 0.8
		},
		message: func(*domain.Exercise) string {
			return "Perfect match for your current difficulty level"
		},
	},
	{
		applies: func(_ *domain.Exercise, _, conceptScore float64) bool {
			return conceptScore >= 0.6
		},
		message: func(ex *domain.Exercise) string {
			concepts := ex.Concepts
			if len(concepts) > 2 {
				concepts = concepts[:2]
			}
			return fmt.Sprintf("Reinforces concepts you're learning: %s", strings.Join(concepts, ", "))
		},
	},
	{
		applies: func(ex *domain.Exercise, _, _ float64) bool {
			return ex.Type == domain.TypeChallenge
		},
		message: func(*domain.Exercise) string {
			return "Challenge exercise to test your skills"
		},
	},
}

const defaultReason = "Recommended as your next step"

// reasonFor picks the display reason for a scored exercise
func reasonFor(ex *domain.Exercise, difficultyMatch, conceptScore float64) string {
	for _, rule := range reasonRules {
		if rule.applies(ex, difficultyMatch, conceptScore) {
			return rule.message(ex)
		}
	}
	return defaultReason
}

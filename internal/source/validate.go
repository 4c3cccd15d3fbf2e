package source

import (
	"fmt"
	"log/slog"

	"github.com/cqlclinic/clinic/internal/domain"
)

// ValidateExercise checks a single record against the exercise schema.
// A non-nil error names every violated rule.
func ValidateExercise(ex *domain.Exercise) error {
	var problems []string

	if ex.ID == "" {
		problems = append(problems, "id is required")
	}
	if ex.Title == "" {
		problems = append(problems, "title is required")
	}
	if ex.Difficulty.Ordinal() == 0 {
		problems = append(problems, fmt.Sprintf("unknown difficulty %q", ex.Difficulty))
	}
	if !domain.KnownExerciseType(ex.Type) {
		problems = append(problems, fmt.Sprintf("unknown type %q", ex.Type))
	}
	if ex.EstimatedTime < 0 {
		problems = append(problems, fmt.Sprintf("estimated time must be positive, got %d", ex.EstimatedTime))
	}
	if ex.Metadata.QualityScore < 0 || ex.Metadata.QualityScore > 100 {
		problems = append(problems, fmt.Sprintf("quality score out of range: %d", ex.Metadata.QualityScore))
	}
	for i, p := range ex.Prerequisites {
		if p == "" {
			problems = append(problems, fmt.Sprintf("prerequisite %d is empty", i+1))
		}
	}

	if len(problems) == 0 {
		return nil
	}

	err := fmt.Errorf("%s", problems[0])
	for _, p := range problems[1:] {
		err = fmt.Errorf("%w; %s", err, p)
	}
	return err
}

// Filter runs schema validation over a raw collection, applies defaults,
// and drops invalid or duplicate records. Each rejection is logged with
// its reason; a bad record never fails the whole load.
func Filter(raw []domain.Exercise) []domain.Exercise {
	valid := make([]domain.Exercise, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, ex := range raw {
		applyDefaults(&ex)

		if err := ValidateExercise(&ex); err != nil {
			slog.Warn("discarding invalid exercise", "id", ex.ID, "reason", err)
			continue
		}
		if seen[ex.ID] {
			slog.Warn("discarding exercise with duplicate id", "id", ex.ID)
			continue
		}
		seen[ex.ID] = true
		valid = append(valid, ex)
	}

	return valid
}

// applyDefaults fills optional metadata the record omitted
func applyDefaults(ex *domain.Exercise) {
	if ex.Metadata.QualityScore == 0 {
		ex.Metadata.QualityScore = domain.DefaultQualityScore
	}
	if ex.EstimatedTime == 0 {
		ex.EstimatedTime = domain.DefaultEstimatedTime
	}
}

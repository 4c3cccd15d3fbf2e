package domain

import "time"

// Default values applied when an exercise record omits optional metadata.
const (
	DefaultQualityScore  = 70
	DefaultEstimatedTime = 15 // minutes
)

// Exercise represents a single CQL learning unit
type Exercise struct {
	ID            string       `json:"id"`
	Version       string       `json:"version,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Difficulty    Difficulty   `json:"difficulty"`
	Type          ExerciseType `json:"type"`
	EstimatedTime int          `json:"estimated_time"` // minutes
	Prerequisites []string     `json:"prerequisites,omitempty"`
	Concepts      []string     `json:"concepts,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	Content       Content      `json:"content"`
	Metadata      Metadata     `json:"metadata"`
}

// Difficulty represents exercise difficulty level
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// Ordinal maps a difficulty to its position on the 1-4 scale.
// Unknown values map to 0 so they sort before recognized levels.
func (d Difficulty) Ordinal() int {
	switch d {
	case DifficultyBeginner:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyAdvanced:
		return 3
	case DifficultyExpert:
		return 4
	default:
		return 0
	}
}

// ExerciseType categorizes how an exercise is meant to be worked
type ExerciseType string

const (
	TypeTutorial   ExerciseType = "tutorial"
	TypePractice   ExerciseType = "practice"
	TypeChallenge  ExerciseType = "challenge"
	TypeDebug      ExerciseType = "debug"
	TypeAssessment ExerciseType = "assessment"
	TypeBuild      ExerciseType = "build"
)

// KnownExerciseType reports whether t is one of the recognized exercise types
func KnownExerciseType(t ExerciseType) bool {
	switch t {
	case TypeTutorial, TypePractice, TypeChallenge, TypeDebug, TypeAssessment, TypeBuild:
		return true
	}
	return false
}

// Content holds the learner-facing material of an exercise.
// The core treats it as opaque apart from the instructions text
// (searchable) and the hint count.
type Content struct {
	Instructions string     `json:"instructions,omitempty"`
	StarterCode  string     `json:"starter_code,omitempty"`
	Hints        []string   `json:"hints,omitempty"`
	Resources    []Resource `json:"resources,omitempty"`
}

// Resource is a link to supporting material
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Metadata carries editorial information about an exercise record
type Metadata struct {
	QualityScore int       `json:"quality_score"` // 0-100, DefaultQualityScore applied at load when absent
	Author       string    `json:"author,omitempty"`
	Created      time.Time `json:"created,omitempty"`
	Modified     time.Time `json:"modified,omitempty"`
}

// HasConcept reports whether the exercise covers the given concept
func (e *Exercise) HasConcept(concept string) bool {
	for _, c := range e.Concepts {
		if c == concept {
			return true
		}
	}
	return false
}

// HasTag reports whether the exercise carries the given tag
func (e *Exercise) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HintCount returns the number of hints available for the exercise
func (e *Exercise) HintCount() int {
	return len(e.Content.Hints)
}

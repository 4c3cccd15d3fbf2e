package recommend_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cqlclinic/clinic/internal/domain"
	"github.com/cqlclinic/clinic/internal/recommend"
)

type fixedSignals struct {
	engagement float64
	struggling []string
}

func (s fixedSignals) Engagement(context.Context, string) float64 {
	return s.engagement
}

func (s fixedSignals) StrugglingConcepts(context.Context, string) []string {
	return s.struggling
}

func beginnerExercise(id string, prereqs ...string) domain.Exercise {
	return domain.Exercise{
		ID:            id,
		Title:         id,
		Difficulty:    domain.DifficultyBeginner,
		Type:          domain.TypePractice,
		EstimatedTime: 10,
		Prerequisites: prereqs,
	}
}

func progressWith(completed ...string) *domain.UserProgress {
	p := domain.NewUserProgress("learner-1")
	for _, id := range completed {
		p.ExerciseProgress[id] = domain.ExerciseStatus{Completed: true}
	}
	return p
}

func TestRecommend_InvalidProgress(t *testing.T) {
	scorer := recommend.NewScorer()
	exercises := []domain.Exercise{beginnerExercise("a")}

	tests := []struct {
		name     string
		progress *domain.UserProgress
	}{
		{"nil progress", nil},
		{"nil progress map", &domain.UserProgress{UserID: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scorer.Recommend(context.Background(), exercises, tt.progress, recommend.Options{})
			if !errors.Is(err, domain.ErrInvalidProgress) {
				t.Errorf("Recommend() error = %v, want ErrInvalidProgress", err)
			}
		})
	}
}

func TestRecommend_Eligibility(t *testing.T) {
	scorer := recommend.NewScorer()
	exercises := []domain.Exercise{
		beginnerExercise("done"),
		beginnerExercise("open"),
		beginnerExercise("locked", "missing-prereq"),
		beginnerExercise("unlocked", "done"),
	}
	progress := progressWith("done")

	recs, err := scorer.Recommend(context.Background(), exercises, progress, recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	got := make(map[string]bool, len(recs))
	for _, r := range recs {
		got[r.Exercise.ID] = true
	}
	if got["done"] {
		t.Error("completed exercise recommended without IncludeCompleted")
	}
	if got["locked"] {
		t.Error("exercise with unsatisfied prerequisite recommended")
	}
	if !got["open"] || !got["unlocked"] {
		t.Errorf("expected open and unlocked in results, got %v", got)
	}
}

func TestRecommend_IncludeCompleted(t *testing.T) {
	scorer := recommend.NewScorer()
	exercises := []domain.Exercise{beginnerExercise("done")}
	progress := progressWith("done")

	recs, err := scorer.Recommend(context.Background(), exercises, progress, recommend.Options{IncludeCompleted: true})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Exercise.ID != "done" {
		t.Errorf("Recommend() = %v, want the completed exercise", recs)
	}
}

func TestRecommend_ScoreComposition(t *testing.T) {
	// New learner (beginner level) on a beginner exercise with no
	// struggling concepts, default engagement 0.5, default quality 70:
	// 40*1.0 + 30*0 + 20*0.5 + 10*0.7 = 57.
	scorer := recommend.NewScorer()
	exercises := []domain.Exercise{beginnerExercise("a")}

	recs, err := scorer.Recommend(context.Background(), exercises, progressWith(), recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Recommend() returned %d results, want 1", len(recs))
	}
	if math.Abs(recs[0].Score-57.0) > 1e-9 {
		t.Errorf("Score = %v, want 57", recs[0].Score)
	}
}

func TestRecommend_ConceptReinforcement(t *testing.T) {
	signals := fixedSignals{engagement: 0.5, struggling: []string{"retrieves", "filtering"}}
	scorer := recommend.NewScorerWithSignals(signals, signals)

	ex := beginnerExercise("a")
	ex.Concepts = []string{"retrieves", "filtering", "intervals"}

	recs, err := scorer.Recommend(context.Background(), []domain.Exercise{ex}, progressWith(), recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// 40*1.0 + 30*(2/3) + 20*0.5 + 10*0.7 = 77
	if math.Abs(recs[0].Score-77.0) > 1e-9 {
		t.Errorf("Score = %v, want 77", recs[0].Score)
	}
}

func TestRecommend_DifficultyDistance(t *testing.T) {
	scorer := recommend.NewScorer()
	progress := progressWith() // 0 completed, beginner

	advanced := beginnerExercise("hard")
	advanced.Difficulty = domain.DifficultyAdvanced // ordinal 3, diff 2

	recs, err := scorer.Recommend(context.Background(), []domain.Exercise{advanced}, progress, recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// 40*0.4 + 0 + 20*0.5 + 10*0.7 = 33
	if math.Abs(recs[0].Score-33.0) > 1e-9 {
		t.Errorf("Score = %v, want 33", recs[0].Score)
	}
}

func TestRecommend_SortAndLimit(t *testing.T) {
	scorer := recommend.NewScorer()

	exercises := make([]domain.Exercise, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		exercises = append(exercises, beginnerExercise(id))
	}
	exercises[3].Metadata.QualityScore = 95 // "d" outscores the rest

	recs, err := scorer.Recommend(context.Background(), exercises, progressWith(), recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(recs) != 5 {
		t.Fatalf("Recommend() returned %d results, want default limit 5", len(recs))
	}
	if recs[0].Exercise.ID != "d" {
		t.Errorf("top recommendation = %q, want d", recs[0].Exercise.ID)
	}
	// Remaining ties keep collection order
	want := []string{"a", "b", "c", "e"}
	for i, id := range want {
		if recs[i+1].Exercise.ID != id {
			t.Errorf("recs[%d] = %q, want %q", i+1, recs[i+1].Exercise.ID, id)
		}
	}
}

func TestRecommend_ExplicitLimit(t *testing.T) {
	scorer := recommend.NewScorer()
	exercises := []domain.Exercise{beginnerExercise("a"), beginnerExercise("b"), beginnerExercise("c")}

	recs, err := scorer.Recommend(context.Background(), exercises, progressWith(), recommend.Options{Limit: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("Recommend() returned %d results, want 2", len(recs))
	}
}

func TestRecommend_EmptyEligibleSet(t *testing.T) {
	scorer := recommend.NewScorer()
	exercises := []domain.Exercise{beginnerExercise("locked", "nope")}

	recs, err := scorer.Recommend(context.Background(), exercises, progressWith(), recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Recommend() = %v, want empty list", recs)
	}
}

func TestRecommend_ReasonPriority(t *testing.T) {
	signals := fixedSignals{engagement: 0.5, struggling: []string{"retrieves"}}
	scorer := recommend.NewScorerWithSignals(signals, signals)

	perfect := beginnerExercise("perfect")
	perfect.Concepts = []string{"retrieves"}

	conceptual := beginnerExercise("conceptual")
	conceptual.Difficulty = domain.DifficultyAdvanced
	conceptual.Concepts = []string{"retrieves"}

	challenge := beginnerExercise("challenge")
	challenge.Difficulty = domain.DifficultyAdvanced
	challenge.Type = domain.TypeChallenge

	generic := beginnerExercise("generic")
	generic.Difficulty = domain.DifficultyAdvanced

	recs, err := scorer.Recommend(context.Background(),
		[]domain.Exercise{perfect, conceptual, challenge, generic},
		progressWith(), recommend.Options{})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	byID := make(map[string]string, len(recs))
	for _, r := range recs {
		byID[r.Exercise.ID] = r.Reason
	}

	if !strings.Contains(byID["perfect"], "difficulty level") {
		t.Errorf("perfect reason = %q, want difficulty match message", byID["perfect"])
	}
	if !strings.Contains(byID["conceptual"], "retrieves") {
		t.Errorf("conceptual reason = %q, want concept message naming the concept", byID["conceptual"])
	}
	if !strings.Contains(byID["challenge"], "Challenge") {
		t.Errorf("challenge reason = %q, want challenge message", byID["challenge"])
	}
	if byID["generic"] != "Recommended as your next step" {
		t.Errorf("generic reason = %q, want default message", byID["generic"])
	}
}

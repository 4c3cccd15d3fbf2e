package exercise_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cqlclinic/clinic/internal/domain"
	"github.com/cqlclinic/clinic/internal/exercise"
)

type countingSource struct {
	mu        sync.Mutex
	calls     int
	exercises []domain.Exercise
	err       error
}

func (s *countingSource) Fetch(_ context.Context) ([]domain.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.exercises, nil
}

func (s *countingSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, src *countingSource) (*exercise.Store, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return exercise.NewStoreWithClock(src, exercise.DefaultTTL, clock.Now), clock
}

func TestStore_Load_CachesWithinTTL(t *testing.T) {
	src := &countingSource{exercises: sampleCollection()}
	store, clock := newTestStore(t, src)
	ctx := context.Background()

	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	clock.Advance(4 * time.Minute)
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := src.fetchCount(); got != 1 {
		t.Errorf("fetch count = %d, want 1 (second load within TTL must hit cache)", got)
	}
}

func TestStore_Load_RefetchesAfterExpiry(t *testing.T) {
	src := &countingSource{exercises: sampleCollection()}
	store, clock := newTestStore(t, src)
	ctx := context.Background()

	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	clock.Advance(6 * time.Minute)
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := src.fetchCount(); got != 2 {
		t.Errorf("fetch count = %d, want 2 (expired snapshot must refetch)", got)
	}
}

func TestStore_Load_SourceFailure(t *testing.T) {
	src := &countingSource{err: errors.New("connection refused")}
	store, _ := newTestStore(t, src)

	_, err := store.Load(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("Load() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestStore_Load_DropsInvalidRecords(t *testing.T) {
	collection := sampleCollection()
	collection = append(collection, domain.Exercise{ID: "", Title: "broken"})
	src := &countingSource{exercises: collection}
	store, _ := newTestStore(t, src)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Load() returned %d exercises, want 3 (invalid record dropped)", len(got))
	}
}

func TestStore_Get(t *testing.T) {
	src := &countingSource{exercises: sampleCollection()}
	store, _ := newTestStore(t, src)
	ctx := context.Background()

	ex, err := store.Get(ctx, "cql-where")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ex.Title != "Filtering with where" {
		t.Errorf("Get() title = %q", ex.Title)
	}

	_, err = store.Get(ctx, "no-such-exercise")
	if !errors.Is(err, domain.ErrExerciseNotFound) {
		t.Errorf("Get() error = %v, want ErrExerciseNotFound", err)
	}
}

func TestStore_Search_CachesResults(t *testing.T) {
	src := &countingSource{exercises: sampleCollection()}
	store, _ := newTestStore(t, src)
	ctx := context.Background()
	criteria := exercise.SearchCriteria{Difficulty: domain.DifficultyBeginner}

	first, err := store.Search(ctx, criteria)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := store.Search(ctx, criteria)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Errorf("Search() = %d then %d results, want 2 and 2", len(first), len(second))
	}
	if got := src.fetchCount(); got != 1 {
		t.Errorf("fetch count = %d, want 1", got)
	}
}

func TestStore_Invalidate(t *testing.T) {
	src := &countingSource{exercises: sampleCollection()}
	store, _ := newTestStore(t, src)
	ctx := context.Background()

	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	store.Invalidate()

	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := src.fetchCount(); got != 2 {
		t.Errorf("fetch count = %d, want 2 after Invalidate", got)
	}
}

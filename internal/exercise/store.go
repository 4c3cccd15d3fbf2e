package exercise

import (
	"context"
	"fmt"
	"time"

	"github.com/cqlclinic/clinic/internal/cache"
	"github.com/cqlclinic/clinic/internal/domain"
	"github.com/cqlclinic/clinic/internal/source"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the cache window for loaded snapshots and search results
const DefaultTTL = 5 * time.Minute

const collectionKey = "collection"

// Store provides TTL-cached access to the validated exercise collection.
// The full-collection cache and the per-query search cache are separate
// namespaces with independent keys.
type Store struct {
	source     source.Source
	collection *cache.Cache[[]domain.Exercise]
	results    *cache.Cache[[]domain.Exercise]
	group      singleflight.Group
}

// NewStore creates a store over the given source
func NewStore(src source.Source, ttl time.Duration) *Store {
	return NewStoreWithClock(src, ttl, time.Now)
}

// NewStoreWithClock creates a store with an injected clock for the caches
func NewStoreWithClock(src source.Source, ttl time.Duration, now cache.Clock) *Store {
	return &Store{
		source:     src,
		collection: cache.NewWithClock[[]domain.Exercise](ttl, now),
		results:    cache.NewWithClock[[]domain.Exercise](ttl, now),
	}
}

// Load returns the full validated collection. A cache hit returns the
// prior snapshot without touching the source; concurrent misses for the
// same key are coalesced into a single fetch.
func (s *Store) Load(ctx context.Context) ([]domain.Exercise, error) {
	if snapshot, ok := s.collection.Get(collectionKey); ok {
		return snapshot, nil
	}

	v, err, _ := s.group.Do(collectionKey, func() (any, error) {
		raw, err := s.source.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}

		validated := source.Filter(raw)
		s.collection.Set(collectionKey, validated)
		return validated, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.Exercise), nil
}

// Get returns a single exercise by id
func (s *Store) Get(ctx context.Context, id string) (*domain.Exercise, error) {
	exercises, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range exercises {
		if exercises[i].ID == id {
			return &exercises[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrExerciseNotFound, id)
}

// Search filters, sorts, and paginates the collection. Result sets are
// cached per unique serialized criteria with the same TTL policy as the
// full collection.
func (s *Store) Search(ctx context.Context, criteria SearchCriteria) ([]domain.Exercise, error) {
	key := criteria.Key()
	if cached, ok := s.results.Get(key); ok {
		return cached, nil
	}

	exercises, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	matched := Search(exercises, criteria)
	s.results.Set(key, matched)
	return matched, nil
}

// Invalidate clears both caches unconditionally. The next Load or
// Search repopulates from the source.
func (s *Store) Invalidate() {
	s.collection.Clear()
	s.results.Clear()
}

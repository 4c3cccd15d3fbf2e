// Package cache provides a process-wide in-memory cache with a
// time-to-live expiry policy. Instances are constructed once and passed
// by reference; separate instances act as independent namespaces.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Injected so expiry is testable.
type Clock func() time.Time

// Cache is a TTL-bounded key/value cache. A zero TTL means entries
// never expire until Delete or Clear.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     Clock
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// New creates a cache with the given TTL using the wall clock
func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithClock[V](ttl, time.Now)
}

// NewWithClock creates a cache with an injected clock
func NewWithClock[V any](ttl time.Duration, now Clock) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached value for key if present and not expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl {
		// Stale entries are removed lazily on access
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores a value under key, resetting its TTL window
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// Delete removes a single entry
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes all entries unconditionally
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
}

// Len returns the number of entries, including any not yet swept
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

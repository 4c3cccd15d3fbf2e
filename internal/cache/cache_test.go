package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/cqlclinic/clinic/internal/cache"
)

// fakeClock is a manually advanced clock for TTL tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_SetGet(t *testing.T) {
	clk := newFakeClock()
	c := cache.NewWithClock[string](5*time.Minute, clk.Now)

	c.Set("a", "one")

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get returned ok=false for fresh entry")
	}
	if got != "one" {
		t.Errorf("Get = %q, want %q", got, "one")
	}
}

func TestCache_Get_Missing(t *testing.T) {
	c := cache.New[int](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get returned ok=true for missing key")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	clk := newFakeClock()
	c := cache.NewWithClock[string](5*time.Minute, clk.Now)

	c.Set("a", "one")

	clk.Advance(4 * time.Minute)
	if _, ok := c.Get("a"); !ok {
		t.Error("entry expired before TTL elapsed")
	}

	clk.Advance(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("entry still cached after TTL elapsed")
	}
}

func TestCache_Set_ResetsTTL(t *testing.T) {
	clk := newFakeClock()
	c := cache.NewWithClock[string](5*time.Minute, clk.Now)

	c.Set("a", "one")
	clk.Advance(4 * time.Minute)
	c.Set("a", "two")
	clk.Advance(4 * time.Minute)

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("entry expired although it was rewritten within the window")
	}
	if got != "two" {
		t.Errorf("Get = %q, want %q", got, "two")
	}
}

func TestCache_ZeroTTL_NeverExpires(t *testing.T) {
	clk := newFakeClock()
	c := cache.NewWithClock[int](0, clk.Now)

	c.Set("a", 42)
	clk.Advance(24 * time.Hour)

	if _, ok := c.Get("a"); !ok {
		t.Error("zero-TTL entry expired")
	}
}

func TestCache_Clear(t *testing.T) {
	c := cache.New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived Clear")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still cached")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("unrelated entry removed by Delete")
	}
}

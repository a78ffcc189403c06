package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "alpha", got)

	c.Set("a", "again")
	got, _ = c.Get("a")
	assert.Equal(t, "again", got)
	assert.Equal(t, 1, c.Size())

	assert.Equal(t, Stats{Hits: 2, Misses: 1, Size: 1}, c.Stats())
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "b was least recently used")
	assert.True(t, okC)
	assert.Equal(t, 2, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)}
	c := newLRUCache[int](4, time.Minute, clock.now)

	c.Set("a", 1)
	clock.advance(30 * time.Second)
	c.Set("b", 2)

	clock.advance(30 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok, "entry expires exactly at ttl")

	assert.Equal(t, 0, c.CleanExpired())
	clock.advance(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUDeleteAndMinimumSize(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 1, c.Size())

	c.Delete("b")
	c.Delete("missing")
	assert.Equal(t, 0, c.Size())
}

func TestManagerSweepAndStop(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)}
	c := newLRUCache[int](4, time.Second, clock.now)
	c.Set("a", 1)
	c.Set("b", 2)

	m := NewManager(nil)
	m.Register(c)
	assert.Equal(t, 0, m.Sweep())

	clock.advance(2 * time.Second)
	assert.Equal(t, 2, m.Sweep())

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()
}

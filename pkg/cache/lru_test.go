package cache_test

import (
	"testing"
	"time"

	"github.com/mapuy555/warranty-server/pkg/cache"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/metric"

	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, capacity int) *cache.LRUCache[string, string] {
	t.Helper()

	c, err := cache.NewLRUCache[string, string](
		capacity,
		logger.NewNop(),
		metric.NewFactory().Cache(),
	)
	require.NoError(t, err)
	return c
}

func TestLRUCache_GetPut(t *testing.T) {
	c := newCache(t, 2)

	c.Put("a", "one", 0)
	c.Put("b", "two", 0)

	value, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "one", value)
	require.Equal(t, 2, c.Len())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newCache(t, 2)

	var evicted []string
	c.SetOnEvicted(func(key string, _ string) {
		evicted = append(evicted, key)
	})

	c.Put("a", "one", 0)
	c.Put("b", "two", 0)
	// Touch "a" so "b" becomes the eviction candidate.
	_, _ = c.Get("a")
	c.Put("c", "three", 0)

	_, ok := c.Get("b")
	require.False(t, ok)
	_, ok = c.Get("a")
	require.True(t, ok)
	require.Equal(t, []string{"b"}, evicted)
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := newCache(t, 4)

	c.Put("short", "gone soon", 10*time.Millisecond)
	c.Put("long", "stays", time.Minute)

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("short")
	require.False(t, ok)
	_, ok = c.Get("long")
	require.True(t, ok)
}

func TestLRUCache_Remove(t *testing.T) {
	c := newCache(t, 2)

	c.Put("a", "one", 0)
	c.Remove("a")

	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestLRUCache_CleanupLoop(t *testing.T) {
	c := newCache(t, 4)

	c.StartCleanup(10 * time.Millisecond)
	defer c.StopCleanup()

	c.Put("a", "one", 15*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	require.Equal(t, 0, c.Len())
}

func TestLRUCache_InvalidCapacity(t *testing.T) {
	_, err := cache.NewLRUCache[string, string](0, logger.NewNop(), metric.NewFactory().Cache())
	require.Error(t, err)
}

package cache

import (
	"container/list"
	"errors"
	"sync"
	"time"

	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/metric"
)

const _cacheType = "lru"

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// LRUCache is a fixed-capacity LRU with per-entry TTL. Expired
// entries are dropped lazily on Get and swept by the cleanup loop.
type LRUCache[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[K]*list.Element
	order     *list.List
	onEvicted func(key K, value V)

	cleanupTicker *time.Ticker
	cleanupDone   chan struct{}

	log     logger.Logger
	metrics metric.Cache
}

func NewLRUCache[K comparable, V any](
	capacity int,
	log logger.Logger,
	metrics metric.Cache,
) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, errors.New("cache.NewLRUCache: capacity must be > 0")
	}

	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		log:      log,
		metrics:  metrics,
	}, nil
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		c.metrics.Miss(_cacheType)
		return zero, false
	}

	ent := elem.Value.(*entry[K, V])
	if !ent.expiresAt.IsZero() && time.Now().After(ent.expiresAt) {
		c.removeElement(elem, "ttl")
		c.metrics.Miss(_cacheType)
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.metrics.Hit(_cacheType)
	return ent.value, true
}

func (c *LRUCache[K, V]) Put(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[K, V])
		ent.value = value
		ent.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&entry[K, V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
	c.items[key] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeElement(oldest, "capacity")
		}
	}

	c.metrics.Size(_cacheType, len(c.items))
}

func (c *LRUCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem, "removed")
	}
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[K, V]) SetOnEvicted(fn func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvicted = fn
}

func (c *LRUCache[K, V]) StartCleanup(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cleanupTicker != nil {
		return
	}

	c.cleanupTicker = time.NewTicker(interval)
	c.cleanupDone = make(chan struct{})

	go func() {
		for {
			select {
			case <-c.cleanupTicker.C:
				c.sweepExpired()
			case <-c.cleanupDone:
				return
			}
		}
	}()
}

func (c *LRUCache[K, V]) StopCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cleanupTicker == nil {
		return
	}
	c.cleanupTicker.Stop()
	close(c.cleanupDone)
	c.cleanupTicker = nil
	c.cleanupDone = nil
}

func (c *LRUCache[K, V]) sweepExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var expired []*list.Element
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		ent := elem.Value.(*entry[K, V])
		if !ent.expiresAt.IsZero() && now.After(ent.expiresAt) {
			expired = append(expired, elem)
		}
	}
	for _, elem := range expired {
		c.removeElement(elem, "ttl")
	}
}

// removeElement must be called with the mutex held.
func (c *LRUCache[K, V]) removeElement(elem *list.Element, reason string) {
	ent := elem.Value.(*entry[K, V])
	c.order.Remove(elem)
	delete(c.items, ent.key)

	c.metrics.Eviction(_cacheType, reason)
	c.metrics.Size(_cacheType, len(c.items))

	if c.onEvicted != nil {
		c.onEvicted(ent.key, ent.value)
	}
}

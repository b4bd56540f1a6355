package cache

import "time"

type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V, ttl time.Duration)
	Remove(key K)
	Len() int
	SetOnEvicted(fn func(key K, value V))
	StartCleanup(interval time.Duration)
	StopCleanup()
}

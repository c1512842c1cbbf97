// Package cache holds short-lived copies of derived results for callers
// that can tolerate slightly stale reads.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Flush removes every entry
	Flush()

	// Size returns the current number of items in the cache
	Size() int
}

// TTLCache expires entries a fixed time after they are set.
type TTLCache[T any] struct {
	c *gocache.Cache
}

// New returns a TTL cache. A non-positive ttl disables caching: the
// returned cache stores nothing.
func New[T any](ttl time.Duration) Cache[T] {
	if ttl <= 0 {
		return Disabled[T]{}
	}
	return &TTLCache[T]{c: gocache.New(ttl, 2*ttl)}
}

func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := c.c.Get(key)
	if !ok {
		return zero, false
	}
	data, ok := v.(T)
	if !ok {
		return zero, false
	}
	return data, true
}

func (c *TTLCache[T]) Set(key string, data T) {
	c.c.SetDefault(key, data)
}

func (c *TTLCache[T]) Delete(key string) { c.c.Delete(key) }

func (c *TTLCache[T]) Flush() { c.c.Flush() }

// Size counts stored items, including expired ones not yet cleaned up.
func (c *TTLCache[T]) Size() int { return c.c.ItemCount() }

// Disabled is a cache that never holds anything.
type Disabled[T any] struct{}

func (Disabled[T]) Get(string) (T, bool) {
	var zero T
	return zero, false
}

func (Disabled[T]) Set(string, T) {}
func (Disabled[T]) Delete(string) {}
func (Disabled[T]) Flush() {}
func (Disabled[T]) Size() int { return 0 }

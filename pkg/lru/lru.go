// Package lru provides a small fixed-capacity cache with insertion-ordered
// eviction, used to hold per-session page results.
package lru

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultCapacity is used when New is given a capacity below 1.
const DefaultCapacity = 5

// Cache is a bounded map. Recency is defined by insertion: Get never
// reorders, and Set moves an existing key to the newest position.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	maxEntries int
	entries    *orderedmap.OrderedMap[K, V]
}

// New creates a cache holding at most maxEntries entries.
func New[K comparable, V any](maxEntries int) *Cache[K, V] {
	if maxEntries < 1 {
		maxEntries = DefaultCapacity
	}
	return &Cache[K, V]{
		maxEntries: maxEntries,
		entries:    orderedmap.New[K, V](),
	}
}

// Get returns the value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(key)
}

// Set stores value under key as the newest entry, evicting the oldest entry
// when a new key would exceed capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries.Delete(key); !ok && c.entries.Len() >= c.maxEntries {
		if oldest := c.entries.Oldest(); oldest != nil {
			c.entries.Delete(oldest.Key)
		}
	}
	c.entries.Set(key, value)
}

// Keys returns the keys from oldest to newest.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.entries.Len())
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = orderedmap.New[K, V]()
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.maxEntries
}

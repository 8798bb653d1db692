// Package covercache caches rendered cover images in memory, keyed by
// storage path and size variant, and fetches/resizes covers on miss.
package covercache

import (
	"sync"
)

// Variant selects a rendered cover size.
type Variant string

const (
	// Thumbnail is the small list-row rendition.
	Thumbnail Variant = "thumb"
	// Full is the detail-view rendition.
	Full Variant = "full"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 64

type cacheKey struct {
	path    string
	variant Variant
}

// Cache is a bounded in-memory image cache shared by all cover
// consumers in the process. Eviction is a best-effort capacity cap with
// no recency ordering; covers are cheap to refetch.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey][]byte
}

// New creates a cache holding at most capacity entries.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey][]byte, capacity),
	}
}

// Get returns the cached image bytes for (path, variant).
func (c *Cache) Get(path string, variant Variant) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[cacheKey{path: path, variant: variant}]
	return data, ok
}

// Put stores image bytes for (path, variant), evicting an arbitrary
// entry when the cache is full.
func (c *Cache) Put(path string, variant Variant, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{path: path, variant: variant}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		for victim := range c.entries {
			delete(c.entries, victim)
			break
		}
	}
	c.entries[key] = data
}

// Invalidate drops every variant cached for path. Called when the
// underlying cover is uploaded or removed.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{path: path, variant: Thumbnail})
	delete(c.entries, cacheKey{path: path, variant: Full})
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

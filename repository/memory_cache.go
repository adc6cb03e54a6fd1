package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"marketplace-analytics/domain"
)

const (
	// DefaultCacheTTL is how long a cached payload stays fresh.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultCacheCapacity bounds the number of cached payloads.
	DefaultCacheCapacity = 100
)

type cacheEntry struct {
	payload    *domain.AnalyticsPayload
	insertedAt time.Time
}

// MemoryCache is an in-process time-bounded cache. Expired entries are
// reported as misses but not deleted eagerly. When the entry count
// exceeds capacity, the oldest-inserted entry is dropped (insertion
// order, not access order). That is approximate LRU, kept as-is:
// promoting it to true LRU would change which entry gets evicted.
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	order    []string // keys in insertion order
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewMemoryCache creates a cache with the given TTL and capacity.
// Non-positive arguments fall back to the defaults.
func NewMemoryCache(ttl time.Duration, capacity int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &MemoryCache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached payload if present and fresh.
func (c *MemoryCache) Get(_ context.Context, storeID string, months int, level domain.Level) (*domain.AnalyticsPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(storeID, months, level)]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		return nil, false
	}
	return entry.payload, true
}

// Set stores the payload, evicting the oldest-inserted entry once the
// capacity is exceeded.
func (c *MemoryCache) Set(_ context.Context, storeID string, months int, level domain.Level, payload *domain.AnalyticsPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(storeID, months, level)
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{payload: payload, insertedAt: c.now()}

	if len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	return nil
}

// Clear removes entries whose key starts with storeID; an empty storeID
// removes everything.
func (c *MemoryCache) Clear(_ context.Context, storeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if storeID == "" {
		c.entries = make(map[string]cacheEntry)
		c.order = nil
		return nil
	}

	kept := c.order[:0]
	for _, key := range c.order {
		if strings.HasPrefix(key, cacheKeyPrefix+storeID) {
			delete(c.entries, key)
		} else {
			kept = append(kept, key)
		}
	}
	c.order = kept
	return nil
}

// Len reports the current entry count, expired entries included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

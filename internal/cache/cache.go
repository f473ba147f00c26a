// Package cache provides a TTL-bounded in-memory cache with hit/miss and
// slow-query statistics. It backs both the paginated-result cache and the
// row-count cache of the query engine.
package cache

import (
	"sync"
	"time"
)

// entry holds one cached value. An entry is valid while
// now - createdAt <= ttl; expired entries are evicted lazily on read or by
// the periodic sweep.
type entry[V any] struct {
	value     V
	createdAt time.Time
	ttl       time.Duration
}

func (e entry[V]) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Cache is a concurrency-safe TTL cache. The zero value is not usable;
// construct with New.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]

	stats         statsCounters
	slowThreshold time.Duration

	cleanupMu   sync.Mutex
	cleanupStop chan struct{}
}

// New creates an empty cache. slowThreshold classifies query durations
// reported via UpdateQueryStats; durations above it count as slow.
func New[V any](slowThreshold time.Duration) *Cache[V] {
	return &Cache[V]{
		items:         make(map[string]entry[V]),
		slowThreshold: slowThreshold,
	}
}

// Set stores value under key with the given ttl, replacing any previous
// entry. A non-positive ttl means the entry is already expired and is not
// stored.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, createdAt: time.Now(), ttl: ttl}
	c.mu.Unlock()
}

// Get returns the value stored under key. Expired entries are evicted and
// reported as misses. Every call counts as a hit or a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	now := time.Now()

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		c.stats.miss()
		return zero, false
	}
	if e.expired(now) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, still := c.items[key]; still && cur.expired(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		c.stats.miss()
		return zero, false
	}
	c.stats.hit()
	return e.value, true
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes all entries. Statistics are kept; only ResetStats clears them.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// StartCleanup launches the periodic sweep that removes every expired entry.
// Calling it while a sweep is already running is a no-op, as is a
// non-positive interval: lazy eviction on read still applies either way.
func (c *Cache[V]) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()
	if c.cleanupStop != nil {
		return
	}
	stop := make(chan struct{})
	c.cleanupStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-stop:
				return
			}
		}
	}()
}

// StopCleanup stops the periodic sweep. Safe to call multiple times.
func (c *Cache[V]) StopCleanup() {
	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()
	if c.cleanupStop == nil {
		return
	}
	close(c.cleanupStop)
	c.cleanupStop = nil
}

// sweep removes all currently-expired entries in one pass.
func (c *Cache[V]) sweep() {
	now := time.Now()
	c.mu.Lock()
	for key, e := range c.items {
		if e.expired(now) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
}

package cache

import (
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of cache and query performance counters.
type Stats struct {
	TotalQueries   int64         `json:"total_queries"`
	CacheHits      int64         `json:"cache_hits"`
	CacheMisses    int64         `json:"cache_misses"`
	SlowQueries    int64         `json:"slow_queries"`
	TotalQueryTime time.Duration `json:"total_query_time"`
	AvgQueryTime   time.Duration `json:"avg_query_time"`
	// HitRate is CacheHits / TotalQueries * 100, or 0 before any query ran.
	HitRate float64 `json:"hit_rate"`
	Entries int     `json:"entries"`
}

// statsCounters accumulates counters under its own lock so that hot cache
// reads never contend with stat snapshots for the item map lock.
type statsCounters struct {
	mu             sync.Mutex
	totalQueries   int64
	cacheHits      int64
	cacheMisses    int64
	slowQueries    int64
	totalQueryTime time.Duration
}

func (s *statsCounters) hit() {
	s.mu.Lock()
	s.cacheHits++
	s.mu.Unlock()
}

func (s *statsCounters) miss() {
	s.mu.Lock()
	s.cacheMisses++
	s.mu.Unlock()
}

// UpdateQueryStats records one completed query. Durations above the slow
// threshold increment the slow-query counter.
func (c *Cache[V]) UpdateQueryStats(duration time.Duration) {
	c.stats.mu.Lock()
	c.stats.totalQueries++
	c.stats.totalQueryTime += duration
	if duration > c.slowThreshold {
		c.stats.slowQueries++
	}
	c.stats.mu.Unlock()
}

// Stats returns a consistent snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	c.stats.mu.Lock()
	snap := Stats{
		TotalQueries:   c.stats.totalQueries,
		CacheHits:      c.stats.cacheHits,
		CacheMisses:    c.stats.cacheMisses,
		SlowQueries:    c.stats.slowQueries,
		TotalQueryTime: c.stats.totalQueryTime,
	}
	c.stats.mu.Unlock()

	if snap.TotalQueries > 0 {
		snap.AvgQueryTime = snap.TotalQueryTime / time.Duration(snap.TotalQueries)
		snap.HitRate = float64(snap.CacheHits) / float64(snap.TotalQueries) * 100
	}
	snap.Entries = c.Len()
	return snap
}

// ResetStats zeroes all counters. Entries are unaffected.
func (c *Cache[V]) ResetStats() {
	c.stats.mu.Lock()
	c.stats.totalQueries = 0
	c.stats.cacheHits = 0
	c.stats.cacheMisses = 0
	c.stats.slowQueries = 0
	c.stats.totalQueryTime = 0
	c.stats.mu.Unlock()
}

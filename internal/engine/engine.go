// Package engine implements the paginated-query engine: a dual-layer TTL
// cache in front of a MySQL table, a tiered row-count estimator, a
// search-strategy selector and a pagination-strategy selector composed into
// one read path.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"pagekit/internal/cache"
	"pagekit/internal/config"
	"pagekit/internal/countopt"
	"pagekit/internal/infra/db"
	"pagekit/internal/pagination"
	"pagekit/internal/resilience/circuitbreaker"
	"pagekit/internal/sqlbuilder"
	"pagekit/internal/tableconfig"
)

// Engine is the paginated-query engine. It owns the connection pool, the
// result and count caches and the per-table configuration registry.
// All methods are safe for concurrent use.
type Engine struct {
	cfg    config.Config
	logger *slog.Logger

	poolOnce sync.Once
	poolErr  error
	pool     *sql.DB
	breaker  *circuitbreaker.DBCircuitBreaker
	counter  *countopt.Optimizer

	tables  *tableconfig.Registry
	results *cache.Cache[any]
	counts  *cache.Cache[int64]

	pagCfg pagination.Config
}

// Option customizes engine construction.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTableConfigs registers per-table metadata at construction time.
func WithTableConfigs(configs map[string]tableconfig.Config) Option {
	return func(e *Engine) { e.tables.SetAll(configs) }
}

// WithPaginationConfig overrides the pagination limits.
func WithPaginationConfig(cfg pagination.Config) Option {
	return func(e *Engine) { e.pagCfg = cfg }
}

// New creates an engine. The connection pool is opened lazily on the first
// database operation; construction never touches the network.
func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		logger:  slog.Default(),
		tables:  tableconfig.NewRegistry(),
		results: cache.New[any](cfg.Engine.SlowQueryThreshold),
		counts:  cache.New[int64](cfg.Engine.SlowQueryThreshold),
		pagCfg:  pagination.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if cfg.Engine.TableConfigPath != "" {
		if err := e.tables.LoadFile(cfg.Engine.TableConfigPath); err != nil {
			e.logger.Warn("table config file not loaded", slog.Any("error", err))
		}
	}
	e.results.StartCleanup(cfg.Engine.CleanupInterval)
	e.counts.StartCleanup(cfg.Engine.CleanupInterval)
	return e
}

// NewWithDB creates an engine on an existing pool. Used by tests and by
// callers that manage the pool themselves.
func NewWithDB(pool *sql.DB, cfg config.Config, opts ...Option) *Engine {
	e := New(cfg, opts...)
	e.adoptPool(pool)
	return e
}

func (e *Engine) adoptPool(pool *sql.DB) {
	e.poolOnce.Do(func() {
		e.pool = pool
		e.breaker = circuitbreaker.NewDBCircuitBreaker(pool)
		e.counter = countopt.New(e.breaker, countopt.Config{
			Sentinel:      e.cfg.Engine.CountSentinel,
			SlowThreshold: e.cfg.Engine.SlowQueryThreshold,
		}, e.logger)
	})
}

// ensurePool opens the connection pool exactly once.
func (e *Engine) ensurePool(ctx context.Context) error {
	e.poolOnce.Do(func() {
		pool, err := db.Open(ctx, e.cfg.Database)
		if err != nil {
			e.poolErr = err
			return
		}
		e.pool = pool
		e.breaker = circuitbreaker.NewDBCircuitBreaker(pool)
		e.counter = countopt.New(e.breaker, countopt.Config{
			Sentinel:      e.cfg.Engine.CountSentinel,
			SlowThreshold: e.cfg.Engine.SlowQueryThreshold,
		}, e.logger)
	})
	if e.poolErr != nil {
		return e.poolErr
	}
	return nil
}

// SetTableConfig merges metadata for one table at runtime.
func (e *Engine) SetTableConfig(table string, cfg tableconfig.Config) {
	e.tables.Set(table, cfg)
}

// SetTableConfigs merges metadata for multiple tables at runtime.
func (e *Engine) SetTableConfigs(configs map[string]tableconfig.Config) {
	e.tables.SetAll(configs)
}

// GetTableConfig returns the effective metadata for a table. Unregistered
// tables get the conservative default, never an error.
func (e *Engine) GetTableConfig(table string) tableconfig.Config {
	return e.tables.Get(table)
}

// ClearCache drops every cached result and count.
func (e *Engine) ClearCache() {
	e.results.Clear()
	e.counts.Clear()
}

// CacheStats returns a snapshot of the result-cache statistics.
func (e *Engine) CacheStats() cache.Stats {
	return e.results.Stats()
}

// PerformanceReport logs a snapshot of the engine's performance counters.
func (e *Engine) PerformanceReport() {
	s := e.results.Stats()
	e.logger.Info("performance report",
		slog.Int64("total_queries", s.TotalQueries),
		slog.Int64("cache_hits", s.CacheHits),
		slog.Int64("cache_misses", s.CacheMisses),
		slog.Int64("slow_queries", s.SlowQueries),
		slog.String("hit_rate", fmt.Sprintf("%.1f%%", s.HitRate)),
		slog.Duration("avg_query_time", s.AvgQueryTime),
		slog.Int("cached_entries", s.Entries),
		slog.Int("cached_counts", e.counts.Len()))
}

// Close stops the cache sweeps, clears both caches and closes the pool.
func (e *Engine) Close() error {
	e.results.StopCleanup()
	e.counts.StopCleanup()
	e.results.Clear()
	e.counts.Clear()
	if e.pool != nil {
		if err := e.pool.Close(); err != nil {
			return fmt.Errorf("close pool: %w", err)
		}
	}
	return nil
}

// querier returns the breaker-protected database handle.
func (e *Engine) querier(ctx context.Context) (*circuitbreaker.DBCircuitBreaker, error) {
	if err := e.ensurePool(ctx); err != nil {
		return nil, err
	}
	return e.breaker, nil
}

// validTable validates a table name before it is interpolated anywhere.
func validTable(table string) error {
	if !sqlbuilder.ValidIdentifier(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}

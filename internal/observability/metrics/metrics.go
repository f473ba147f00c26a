// Package metrics provides centralized Prometheus metrics for the query
// engine: request volume per pagination strategy, cache effectiveness,
// count-tier usage and query latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts paginated queries by table and chosen strategy.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagekit_queries_total",
			Help: "Total number of paginated queries",
		},
		[]string{"table", "strategy"},
	)

	// CacheEventsTotal counts result-cache hits and misses.
	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagekit_cache_events_total",
			Help: "Result cache hits and misses",
		},
		[]string{"cache", "result"},
	)

	// QueryDuration tracks end-to-end query duration per operation.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagekit_query_duration_seconds",
			Help:    "Query duration distribution",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"operation"},
	)

	// CountMethodTotal counts which count-optimizer tier resolved each total.
	CountMethodTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagekit_count_method_total",
			Help: "Count optimizer tier usage",
		},
		[]string{"method"},
	)

	// TableRows tracks the last resolved total per table.
	TableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pagekit_table_rows",
			Help: "Last resolved row count per table",
		},
		[]string{"table"},
	)

	// SlowQueriesTotal counts queries above the slow threshold.
	SlowQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagekit_slow_queries_total",
			Help: "Queries slower than the configured slow threshold",
		},
	)
)

// RecordQuery records one paginated query and its strategy.
func RecordQuery(table, strategy string) {
	QueriesTotal.WithLabelValues(table, strategy).Inc()
}

// RecordCacheEvent records a hit or miss for the named cache.
// cache is "result" or "count"; result is "hit" or "miss".
func RecordCacheEvent(cache, result string) {
	CacheEventsTotal.WithLabelValues(cache, result).Inc()
}

// RecordDuration records an operation duration.
func RecordDuration(operation string, d time.Duration) {
	QueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordCountMethod records which tier resolved a count.
func RecordCountMethod(method string) {
	CountMethodTotal.WithLabelValues(method).Inc()
}

// UpdateTableRows updates the per-table row gauge.
func UpdateTableRows(table string, total int64) {
	TableRows.WithLabelValues(table).Set(float64(total))
}

// RecordSlowQuery increments the slow-query counter.
func RecordSlowQuery() {
	SlowQueriesTotal.Inc()
}

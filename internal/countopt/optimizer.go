// Package countopt estimates matching row counts through a tiered fallback
// chain, trading accuracy for speed on the unfiltered path and paying for
// exact counts only where predicates make estimation unsafe.
package countopt

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"pagekit/internal/sqlbuilder"
)

// Querier is the subset of *sql.DB the optimizer needs. Satisfied by both a
// raw pool and the circuit-breaker wrapper.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DefaultSentinel is the conservative row count reported when every
// estimation tier fails. Overridable via Config: a full COUNT scan is never
// issued on the unfiltered path.
const DefaultSentinel int64 = 1_000_000

// Count-method identifiers, logged with every tier attempt.
const (
	MethodTableStatus       = "show_table_status"
	MethodInformationSchema = "information_schema"
	MethodAutoIncrement     = "auto_increment_range"
	MethodPrimaryKeyRange   = "primary_key_range"
	MethodSentinel          = "fallback_sentinel"
	MethodExactFullText     = "exact_count_fulltext"
	MethodExactIndexed      = "exact_count_indexed"
)

// Config tunes the optimizer.
type Config struct {
	// Sentinel is the degraded constant returned on total tier exhaustion.
	Sentinel int64
	// SlowThreshold classifies tier durations for logging. Only duration
	// drives the slow classification, never the method.
	SlowThreshold time.Duration
}

// Optimizer resolves row counts for the pagination engine. The count path
// never returns an error: tier failures fall through and total exhaustion
// yields the sentinel.
type Optimizer struct {
	db            Querier
	logger        *slog.Logger
	sentinel      int64
	slowThreshold time.Duration
}

// New creates an optimizer. A nil logger falls back to slog.Default().
func New(db Querier, cfg Config, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	sentinel := cfg.Sentinel
	if sentinel <= 0 {
		sentinel = DefaultSentinel
	}
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	return &Optimizer{db: db, logger: logger, sentinel: sentinel, slowThreshold: slow}
}

// Result carries the resolved count and how it was obtained.
type Result struct {
	Count int64
	// Method is the tier that produced the count.
	Method string
	// Estimated marks counts that may deviate from the true row count.
	Estimated bool
}

// Count resolves the row count for table under the given predicate.
//
// Tier order, first success wins:
//   - no predicate: SHOW TABLE STATUS -> information_schema TABLE_ROWS ->
//     AUTO_INCREMENT minus MIN(id) -> MAX(id)-MIN(id)+1 -> sentinel
//   - predicate with full text: exact COUNT(*) (estimation is unsafe with
//     relevance semantics)
//   - predicate without full text: exact COUNT(1) over the indexed predicate
func (o *Optimizer) Count(ctx context.Context, table string, where sqlbuilder.Where) Result {
	if !sqlbuilder.ValidIdentifier(table) {
		o.logger.Error("count: invalid table name, returning sentinel", slog.String("table", table))
		return Result{Count: o.sentinel, Method: MethodSentinel, Estimated: true}
	}

	if where.HasPredicate() {
		return o.exactCount(ctx, table, where)
	}

	tiers := []struct {
		method string
		run    func(context.Context, string) (int64, error)
	}{
		{MethodTableStatus, o.fromTableStatus},
		{MethodInformationSchema, o.fromInformationSchema},
		{MethodAutoIncrement, o.fromAutoIncrement},
		{MethodPrimaryKeyRange, o.fromPrimaryKeyRange},
	}

	for _, tier := range tiers {
		start := time.Now()
		count, err := tier.run(ctx, table)
		duration := time.Since(start)
		if err != nil {
			o.logger.Debug("count tier failed, falling through",
				slog.String("table", table),
				slog.String("method", tier.method),
				slog.Duration("duration", duration),
				slog.Any("error", err))
			continue
		}
		o.logTier(table, tier.method, duration, count)
		return Result{Count: count, Method: tier.method, Estimated: true}
	}

	o.logger.Warn("count estimation exhausted all tiers, using sentinel",
		slog.String("table", table), slog.Int64("sentinel", o.sentinel))
	return Result{Count: o.sentinel, Method: MethodSentinel, Estimated: true}
}

// exactCount runs a real COUNT. With full text a COUNT(*) carries the MATCH
// semantics; otherwise COUNT(1) relies on indexed predicate evaluation.
func (o *Optimizer) exactCount(ctx context.Context, table string, where sqlbuilder.Where) Result {
	method := MethodExactIndexed
	expr := "COUNT(1)"
	if where.HasFullText {
		method = MethodExactFullText
		expr = "COUNT(*)"
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s", expr, table, where.Clause)
	start := time.Now()
	var count int64
	err := o.db.QueryRowContext(ctx, query, where.Args...).Scan(&count)
	duration := time.Since(start)
	if err != nil {
		// No cheaper tier exists under a predicate; degrade to the sentinel
		// rather than failing the read path.
		o.logger.Warn("exact count failed, using sentinel",
			slog.String("table", table),
			slog.String("method", method),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return Result{Count: o.sentinel, Method: MethodSentinel, Estimated: true}
	}
	o.logTier(table, method, duration, count)
	return Result{Count: count, Method: method}
}

// fromTableStatus reads the storage-engine row statistic. The table name is
// interpolated after identifier validation: SHOW statements cannot be
// prepared with placeholders on every server version.
func (o *Optimizer) fromTableStatus(ctx context.Context, table string) (int64, error) {
	rows, err := o.db.QueryContext(ctx, "SHOW TABLE STATUS LIKE '"+table+"'")
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	rowsIdx := -1
	for i, c := range cols {
		if c == "Rows" {
			rowsIdx = i
			break
		}
	}
	if rowsIdx < 0 {
		return 0, fmt.Errorf("no Rows column in table status")
	}
	if !rows.Next() {
		return 0, fmt.Errorf("table %s not found in table status", table)
	}

	vals := make([]any, len(cols))
	for i := range vals {
		vals[i] = new(sql.RawBytes)
	}
	if err := rows.Scan(vals...); err != nil {
		return 0, err
	}
	raw := *(vals[rowsIdx].(*sql.RawBytes))
	if len(raw) == 0 {
		return 0, fmt.Errorf("NULL row statistic")
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

// fromInformationSchema reads the logical-schema row statistic.
func (o *Optimizer) fromInformationSchema(ctx context.Context, table string) (int64, error) {
	const query = `SELECT TABLE_ROWS FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`
	var count sql.NullInt64
	if err := o.db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return 0, err
	}
	if !count.Valid {
		return 0, fmt.Errorf("NULL TABLE_ROWS for %s", table)
	}
	return count.Int64, nil
}

// fromAutoIncrement estimates from the auto-increment high watermark minus
// the smallest observed id.
func (o *Optimizer) fromAutoIncrement(ctx context.Context, table string) (int64, error) {
	const query = `SELECT AUTO_INCREMENT FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`
	var next sql.NullInt64
	if err := o.db.QueryRowContext(ctx, query, table).Scan(&next); err != nil {
		return 0, err
	}
	if !next.Valid || next.Int64 <= 0 {
		return 0, fmt.Errorf("no auto-increment watermark for %s", table)
	}

	var minID sql.NullInt64
	if err := o.db.QueryRowContext(ctx, "SELECT MIN(id) FROM "+table).Scan(&minID); err != nil {
		return 0, err
	}
	if !minID.Valid {
		return 0, fmt.Errorf("table %s is empty", table)
	}
	return next.Int64 - minID.Int64, nil
}

// fromPrimaryKeyRange estimates from the primary-key value span.
func (o *Optimizer) fromPrimaryKeyRange(ctx context.Context, table string) (int64, error) {
	var span sql.NullInt64
	query := "SELECT MAX(id) - MIN(id) + 1 FROM " + table
	if err := o.db.QueryRowContext(ctx, query).Scan(&span); err != nil {
		return 0, err
	}
	if !span.Valid {
		return 0, fmt.Errorf("table %s is empty", table)
	}
	return span.Int64, nil
}

func (o *Optimizer) logTier(table, method string, duration time.Duration, count int64) {
	attrs := []any{
		slog.String("table", table),
		slog.String("method", method),
		slog.Duration("duration", duration),
		slog.Int64("result", count),
	}
	if duration > o.slowThreshold {
		o.logger.Warn("slow count query", attrs...)
		return
	}
	o.logger.Debug("count resolved", attrs...)
}

package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pagekit/internal/countopt"
	"pagekit/internal/observability/metrics"
	"pagekit/internal/observability/tracing"
	"pagekit/internal/pagination"
	"pagekit/internal/sqlbuilder"
	"pagekit/internal/tableconfig"
)

// RowMapper scans the current row into T. The engine never interprets row
// contents; mapping is the caller's contract.
type RowMapper[T any] func(rows *sql.Rows) (T, error)

// QueryWithPagination is the primary read API: one page of table, filtered,
// sorted and fetched with the cheapest applicable strategy.
//
// Flow: normalize params -> result-cache lookup -> on miss: build WHERE ->
// resolve total via count cache or count optimizer -> short-circuit empty
// page when the offset is past the total -> build ORDER BY -> select and run
// the pagination strategy -> cache -> record stats.
func QueryWithPagination[T any](ctx context.Context, e *Engine, table string, params pagination.Params, mapper RowMapper[T], selectFields ...string) (*pagination.Result[T], error) {
	start := time.Now()

	if err := validTable(table); err != nil {
		return nil, err
	}
	fields, err := joinSelectFields(selectFields)
	if err != nil {
		return nil, err
	}
	params = params.Normalize(e.pagCfg)

	ctx, span := tracing.StartQuerySpan(ctx, table, params.Page, params.PageSize)
	defer span.End()

	key := resultCacheKey(table, params, fields)
	if cached, ok := e.results.Get(key); ok {
		if result, ok := cached.(*pagination.Result[T]); ok {
			metrics.RecordCacheEvent("result", "hit")
			tracing.AnnotateCacheHit(span)
			e.finishQuery(table, "cache_hit", time.Since(start))
			return result, nil
		}
	}
	metrics.RecordCacheEvent("result", "miss")

	tcfg := e.tables.Get(table)
	where := sqlbuilder.BuildWhere(params.Filters(), tcfg)
	if where.SearchStrategy != "" {
		e.logger.Debug("title search strategy selected",
			slog.String("table", table),
			slog.String("strategy", string(where.SearchStrategy)))
	}

	q, err := e.querier(ctx)
	if err != nil {
		return nil, err
	}

	total := e.resolveCount(ctx, table, params, where)

	offset := pagination.CalculateOffset(params.Page, params.PageSize)
	if total > 0 && int64(offset) >= total {
		// The requested page is past the data. Skip the fetch entirely and
		// cache the empty page briefly.
		result := pagination.NewResult([]T{}, pagination.NewMetadata(params, total))
		e.results.Set(key, result, e.cfg.Engine.EmptyPageTTL)
		e.finishQuery(table, "empty_page", time.Since(start))
		return result, nil
	}

	order := sqlbuilder.BuildOrderBy(params.SortBy, params.SortOrder, tcfg)
	if order.FellBack {
		e.logger.Warn("sort field rejected, using table default",
			slog.String("table", table),
			slog.String("requested", params.SortBy),
			slog.String("fallback", order.Field))
	}

	strategy := pagination.SelectStrategy(where.HasPredicate(), offset, order, tcfg)
	tracing.AnnotateStrategy(span, string(strategy))

	var query pagination.Query
	if strategy == pagination.StrategyCursorSeek {
		query, strategy = e.seekOrFallback(ctx, q, table, fields, where, order, params.PageSize, offset, tcfg)
	} else {
		query = pagination.BuildDataQuery(table, fields, where, order, params.PageSize, offset, tcfg)
	}

	rows, err := q.QueryContext(ctx, query.SQL, query.Args...)
	if err != nil {
		// No safe fallback exists for the data fetch itself.
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	data := make([]T, 0, params.PageSize)
	for rows.Next() {
		item, err := mapper(rows)
		if err != nil {
			return nil, fmt.Errorf("query %s: scan: %w", table, err)
		}
		data = append(data, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	result := pagination.NewResult(data, pagination.NewMetadata(params, total))

	ttl := e.cfg.Engine.ResultTTL
	if where.HasFullText {
		// Relevance-ranked results go stale faster; keep them briefly.
		ttl = e.cfg.Engine.FullTextResultTTL
	}
	e.results.Set(key, result, ttl)

	metrics.RecordQuery(table, string(strategy))
	e.finishQuery(table, string(strategy), time.Since(start))
	return result, nil
}

// seekOrFallback runs the cursor probe and builds the seek main query.
// A probe that comes back empty (race with deletes, stale count) downgrades
// this one request to plain LIMIT/OFFSET instead of failing it.
func (e *Engine) seekOrFallback(ctx context.Context, q countopt.Querier, table, fields string, where sqlbuilder.Where, order sqlbuilder.OrderBy, limit, offset int, tcfg tableconfig.Config) (pagination.Query, pagination.Strategy) {
	probe := pagination.BuildProbeQuery(table, order, offset, tcfg)

	var boundary any
	err := q.QueryRowContext(ctx, probe.SQL, probe.Args...).Scan(&boundary)
	if err != nil {
		if err != sql.ErrNoRows {
			e.logger.Warn("cursor probe failed, falling back to OFFSET",
				slog.String("table", table),
				slog.Int("offset", offset),
				slog.Any("error", err))
		}
		return pagination.BuildDataQuery(table, fields, where, order, limit, offset, tcfg),
			pagination.StrategyShallowOffset
	}

	return pagination.BuildSeekQuery(table, fields, order, boundary, limit),
		pagination.StrategyCursorSeek
}

// resolveCount returns the total for the filter set, consulting the count
// cache first. The count cache is keyed without pagination fields, so all
// pages of one filter set resolve the count at most once per TTL window.
func (e *Engine) resolveCount(ctx context.Context, table string, params pagination.Params, where sqlbuilder.Where) int64 {
	ck := countCacheKey(table, params)
	if total, ok := e.counts.Get(ck); ok {
		metrics.RecordCacheEvent("count", "hit")
		return total
	}
	metrics.RecordCacheEvent("count", "miss")

	res := e.counter.Count(ctx, table, where)
	metrics.RecordCountMethod(res.Method)
	metrics.UpdateTableRows(table, res.Count)
	e.counts.Set(ck, res.Count, e.cfg.Engine.CountTTL)
	return res.Count
}

// finishQuery records per-request statistics and flags slow queries.
func (e *Engine) finishQuery(table, operation string, duration time.Duration) {
	e.results.UpdateQueryStats(duration)
	metrics.RecordDuration(operation, duration)
	if duration > e.cfg.Engine.SlowQueryThreshold {
		metrics.RecordSlowQuery()
		e.logger.Warn("slow query",
			slog.String("table", table),
			slog.String("operation", operation),
			slog.Duration("duration", duration))
	}
}

// joinSelectFields validates and joins the projection. No fields means "*".
func joinSelectFields(fields []string) (string, error) {
	if len(fields) == 0 {
		return "*", nil
	}
	for _, f := range fields {
		if f == "*" {
			if len(fields) != 1 {
				return "", fmt.Errorf("invalid select fields: mixed * and column list")
			}
			return "*", nil
		}
		if !sqlbuilder.ValidIdentifier(f) {
			return "", fmt.Errorf("invalid select field %q", f)
		}
	}
	return strings.Join(fields, ", "), nil
}

// MapRow is the default mapper: one row as a column-name-keyed map, []byte
// values decoded to string.
func MapRow(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(map[string]any, len(cols))
	for i, col := range cols {
		if b, ok := vals[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = vals[i]
	}
	return row, nil
}

// QueryMaps is the convenience form of QueryWithPagination for callers that
// want rows as generic maps.
func (e *Engine) QueryMaps(ctx context.Context, table string, params pagination.Params, selectFields ...string) (*pagination.Result[map[string]any], error) {
	return QueryWithPagination(ctx, e, table, params, MapRow, selectFields...)
}

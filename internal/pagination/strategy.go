package pagination

import (
	"fmt"

	"pagekit/internal/sqlbuilder"
	"pagekit/internal/tableconfig"
)

// Strategy names how a page of data is fetched. Exactly one strategy is
// chosen per request.
type Strategy string

const (
	// StrategyFirstPage: no predicate, offset 0. Index-hinted ORDER BY plus
	// LIMIT, no OFFSET at all.
	StrategyFirstPage Strategy = "first_page"
	// StrategyShallowOffset: no predicate, offset below the table's deep
	// threshold. Index-hinted LIMIT/OFFSET.
	StrategyShallowOffset Strategy = "shallow_offset"
	// StrategyCursorSeek: no predicate, deep offset, cursor-capable sort
	// field. Probe the page-boundary key, then seek from it. OFFSET cost is
	// O(offset) on a row store; the seek turns a deep page into
	// O(log n + pageSize) at the price of one probe query.
	StrategyCursorSeek Strategy = "cursor_seek"
	// StrategyFilteredFirstPage: predicate present, offset 0.
	StrategyFilteredFirstPage Strategy = "filtered_first_page"
	// StrategyFilteredOffset: predicate present, offset > 0. Seek is not
	// attempted under arbitrary filters: filtered ordering may not align
	// with the cursor index.
	StrategyFilteredOffset Strategy = "filtered_offset"
)

// Query is one executable statement.
type Query struct {
	SQL  string
	Args []any
}

// SelectStrategy picks the pagination strategy for a request.
// The deep threshold and cursor capability come from the table config.
func SelectStrategy(hasPredicate bool, offset int, order sqlbuilder.OrderBy, cfg tableconfig.Config) Strategy {
	if hasPredicate {
		if offset == 0 {
			return StrategyFilteredFirstPage
		}
		return StrategyFilteredOffset
	}
	if offset == 0 {
		return StrategyFirstPage
	}
	if offset >= cfg.DeepPaginationThreshold && cfg.IsCursorField(order.Field) {
		return StrategyCursorSeek
	}
	return StrategyShallowOffset
}

// BuildDataQuery renders the main fetch statement for every strategy except
// StrategyCursorSeek, whose statement depends on a probe result (see
// BuildProbeQuery / BuildSeekQuery). It is also the fallback statement when
// a cursor probe comes back empty.
func BuildDataQuery(table, selectFields string, where sqlbuilder.Where, order sqlbuilder.OrderBy, limit, offset int, cfg tableconfig.Config) Query {
	if where.HasPredicate() {
		return Query{
			SQL: fmt.Sprintf("SELECT %s FROM %s %s %s %s",
				selectFields, table, where.Clause, order.Clause(), sqlbuilder.LimitOffset(limit, offset)),
			Args: where.Args,
		}
	}
	hint := sqlbuilder.IndexHint(cfg.IndexFor(order.Field, order.Direction))
	return Query{
		SQL: fmt.Sprintf("SELECT %s FROM %s%s %s %s",
			selectFields, table, hint, order.Clause(), sqlbuilder.LimitOffset(limit, offset)),
	}
}

// BuildProbeQuery renders the single-row boundary probe of the seek path:
// it reads the sort-key value at the page boundary so the main query can
// seek instead of scanning offset rows.
func BuildProbeQuery(table string, order sqlbuilder.OrderBy, offset int, cfg tableconfig.Config) Query {
	hint := sqlbuilder.IndexHint(cfg.IndexFor(order.Field, order.Direction))
	return Query{
		SQL: fmt.Sprintf("SELECT %s FROM %s%s %s LIMIT 1 OFFSET %d",
			order.Field, table, hint, order.ClauseWithTieBreak(), offset),
	}
}

// BuildSeekQuery renders the seek main query given the probed boundary key.
// The id tie-break keeps page boundaries deterministic when sort keys repeat.
func BuildSeekQuery(table, selectFields string, order sqlbuilder.OrderBy, boundary any, limit int) Query {
	return Query{
		SQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s %s ? %s %s",
			selectFields, table, order.Field, order.SeekOperator(),
			order.ClauseWithTieBreak(), sqlbuilder.LimitOffset(limit, 0)),
		Args: []any{boundary},
	}
}

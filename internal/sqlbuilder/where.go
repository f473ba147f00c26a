package sqlbuilder

import (
	"strings"

	"pagekit/internal/tableconfig"
)

// Filters are the structured, already-validated filter parameters a caller
// may supply. Zero values mean "no filter".
type Filters struct {
	Title     string // title search input, strategy chosen by BuildTitleCondition
	Type      string // exact match on the type column
	Date      string // full date (YYYY-MM-DD) or prefix (YYYY, YYYY-MM)
	StartTime string // inclusive lower bound on the time column
	EndTime   string // inclusive upper bound on the time column
}

// HasAny reports whether any filter is active.
func (f Filters) HasAny() bool {
	return f.Title != "" || f.Type != "" || f.Date != "" || f.StartTime != "" || f.EndTime != ""
}

// timeColumn is the column date and time-range filters apply to.
const timeColumn = "created_at"

// Where is a fully rendered predicate. Clause carries the leading "WHERE"
// and is empty when no condition is active.
type Where struct {
	Clause         string
	Args           []any
	HasFullText    bool
	SearchStrategy SearchStrategy
}

// HasPredicate reports whether any condition made it into the clause.
func (w Where) HasPredicate() bool {
	return w.Clause != ""
}

// BuildWhere renders all active filters plus the table's static conditions
// into one ANDed predicate. An empty condition list yields an empty clause.
func BuildWhere(f Filters, cfg tableconfig.Config) Where {
	var (
		conditions []string
		args       []any
		result     Where
	)

	for _, static := range cfg.StaticConditions {
		if static != "" {
			conditions = append(conditions, static)
		}
	}

	if f.Title != "" {
		tc := BuildTitleCondition(f.Title, cfg)
		if tc.Clause != "" {
			conditions = append(conditions, tc.Clause)
			args = append(args, tc.Args...)
			result.HasFullText = tc.FullText
			result.SearchStrategy = tc.Strategy
		}
	}

	if f.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, f.Type)
	}

	if f.Date != "" {
		if len(f.Date) == len("2006-01-02") {
			conditions = append(conditions, "DATE("+timeColumn+") = ?")
			args = append(args, f.Date)
		} else {
			// Partial date (year or year-month) matches as a prefix.
			conditions = append(conditions, "DATE_FORMAT("+timeColumn+", '%Y-%m-%d') LIKE ?")
			args = append(args, f.Date+"%")
		}
	}

	switch {
	case f.StartTime != "" && f.EndTime != "":
		conditions = append(conditions, timeColumn+" BETWEEN ? AND ?")
		args = append(args, f.StartTime, f.EndTime)
	case f.StartTime != "":
		conditions = append(conditions, timeColumn+" >= ?")
		args = append(args, f.StartTime)
	case f.EndTime != "":
		conditions = append(conditions, timeColumn+" <= ?")
		args = append(args, f.EndTime)
	}

	if len(conditions) == 0 {
		return result
	}
	result.Clause = "WHERE " + strings.Join(conditions, " AND ")
	result.Args = args
	return result
}

package sqlbuilder

import (
	"strings"

	"pagekit/internal/tableconfig"
)

// OrderBy is a validated sort specification. Field is always a member of the
// table's allow-list and Direction is always ASC or DESC, so both are safe
// to interpolate.
type OrderBy struct {
	Field     string
	Direction string
	// FellBack is set when the requested sort field was rejected and the
	// table default was substituted.
	FellBack bool
}

// BuildOrderBy validates sortBy against the table allow-list and normalizes
// sortOrder. A disallowed field falls back to the table's default sort field,
// never to caller input: field names cannot be parameter-bound, so this is
// the injection guard for the ORDER BY position.
func BuildOrderBy(sortBy, sortOrder string, cfg tableconfig.Config) OrderBy {
	direction := "DESC"
	switch strings.ToUpper(strings.TrimSpace(sortOrder)) {
	case "ASC":
		direction = "ASC"
	case "DESC", "":
		direction = "DESC"
	}

	field := strings.TrimSpace(sortBy)
	fellBack := false
	if field == "" {
		field = cfg.DefaultSortField
	} else if !cfg.IsSortAllowed(field) || !ValidIdentifier(field) {
		field = cfg.DefaultSortField
		fellBack = true
	}
	if field == "" || !ValidIdentifier(field) {
		field = "id"
	}

	return OrderBy{Field: field, Direction: direction, FellBack: fellBack}
}

// Clause renders "ORDER BY field direction".
func (o OrderBy) Clause() string {
	return "ORDER BY " + o.Field + " " + o.Direction
}

// ClauseWithTieBreak appends id in the same direction as a deterministic
// tie-break, required on the seek-pagination path where equal sort keys
// would otherwise make page boundaries unstable.
func (o OrderBy) ClauseWithTieBreak() string {
	if o.Field == "id" {
		return o.Clause()
	}
	return o.Clause() + ", id " + o.Direction
}

// SeekOperator returns the comparison operator for the seek main query:
// rows at or past the page-boundary key in scan direction.
func (o OrderBy) SeekOperator() string {
	if o.Direction == "ASC" {
		return ">="
	}
	return "<="
}

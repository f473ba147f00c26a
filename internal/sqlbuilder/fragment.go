// Package sqlbuilder turns structured query parameters into parameterized
// SQL fragments: WHERE predicates (including the title-search strategy
// selection), validated ORDER BY clauses, and the small set of fragments
// that cannot be parameter-bound (LIMIT/OFFSET integers, index hints).
package sqlbuilder

import (
	"fmt"
	"regexp"
	"strconv"
)

// identifierPattern is the allow-list for anything interpolated as a SQL
// identifier: table names, column names, index names. Field names cannot be
// parameter-bound, so everything else is rejected outright.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s is safe to interpolate as an identifier.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Identifier returns s ready for interpolation, or an error when s is not a
// plain identifier.
func Identifier(s string) (string, error) {
	if !ValidIdentifier(s) {
		return "", fmt.Errorf("sqlbuilder: invalid identifier %q", s)
	}
	return s, nil
}

// LimitOffset renders a LIMIT/OFFSET fragment from validated non-negative
// integers. MySQL rejects parameter-bound LIMIT in several execution paths,
// so the integers are interpolated after validation instead of bound.
func LimitOffset(limit, offset int) string {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset == 0 {
		return "LIMIT " + strconv.Itoa(limit)
	}
	return "LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(offset)
}

// IndexHint renders a USE INDEX hint for an allow-listed index name.
// Returns "" when name is empty or not a valid identifier, so callers can
// append it unconditionally.
func IndexHint(name string) string {
	if name == "" || !ValidIdentifier(name) {
		return ""
	}
	return " USE INDEX (" + name + ")"
}

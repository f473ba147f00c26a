package engine

import (
	"strconv"
	"strings"

	"pagekit/internal/pagination"
)

// keyEscaper makes caller-supplied values safe to join with the "|" field
// delimiter: a literal "|" inside a value must stay distinguishable from a
// field boundary, otherwise two different filter sets can render the same
// key and one caller gets another query's cached page.
var keyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// resultCacheKey canonically encodes everything that affects a paginated
// result: table, every normalized parameter including page and pageSize, and
// the selected fields. Identical queries always collide; queries differing
// in any parameter never do.
func resultCacheKey(table string, p pagination.Params, selectFields string) string {
	var b strings.Builder
	b.Grow(96)
	b.WriteString("q|")
	b.WriteString(table)
	b.WriteString("|page=")
	b.WriteString(strconv.Itoa(p.Page))
	b.WriteString("|size=")
	b.WriteString(strconv.Itoa(p.PageSize))
	writeFilterFields(&b, p)
	b.WriteString("|sort=")
	b.WriteString(keyEscaper.Replace(p.SortBy))
	b.WriteString("|order=")
	b.WriteString(keyEscaper.Replace(p.SortOrder))
	b.WriteString("|fields=")
	b.WriteString(selectFields)
	return b.String()
}

// countCacheKey encodes table plus filters only, deliberately excluding
// pagination fields so every page of one filter set shares a single count.
func countCacheKey(table string, p pagination.Params) string {
	var b strings.Builder
	b.Grow(64)
	b.WriteString("c|")
	b.WriteString(table)
	writeFilterFields(&b, p)
	return b.String()
}

// writeFilterFields appends the filter values in fixed order, escaping each
// value. The table name needs no escaping: it passed identifier validation
// before any key is built.
func writeFilterFields(b *strings.Builder, p pagination.Params) {
	b.WriteString("|title=")
	b.WriteString(keyEscaper.Replace(p.Title))
	b.WriteString("|type=")
	b.WriteString(keyEscaper.Replace(p.Type))
	b.WriteString("|date=")
	b.WriteString(keyEscaper.Replace(p.Date))
	b.WriteString("|start=")
	b.WriteString(keyEscaper.Replace(p.StartTime))
	b.WriteString("|end=")
	b.WriteString(keyEscaper.Replace(p.EndTime))
}

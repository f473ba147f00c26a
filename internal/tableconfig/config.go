// Package tableconfig holds per-table index and sort metadata used by the
// query engine to pick pagination strategies and validate sort fields.
package tableconfig

// Config describes the index layout and query capabilities of a single table.
// Unconfigured tables fall back to Default(), which is deliberately
// conservative: common sort fields only, no full-text index, no cursor fields.
type Config struct {
	// SortIndexes maps sort field -> direction (ASC/DESC) -> index name.
	// Index names are used as hints on the unfiltered pagination path.
	SortIndexes map[string]map[string]string `yaml:"sort_indexes"`

	// CursorFields lists fields eligible for cursor/seek pagination.
	// A field must be backed by an index whose order matches the sort order.
	CursorFields []string `yaml:"cursor_fields"`

	// DeepPaginationThreshold is the OFFSET beyond which the engine switches
	// from plain LIMIT/OFFSET to cursor-seek pagination.
	DeepPaginationThreshold int `yaml:"deep_pagination_threshold"`

	// AllowedSortFields is the sort-by allow-list. Anything outside it is
	// replaced with DefaultSortField, never passed through to SQL.
	AllowedSortFields []string `yaml:"allowed_sort_fields"`

	// DefaultSortField is the safe fallback when the requested sort field
	// is not allowed.
	DefaultSortField string `yaml:"default_sort_field"`

	// FullTextFields lists the columns covered by a FULLTEXT index.
	// Empty means the table is not full-text capable.
	FullTextFields []string `yaml:"full_text_fields"`

	// StaticConditions are fixed predicates always ANDed into the WHERE
	// clause for this table, e.g. soft-delete exclusion.
	StaticConditions []string `yaml:"static_conditions"`

	// SoftDelete marks tables whose deletes flip is_deleted instead of
	// removing rows.
	SoftDelete bool `yaml:"soft_delete"`
}

// DefaultDeepPaginationThreshold is applied when a table config does not set
// its own threshold.
const DefaultDeepPaginationThreshold = 10000

// Default returns the conservative fallback configuration used for tables
// that were never registered.
func Default() Config {
	return Config{
		SortIndexes:             map[string]map[string]string{},
		CursorFields:            nil,
		DeepPaginationThreshold: DefaultDeepPaginationThreshold,
		AllowedSortFields:       []string{"id", "date", "created_at"},
		DefaultSortField:        "created_at",
		FullTextFields:          nil,
		StaticConditions:        nil,
	}
}

// IsSortAllowed reports whether field is on the allow-list.
func (c Config) IsSortAllowed(field string) bool {
	for _, f := range c.AllowedSortFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsCursorField reports whether field is eligible for seek pagination.
func (c Config) IsCursorField(field string) bool {
	for _, f := range c.CursorFields {
		if f == field {
			return true
		}
	}
	return false
}

// HasFullText reports whether the table carries a FULLTEXT index.
func (c Config) HasFullText() bool {
	return len(c.FullTextFields) > 0
}

// IndexFor returns the index name registered for the given sort field and
// direction, or "" when none is registered.
func (c Config) IndexFor(field, direction string) string {
	if dirs, ok := c.SortIndexes[field]; ok {
		return dirs[direction]
	}
	return ""
}

// merge overlays non-zero fields of other onto c and returns the result.
// Zero-valued fields of other keep the existing value, so partial updates
// at runtime never wipe metadata set at startup.
func (c Config) merge(other Config) Config {
	out := c
	if len(other.SortIndexes) > 0 {
		merged := make(map[string]map[string]string, len(c.SortIndexes)+len(other.SortIndexes))
		for field, dirs := range c.SortIndexes {
			cp := make(map[string]string, len(dirs))
			for d, idx := range dirs {
				cp[d] = idx
			}
			merged[field] = cp
		}
		for field, dirs := range other.SortIndexes {
			if _, ok := merged[field]; !ok {
				merged[field] = make(map[string]string, len(dirs))
			}
			for d, idx := range dirs {
				merged[field][d] = idx
			}
		}
		out.SortIndexes = merged
	}
	if len(other.CursorFields) > 0 {
		out.CursorFields = append([]string(nil), other.CursorFields...)
	}
	if other.DeepPaginationThreshold > 0 {
		out.DeepPaginationThreshold = other.DeepPaginationThreshold
	}
	if len(other.AllowedSortFields) > 0 {
		out.AllowedSortFields = append([]string(nil), other.AllowedSortFields...)
	}
	if other.DefaultSortField != "" {
		out.DefaultSortField = other.DefaultSortField
	}
	if len(other.FullTextFields) > 0 {
		out.FullTextFields = append([]string(nil), other.FullTextFields...)
	}
	if len(other.StaticConditions) > 0 {
		out.StaticConditions = append([]string(nil), other.StaticConditions...)
	}
	if other.SoftDelete {
		out.SoftDelete = true
	}
	return out
}

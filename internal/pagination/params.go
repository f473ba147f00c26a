// Package pagination provides the pagination primitives of the query engine:
// normalized query parameters, metadata calculation, the generic result
// wrapper and the strategy selector that decides how each page is fetched.
package pagination

import (
	"os"
	"strconv"

	"pagekit/internal/sqlbuilder"
)

// Params are the query parameters accepted by the engine. They arrive
// already validated by the transport layer; Normalize only clamps ranges,
// it never rejects.
type Params struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Title     string `json:"title,omitempty"`
	Type      string `json:"type,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

// Config holds pagination limits. Values can come from the environment.
type Config struct {
	DefaultPage     int
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultConfig returns the default pagination configuration:
// page=1, pageSize=10, max=1000.
func DefaultConfig() Config {
	return Config{
		DefaultPage:     1,
		DefaultPageSize: 10,
		MaxPageSize:     1000,
	}
}

// LoadFromEnv loads pagination config from environment variables,
// falling back to DefaultConfig for anything unset:
//   - PAGINATION_DEFAULT_PAGE
//   - PAGINATION_DEFAULT_PAGE_SIZE
//   - PAGINATION_MAX_PAGE_SIZE
func LoadFromEnv() Config {
	return Config{
		DefaultPage:     getEnvAsInt("PAGINATION_DEFAULT_PAGE", 1),
		DefaultPageSize: getEnvAsInt("PAGINATION_DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:     getEnvAsInt("PAGINATION_MAX_PAGE_SIZE", 1000),
	}
}

// Normalize clamps page and pageSize into valid ranges. Out-of-range values
// are corrected, never rejected: this layer favors availability.
func (p Params) Normalize(cfg Config) Params {
	if p.Page < 1 {
		p.Page = cfg.DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = cfg.DefaultPageSize
	}
	if p.PageSize > cfg.MaxPageSize {
		p.PageSize = cfg.MaxPageSize
	}
	return p
}

// Filters extracts the filter portion of the parameters, the part that
// shapes the WHERE clause and the count-cache key.
func (p Params) Filters() sqlbuilder.Filters {
	return sqlbuilder.Filters{
		Title:     p.Title,
		Type:      p.Type,
		Date:      p.Date,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
	}
}

// getEnvAsInt retrieves an environment variable and parses it as an integer.
// Returns the default value if the variable is not set or cannot be parsed.
func getEnvAsInt(key string, defaultValue int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultValue
	}
	return val
}

// Package records exposes the paginated query engine over HTTP: generic
// list, get, create, update and delete handlers for any configured table.
package records

import (
	"fmt"
	"net/http"
	"strconv"

	"pagekit/internal/pagination"
)

// ParseListParams reads pagination and filter parameters from the query
// string. Malformed integers are rejected; range clamping happens later in
// Params.Normalize.
func ParseListParams(r *http.Request) (pagination.Params, error) {
	q := r.URL.Query()
	params := pagination.Params{
		Title:     q.Get("title"),
		Type:      q.Get("type"),
		Date:      q.Get("date"),
		StartTime: q.Get("start_time"),
		EndTime:   q.Get("end_time"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid page: must be a positive integer")
		}
		params.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return params, fmt.Errorf("invalid page_size: must be a positive integer")
		}
		params.PageSize = size
	}

	return params, nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id: must be a positive integer")
	}
	return id, nil
}

package pagination

// Metadata contains pagination metadata included alongside every page.
type Metadata struct {
	TotalRecords int64 `json:"total_records"` // Total rows across all pages
	Page         int   `json:"page"`          // Current page number (1-based)
	PageSize     int   `json:"page_size"`     // Rows per page
	TotalPages   int   `json:"total_pages"`   // ceil(TotalRecords / PageSize)
}

// NewMetadata builds metadata for the given normalized parameters and total.
func NewMetadata(params Params, total int64) Metadata {
	return Metadata{
		TotalRecords: total,
		Page:         params.Page,
		PageSize:     params.PageSize,
		TotalPages:   CalculateTotalPages(total, params.PageSize),
	}
}

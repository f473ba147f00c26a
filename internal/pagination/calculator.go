package pagination

// CalculateOffset calculates the row offset for a 1-based page number.
//
// Formula: offset = (page - 1) * pageSize
func CalculateOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// CalculateTotalPages returns ceil(total / pageSize). An empty result set
// has zero pages, so an out-of-range page still reports consistent totals.
func CalculateTotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

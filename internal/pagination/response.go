package pagination

// Result is a generic paginated result wrapper. T is the row type; the
// engine never interprets row contents, it only shapes data plus metadata.
type Result[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// NewResult creates a paginated result from data and metadata.
func NewResult[T any](data []T, metadata Metadata) *Result[T] {
	if data == nil {
		data = []T{}
	}
	return &Result[T]{Data: data, Pagination: metadata}
}

package records

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"pagekit/internal/engine"
	"pagekit/internal/pagination"
)

// Engine is the query-engine surface the handlers need. Satisfied by
// *engine.Engine; narrowed here so handler tests can stub it.
type Engine interface {
	QueryMaps(ctx context.Context, table string, params pagination.Params, selectFields ...string) (*pagination.Result[map[string]any], error)
	GetDataByID(ctx context.Context, table string, id int64) (map[string]any, error)
	CreateData(ctx context.Context, table string, data map[string]any) (int64, error)
	UpdateData(ctx context.Context, table string, id int64, data map[string]any) error
	DeleteData(ctx context.Context, table string, id int64, hard bool) error
}

// Register mounts the record routes on mux.
func Register(mux *http.ServeMux, eng Engine, logger *slog.Logger) {
	mux.Handle("GET /tables/{table}/records", ListHandler{Engine: eng, Logger: logger})
	mux.Handle("GET /tables/{table}/records/{id}", GetHandler{Engine: eng, Logger: logger})
	mux.Handle("POST /tables/{table}/records", CreateHandler{Engine: eng, Logger: logger})
	mux.Handle("PUT /tables/{table}/records/{id}", UpdateHandler{Engine: eng, Logger: logger})
	mux.Handle("DELETE /tables/{table}/records/{id}", DeleteHandler{Engine: eng, Logger: logger})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidTable), errors.Is(err, engine.ErrNoFields):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

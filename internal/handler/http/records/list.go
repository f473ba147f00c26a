package records

import (
	"log/slog"
	"net/http"
	"time"

	"pagekit/internal/handler/http/requestid"
	"pagekit/internal/handler/http/respond"
)

// ListHandler serves one page of a table with filters, sorting and
// pagination metadata.
type ListHandler struct {
	Engine Engine
	Logger *slog.Logger
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	reqID := requestid.FromContext(ctx)
	table := r.PathValue("table")

	params, err := ParseListParams(r)
	if err != nil {
		h.Logger.Warn("invalid list parameters",
			slog.String("table", table),
			slog.String("request_id", reqID),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Engine.QueryMaps(ctx, table, params)
	if err != nil {
		h.Logger.Error("list query failed",
			slog.String("table", table),
			slog.Int("page", params.Page),
			slog.String("request_id", reqID),
			slog.Any("error", err))
		respond.SafeError(w, statusFor(err), err)
		return
	}

	h.Logger.Info("list served",
		slog.String("table", table),
		slog.Int("page", result.Pagination.Page),
		slog.Int("returned", len(result.Data)),
		slog.Int64("total", result.Pagination.TotalRecords),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", reqID))

	respond.JSON(w, http.StatusOK, result)
}

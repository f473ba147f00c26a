package records

import (
	"log/slog"
	"net/http"

	"pagekit/internal/handler/http/requestid"
	"pagekit/internal/handler/http/respond"
)

// GetHandler serves a single record by id.
type GetHandler struct {
	Engine Engine
	Logger *slog.Logger
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	table := r.PathValue("table")

	id, err := pathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	row, err := h.Engine.GetDataByID(ctx, table, id)
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			h.Logger.Error("get failed",
				slog.String("table", table),
				slog.Int64("id", id),
				slog.String("request_id", requestid.FromContext(ctx)),
				slog.Any("error", err))
		}
		respond.SafeError(w, status, err)
		return
	}

	respond.JSON(w, http.StatusOK, row)
}

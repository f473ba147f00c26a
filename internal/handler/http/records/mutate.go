package records

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"pagekit/internal/handler/http/requestid"
	"pagekit/internal/handler/http/respond"
)

// decodeBody reads a flat JSON object of column values.
func decodeBody(r *http.Request) (map[string]any, error) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return data, nil
}

// CreateHandler inserts one record.
type CreateHandler struct {
	Engine Engine
	Logger *slog.Logger
}

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	table := r.PathValue("table")

	data, err := decodeBody(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.Engine.CreateData(ctx, table, data)
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			h.Logger.Error("create failed",
				slog.String("table", table),
				slog.String("request_id", requestid.FromContext(ctx)),
				slog.Any("error", err))
		}
		respond.SafeError(w, status, err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// UpdateHandler updates one record by id.
type UpdateHandler struct {
	Engine Engine
	Logger *slog.Logger
}

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	table := r.PathValue("table")

	id, err := pathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := decodeBody(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Engine.UpdateData(ctx, table, id, data); err != nil {
		status := statusFor(err)
		if status >= 500 {
			h.Logger.Error("update failed",
				slog.String("table", table),
				slog.Int64("id", id),
				slog.String("request_id", requestid.FromContext(ctx)),
				slog.Any("error", err))
		}
		respond.SafeError(w, status, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteHandler deletes one record by id. "?hard=true" forces a physical
// delete on soft-delete tables.
type DeleteHandler struct {
	Engine Engine
	Logger *slog.Logger
}

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	table := r.PathValue("table")

	id, err := pathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	hard := r.URL.Query().Get("hard") == "true"

	if err := h.Engine.DeleteData(ctx, table, id, hard); err != nil {
		status := statusFor(err)
		if status >= 500 {
			h.Logger.Error("delete failed",
				slog.String("table", table),
				slog.Int64("id", id),
				slog.String("request_id", requestid.FromContext(ctx)),
				slog.Any("error", err))
		}
		respond.SafeError(w, status, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

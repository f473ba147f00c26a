package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"pagekit/internal/sqlbuilder"
)

// CreateData inserts one row and returns its auto-increment id. Column names
// come from the map keys and are identifier-validated; values are always
// parameter-bound.
func (e *Engine) CreateData(ctx context.Context, table string, data map[string]any) (int64, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	cols, args, err := sortedColumns(data)
	if err != nil {
		return 0, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders)

	q, err := e.querier(ctx)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create %s: last insert id: %w", table, err)
	}
	e.logger.Debug("row created",
		slog.String("table", table),
		slog.Int64("id", id),
		slog.Duration("duration", time.Since(start)))
	return id, nil
}

// UpdateData updates one row by id. Zero affected rows is reported as
// ErrNotFound: the record does not exist or was already soft-deleted.
func (e *Engine) UpdateData(ctx context.Context, table string, id int64, data map[string]any) error {
	if err := validTable(table); err != nil {
		return err
	}
	cols, args, err := sortedColumns(data)
	if err != nil {
		return err
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	if e.tables.Get(table).SoftDelete {
		query += " AND is_deleted = 0"
	}
	args = append(args, id)

	q, err := e.querier(ctx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s id=%d: %w", table, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s id=%d: rows affected: %w", table, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update %s id=%d: %w", table, id, ErrNotFound)
	}
	return nil
}

// DeleteData removes one row by id. Tables configured with SoftDelete flip
// is_deleted instead of removing the row; hard forces a real DELETE.
func (e *Engine) DeleteData(ctx context.Context, table string, id int64, hard bool) error {
	if err := validTable(table); err != nil {
		return err
	}

	var query string
	if e.tables.Get(table).SoftDelete && !hard {
		query = fmt.Sprintf("UPDATE %s SET is_deleted = 1 WHERE id = ? AND is_deleted = 0", table)
	} else {
		query = fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
	}

	q, err := e.querier(ctx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s id=%d: %w", table, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s id=%d: rows affected: %w", table, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete %s id=%d: %w", table, id, ErrNotFound)
	}
	return nil
}

// GetDataByID fetches one row by id as a generic map. Soft-deleted rows are
// invisible on tables configured with SoftDelete.
func (e *Engine) GetDataByID(ctx context.Context, table string, id int64) (map[string]any, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE id = ?", table)
	if e.tables.Get(table).SoftDelete {
		query += " AND is_deleted = 0"
	}
	query += " LIMIT 1"

	q, err := e.querier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get %s id=%d: %w", table, id, err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get %s id=%d: %w", table, id, err)
		}
		return nil, fmt.Errorf("get %s id=%d: %w", table, id, ErrNotFound)
	}
	row, err := MapRow(rows)
	if err != nil {
		return nil, fmt.Errorf("get %s id=%d: scan: %w", table, id, err)
	}
	return row, nil
}

// sortedColumns validates column names and returns them in deterministic
// order with matching args. Map iteration order must never shape SQL.
func sortedColumns(data map[string]any) ([]string, []any, error) {
	if len(data) == 0 {
		return nil, nil, ErrNoFields
	}
	cols := make([]string, 0, len(data))
	for col := range data {
		if !sqlbuilder.ValidIdentifier(col) {
			return nil, nil, fmt.Errorf("invalid column name %q", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = data[c]
	}
	return cols, args, nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

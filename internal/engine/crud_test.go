package engine_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagekit/internal/engine"
	"pagekit/internal/tableconfig"
)

func softDeleteTables() map[string]tableconfig.Config {
	return map[string]tableconfig.Config{
		"articles": {SoftDelete: true},
	}
}

func TestCreateData_SortsColumnsDeterministically(t *testing.T) {
	e, mock := newEngine(t, nil)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO articles (title, type) VALUES (?, ?)")).
		WithArgs("hello", "news").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := e.CreateData(context.Background(), "articles",
		map[string]any{"type": "news", "title": "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateData_RejectsInvalidColumn(t *testing.T) {
	e, mock := newEngine(t, nil)

	_, err := e.CreateData(context.Background(), "articles",
		map[string]any{"title = '' WHERE 1=1; --": "x"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateData_NoFields(t *testing.T) {
	e, _ := newEngine(t, nil)

	_, err := e.CreateData(context.Background(), "articles", map[string]any{})
	assert.ErrorIs(t, err, engine.ErrNoFields)
}

func TestUpdateData_SoftDeleteAware(t *testing.T) {
	e, mock := newEngine(t, softDeleteTables())

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE articles SET title = ? WHERE id = ? AND is_deleted = 0")).
		WithArgs("new title", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := e.UpdateData(context.Background(), "articles", 5,
		map[string]any{"title": "new title"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateData_ZeroRowsIsNotFound(t *testing.T) {
	e, mock := newEngine(t, nil)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE articles SET title = ? WHERE id = ?")).
		WithArgs("x", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := e.UpdateData(context.Background(), "articles", 99,
		map[string]any{"title": "x"})
	assert.ErrorIs(t, err, engine.ErrNotFound)
	assert.True(t, engine.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteData_SoftByDefault(t *testing.T) {
	e, mock := newEngine(t, softDeleteTables())

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE articles SET is_deleted = 1 WHERE id = ? AND is_deleted = 0")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := e.DeleteData(context.Background(), "articles", 3, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteData_HardOverride(t *testing.T) {
	e, mock := newEngine(t, softDeleteTables())

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM articles WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := e.DeleteData(context.Background(), "articles", 3, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteData_AlreadyDeleted(t *testing.T) {
	e, mock := newEngine(t, softDeleteTables())

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE articles SET is_deleted = 1 WHERE id = ? AND is_deleted = 0")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := e.DeleteData(context.Background(), "articles", 3, false)
	assert.ErrorIs(t, err, engine.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDataByID_SoftDeleteAware(t *testing.T) {
	e, mock := newEngine(t, softDeleteTables())

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM articles WHERE id = ? AND is_deleted = 0 LIMIT 1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(5), "hello"))

	row, err := e.GetDataByID(context.Background(), "articles", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), row["id"])
	assert.Equal(t, "hello", row["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDataByID_NotFound(t *testing.T) {
	e, mock := newEngine(t, nil)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM articles WHERE id = ? LIMIT 1")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	_, err := e.GetDataByID(context.Background(), "articles", 404)
	assert.ErrorIs(t, err, engine.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCrud_InvalidTable(t *testing.T) {
	e, _ := newEngine(t, nil)
	ctx := context.Background()

	_, err := e.CreateData(ctx, "bad table", map[string]any{"a": 1})
	assert.ErrorIs(t, err, engine.ErrInvalidTable)
	assert.ErrorIs(t, e.UpdateData(ctx, "bad table", 1, map[string]any{"a": 1}), engine.ErrInvalidTable)
	assert.ErrorIs(t, e.DeleteData(ctx, "bad table", 1, false), engine.ErrInvalidTable)
	_, err = e.GetDataByID(ctx, "bad table", 1)
	assert.ErrorIs(t, err, engine.ErrInvalidTable)
}

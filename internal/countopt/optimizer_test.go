package countopt_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagekit/internal/countopt"
	"pagekit/internal/sqlbuilder"
)

func newOptimizer(t *testing.T) (*countopt.Optimizer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	opt := countopt.New(db, countopt.Config{SlowThreshold: time.Second}, nil)
	return opt, mock
}

func statusRows(rowCount string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"Name", "Engine", "Rows", "Data_length"}).
		AddRow("articles", "InnoDB", rowCount, "1048576")
}

func TestCount_TableStatusTier(t *testing.T) {
	opt, mock := newOptimizer(t)

	mock.ExpectQuery("SHOW TABLE STATUS LIKE 'articles'").
		WillReturnRows(statusRows("25000"))

	got := opt.Count(context.Background(), "articles", sqlbuilder.Where{})
	assert.Equal(t, int64(25000), got.Count)
	assert.Equal(t, countopt.MethodTableStatus, got.Method)
	assert.True(t, got.Estimated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_FallsThroughToInformationSchema(t *testing.T) {
	opt, mock := newOptimizer(t)

	mock.ExpectQuery("SHOW TABLE STATUS").
		WillReturnError(fmt.Errorf("SHOW denied"))
	mock.ExpectQuery("SELECT TABLE_ROWS FROM information_schema").
		WithArgs("articles").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_ROWS"}).AddRow(int64(12345)))

	got := opt.Count(context.Background(), "articles", sqlbuilder.Where{})
	assert.Equal(t, int64(12345), got.Count)
	assert.Equal(t, countopt.MethodInformationSchema, got.Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_AutoIncrementTier(t *testing.T) {
	opt, mock := newOptimizer(t)

	mock.ExpectQuery("SHOW TABLE STATUS").
		WillReturnError(fmt.Errorf("denied"))
	mock.ExpectQuery("SELECT TABLE_ROWS FROM information_schema").
		WithArgs("articles").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_ROWS"}).AddRow(nil))
	mock.ExpectQuery("SELECT AUTO_INCREMENT FROM information_schema").
		WithArgs("articles").
		WillReturnRows(sqlmock.NewRows([]string{"AUTO_INCREMENT"}).AddRow(int64(5001)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MIN(id) FROM articles")).
		WillReturnRows(sqlmock.NewRows([]string{"MIN(id)"}).AddRow(int64(1)))

	got := opt.Count(context.Background(), "articles", sqlbuilder.Where{})
	assert.Equal(t, int64(5000), got.Count)
	assert.Equal(t, countopt.MethodAutoIncrement, got.Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_PrimaryKeyRangeTier(t *testing.T) {
	opt, mock := newOptimizer(t)

	mock.ExpectQuery("SHOW TABLE STATUS").WillReturnError(fmt.Errorf("denied"))
	mock.ExpectQuery("SELECT TABLE_ROWS").WithArgs("articles").
		WillReturnError(fmt.Errorf("denied"))
	mock.ExpectQuery("SELECT AUTO_INCREMENT").WithArgs("articles").
		WillReturnRows(sqlmock.NewRows([]string{"AUTO_INCREMENT"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(id) - MIN(id) + 1 FROM articles")).
		WillReturnRows(sqlmock.NewRows([]string{"span"}).AddRow(int64(31337)))

	got := opt.Count(context.Background(), "articles", sqlbuilder.Where{})
	assert.Equal(t, int64(31337), got.Count)
	assert.Equal(t, countopt.MethodPrimaryKeyRange, got.Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_AllTiersFailYieldSentinel(t *testing.T) {
	opt, mock := newOptimizer(t)

	mock.ExpectQuery("SHOW TABLE STATUS").WillReturnError(fmt.Errorf("down"))
	mock.ExpectQuery("SELECT TABLE_ROWS").WithArgs("articles").WillReturnError(fmt.Errorf("down"))
	mock.ExpectQuery("SELECT AUTO_INCREMENT").WithArgs("articles").WillReturnError(fmt.Errorf("down"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(id) - MIN(id) + 1")).WillReturnError(fmt.Errorf("down"))

	got := opt.Count(context.Background(), "articles", sqlbuilder.Where{})
	assert.Equal(t, countopt.DefaultSentinel, got.Count)
	assert.Equal(t, countopt.MethodSentinel, got.Method)
	assert.True(t, got.Estimated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_CustomSentinel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	opt := countopt.New(db, countopt.Config{Sentinel: 500}, nil)

	mock.ExpectQuery("SHOW TABLE STATUS").WillReturnError(fmt.Errorf("down"))
	mock.ExpectQuery("SELECT TABLE_ROWS").WillReturnError(fmt.Errorf("down"))
	mock.ExpectQuery("SELECT AUTO_INCREMENT").WillReturnError(fmt.Errorf("down"))
	mock.ExpectQuery(regexp.QuoteMeta("MAX(id)")).WillReturnError(fmt.Errorf("down"))

	got := opt.Count(context.Background(), "articles", sqlbuilder.Where{})
	assert.Equal(t, int64(500), got.Count)
}

func TestCount_PredicateUsesExactCount(t *testing.T) {
	opt, mock := newOptimizer(t)

	where := sqlbuilder.Where{Clause: "WHERE type = ?", Args: []any{"news"}}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM articles WHERE type = ?")).
		WithArgs("news").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(777)))

	got := opt.Count(context.Background(), "articles", where)
	assert.Equal(t, int64(777), got.Count)
	assert.Equal(t, countopt.MethodExactIndexed, got.Method)
	assert.False(t, got.Estimated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_FullTextPredicateUsesCountStar(t *testing.T) {
	opt, mock := newOptimizer(t)

	where := sqlbuilder.Where{
		Clause:      "WHERE MATCH(title) AGAINST (? IN BOOLEAN MODE)",
		Args:        []any{"+医院*"},
		HasFullText: true,
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles WHERE MATCH(title)")).
		WithArgs("+医院*").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	got := opt.Count(context.Background(), "articles", where)
	assert.Equal(t, int64(42), got.Count)
	assert.Equal(t, countopt.MethodExactFullText, got.Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_ExactCountFailureDegradesToSentinel(t *testing.T) {
	opt, mock := newOptimizer(t)

	where := sqlbuilder.Where{Clause: "WHERE type = ?", Args: []any{"news"}}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1)")).
		WithArgs("news").
		WillReturnError(fmt.Errorf("connection reset"))

	got := opt.Count(context.Background(), "articles", where)
	assert.Equal(t, countopt.DefaultSentinel, got.Count)
	assert.Equal(t, countopt.MethodSentinel, got.Method)
	assert.True(t, got.Estimated)
}

func TestCount_InvalidTableNameNeverTouchesDB(t *testing.T) {
	opt, mock := newOptimizer(t)

	got := opt.Count(context.Background(), "articles; DROP TABLE users", sqlbuilder.Where{})
	assert.Equal(t, countopt.DefaultSentinel, got.Count)
	assert.NoError(t, mock.ExpectationsWereMet(), "no SQL may be issued for an invalid table name")
}

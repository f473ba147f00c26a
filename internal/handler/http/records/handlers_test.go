package records_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagekit/internal/engine"
	"pagekit/internal/handler/http/records"
	"pagekit/internal/pagination"
)

// stubEngine records calls and returns canned responses.
type stubEngine struct {
	listResult *pagination.Result[map[string]any]
	listErr    error
	getRow     map[string]any
	getErr     error
	createID   int64
	createErr  error
	updateErr  error
	deleteErr  error

	lastTable  string
	lastParams pagination.Params
	lastID     int64
	lastData   map[string]any
	lastHard   bool
}

func (s *stubEngine) QueryMaps(_ context.Context, table string, params pagination.Params, _ ...string) (*pagination.Result[map[string]any], error) {
	s.lastTable, s.lastParams = table, params
	return s.listResult, s.listErr
}

func (s *stubEngine) GetDataByID(_ context.Context, table string, id int64) (map[string]any, error) {
	s.lastTable, s.lastID = table, id
	return s.getRow, s.getErr
}

func (s *stubEngine) CreateData(_ context.Context, table string, data map[string]any) (int64, error) {
	s.lastTable, s.lastData = table, data
	return s.createID, s.createErr
}

func (s *stubEngine) UpdateData(_ context.Context, table string, id int64, data map[string]any) error {
	s.lastTable, s.lastID, s.lastData = table, id, data
	return s.updateErr
}

func (s *stubEngine) DeleteData(_ context.Context, table string, id int64, hard bool) error {
	s.lastTable, s.lastID, s.lastHard = table, id, hard
	return s.deleteErr
}

func newServer(stub *stubEngine) *httptest.Server {
	mux := http.NewServeMux()
	records.Register(mux, stub, slog.Default())
	return httptest.NewServer(mux)
}

func TestList_PassesParamsThrough(t *testing.T) {
	stub := &stubEngine{
		listResult: pagination.NewResult(
			[]map[string]any{{"id": int64(1), "title": "hello"}},
			pagination.Metadata{TotalRecords: 1, Page: 2, PageSize: 25, TotalPages: 1}),
	}
	srv := newServer(stub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tables/articles/records?page=2&page_size=25&type=news&sort_by=id&sort_order=asc")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "articles", stub.lastTable)
	assert.Equal(t, 2, stub.lastParams.Page)
	assert.Equal(t, 25, stub.lastParams.PageSize)
	assert.Equal(t, "news", stub.lastParams.Type)
	assert.Equal(t, "id", stub.lastParams.SortBy)
	assert.Equal(t, "asc", stub.lastParams.SortOrder)

	var body pagination.Result[map[string]any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Pagination.TotalRecords)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "hello", body.Data[0]["title"])
}

func TestList_RejectsMalformedPage(t *testing.T) {
	srv := newServer(&stubEngine{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tables/articles/records?page=abc")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestList_InvalidTableIs400(t *testing.T) {
	stub := &stubEngine{listErr: fmt.Errorf("%w: %q", engine.ErrInvalidTable, "x")}
	srv := newServer(stub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tables/whatever/records")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGet_NotFoundIs404(t *testing.T) {
	stub := &stubEngine{getErr: fmt.Errorf("get articles id=9: %w", engine.ErrNotFound)}
	srv := newServer(stub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tables/articles/records/9")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int64(9), stub.lastID)
}

func TestGet_RejectsBadID(t *testing.T) {
	srv := newServer(&stubEngine{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tables/articles/records/-4")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreate_ReturnsNewID(t *testing.T) {
	stub := &stubEngine{createID: 42}
	srv := newServer(stub)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tables/articles/records", "application/json",
		strings.NewReader(`{"title":"hello","type":"news"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, map[string]any{"title": "hello", "type": "news"}, stub.lastData)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(42), body["id"])
}

func TestCreate_RejectsMalformedBody(t *testing.T) {
	srv := newServer(&stubEngine{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tables/articles/records", "application/json",
		strings.NewReader(`{not json`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdate_NotFoundIs404(t *testing.T) {
	stub := &stubEngine{updateErr: fmt.Errorf("update articles id=7: %w", engine.ErrNotFound)}
	srv := newServer(stub)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/tables/articles/records/7",
		strings.NewReader(`{"title":"x"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int64(7), stub.lastID)
}

func TestDelete_HardFlag(t *testing.T) {
	stub := &stubEngine{}
	srv := newServer(stub)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/tables/articles/records/3?hard=true", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), stub.lastID)
	assert.True(t, stub.lastHard)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/exporters"
)

type stubExporter struct {
	mu   sync.Mutex
	fail error
	last []entities.Book
}

func (e *stubExporter) Export(books []entities.Book) (exporters.ExportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return exporters.ExportResult{}, e.fail
	}
	e.last = append([]entities.Book(nil), books...)
	return exporters.ExportResult{BooksExported: len(books)}, nil
}

type testServer struct {
	router   *gin.Engine
	exporter *stubExporter
	syncer   *catalog.SnapshotSync
	db       *database.Database
}

type repairFunc func(reason string) error

func (f repairFunc) ScheduleResync(reason string) error { return f(reason) }

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "library.db"), database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exporter := &stubExporter{}
	syncer := catalog.NewSnapshotSync(db, exporter)
	svc := catalog.NewService(db, syncer)

	router := NewRouter(RouterConfig{
		Books:          svc,
		Checkouts:      svc,
		Users:          svc,
		Resyncer:       svc,
		SnapshotStatus: syncer,
		Store:          db,
		Version:        "test",
	})
	return &testServer{router: router, exporter: exporter, syncer: syncer, db: db}
}

func (s *testServer) do(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type listBooksResponse struct {
	Books []entities.BookSummary `json:"books"`
	Count int                    `json:"count"`
}

type checkedOutUsersResponse struct {
	CheckedOutUsers []entities.UserSummary `json:"checked_out_users"`
}

func TestRouter_Scenario(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, "POST", "/books?title=Dune&author=Herbert", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[SuccessResponse](t, w)
	assert.Equal(t, "Book added successfully", added.Message)
	assert.Empty(t, added.Warning)

	w = s.do(t, "POST", "/users", `{"name":"Alice"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "User added successfully", decode[SuccessResponse](t, w).Message)

	w = s.do(t, "POST", "/books/1/checkout/1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Book checked out successfully", decode[SuccessResponse](t, w).Message)

	w = s.do(t, "GET", "/checked-out-users", "")
	require.Equal(t, http.StatusOK, w.Code)
	holders := decode[checkedOutUsersResponse](t, w)
	assert.Equal(t, []entities.UserSummary{{ID: 1, Name: "Alice"}}, holders.CheckedOutUsers)

	w = s.do(t, "GET", "/users/1/books", "")
	require.Equal(t, http.StatusOK, w.Code)
	borrowed := decode[listBooksResponse](t, w)
	assert.Equal(t, []entities.BookSummary{{ID: 1, Title: "Dune", Author: "Herbert"}}, borrowed.Books)

	w = s.do(t, "DELETE", "/books/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book deleted successfully", decode[SuccessResponse](t, w).Message)

	w = s.do(t, "GET", "/books", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[listBooksResponse](t, w)
	assert.Empty(t, all.Books)
	assert.Zero(t, all.Count)
	assert.Empty(t, s.exporter.last)
}

func TestRouter_AddBookValidation(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, "POST", "/books", `{"author":"Nobody"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "title")

	w = s.do(t, "POST", "/books", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_AddBookForm(t *testing.T) {
	s := setupTestServer(t)

	form := url.Values{"title": {"Dune"}, "author": {"Herbert"}}
	req := httptest.NewRequest("POST", "/books", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, "GET", "/books/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[bookDetail](t, w)
	assert.Equal(t, "Dune", detail.Title)
	assert.Nil(t, detail.HolderID)
}

func TestRouter_EditBook(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, "POST", "/books", `{"title":"Dune","author":"Herbert"}`).Code)

	w := s.do(t, "PUT", "/books/1?author=Frank%20Herbert", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Book edited successfully", decode[SuccessResponse](t, w).Message)

	detail := decode[bookDetail](t, s.do(t, "GET", "/books/1", ""))
	assert.Equal(t, "Dune", detail.Title)
	assert.Equal(t, "Frank Herbert", detail.Author)

	w = s.do(t, "PUT", "/books/1", `{"title":"Dune Messiah"}`)
	require.Equal(t, http.StatusOK, w.Code)
	detail = decode[bookDetail](t, s.do(t, "GET", "/books/1", ""))
	assert.Equal(t, "Dune Messiah", detail.Title)
	assert.Equal(t, "Frank Herbert", detail.Author)

	assert.Equal(t, http.StatusNotFound, s.do(t, "PUT", "/books/9", `{"title":"x"}`).Code)

	w = s.do(t, "PUT", "/books/1", `{"title":""}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	detail = decode[bookDetail](t, s.do(t, "GET", "/books/1", ""))
	assert.Empty(t, detail.Title)
	assert.Equal(t, "Frank Herbert", detail.Author)
}

func TestRouter_NotFound(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, "POST", "/users", `{"name":"Alice"}`).Code)

	w := s.do(t, "POST", "/books/99/checkout/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book or User not found", decode[ErrorResponse](t, w).Error)

	w = s.do(t, "DELETE", "/books/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book not found", decode[ErrorResponse](t, w).Error)

	assert.Equal(t, http.StatusNotFound, s.do(t, "GET", "/books/99", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, "POST", "/books/99/return", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, "GET", "/users/7/books", "").Code)

	holders := decode[checkedOutUsersResponse](t, s.do(t, "GET", "/checked-out-users", ""))
	assert.Empty(t, holders.CheckedOutUsers)
}

func TestRouter_InvalidIDs(t *testing.T) {
	s := setupTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, "DELETE", "/books/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/books/0", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "POST", "/books/1/checkout/x", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/users/-1/books", "").Code)
}

func TestRouter_ReturnBook(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, "POST", "/books", `{"title":"Dune"}`).Code)
	require.Equal(t, http.StatusOK, s.do(t, "POST", "/users", `{"name":"Alice"}`).Code)
	require.Equal(t, http.StatusOK, s.do(t, "POST", "/books/1/checkout/1", "").Code)

	w := s.do(t, "POST", "/books/1/return", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book returned successfully", decode[SuccessResponse](t, w).Message)

	detail := decode[bookDetail](t, s.do(t, "GET", "/books/1", ""))
	assert.Nil(t, detail.HolderID)
}

func TestRouter_StaleSnapshotWarning(t *testing.T) {
	s := setupTestServer(t)
	s.exporter.fail = errors.New("read-only file system")

	w := s.do(t, "POST", "/books", `{"title":"Dune","author":"Herbert"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[SuccessResponse](t, w)
	assert.Equal(t, "Book added successfully", resp.Message)
	assert.Equal(t, staleSnapshotWarning, resp.Warning)

	all := decode[listBooksResponse](t, s.do(t, "GET", "/books", ""))
	assert.Equal(t, 1, all.Count)

	status := decode[catalog.SyncStatus](t, s.do(t, "GET", "/api/snapshot/status", ""))
	assert.False(t, status.InSync)

	assert.Equal(t, http.StatusInternalServerError, s.do(t, "POST", "/api/snapshot/resync", "").Code)

	s.exporter.fail = nil
	w = s.do(t, "POST", "/api/snapshot/resync", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.exporter.last, 1)

	status = decode[catalog.SyncStatus](t, s.do(t, "GET", "/api/snapshot/status", ""))
	assert.True(t, status.InSync)
	assert.Equal(t, 1, status.BooksExported)
}

func TestRouter_StaleSnapshotWarning_RepairQueue(t *testing.T) {
	t.Run("repair queued", func(t *testing.T) {
		s := setupTestServer(t)
		var reasons []string
		s.syncer.SetRepairQueue(repairFunc(func(reason string) error {
			reasons = append(reasons, reason)
			return nil
		}))
		s.exporter.fail = errors.New("read-only file system")

		w := s.do(t, "POST", "/books", `{"title":"Dune"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, staleSnapshotRepairQueued, decode[SuccessResponse](t, w).Warning)
		assert.Len(t, reasons, 1)
	})

	t.Run("queue rejects repair", func(t *testing.T) {
		s := setupTestServer(t)
		s.syncer.SetRepairQueue(repairFunc(func(string) error {
			return errors.New("queue closed")
		}))
		s.exporter.fail = errors.New("read-only file system")

		w := s.do(t, "POST", "/books", `{"title":"Dune"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, staleSnapshotWarning, decode[SuccessResponse](t, w).Warning)
	})
}

func TestRouter_Health(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, "GET", "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")

	w = s.do(t, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checks["database"])
	assert.Equal(t, "not exported yet", health.Checks["snapshot"])
	assert.Equal(t, "test", health.Version)

	require.NoError(t, s.db.Close())
	w = s.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type stubAuditReader struct {
	events      []entities.AuditEvent
	limit       int
	historyType string
	historyID   uint
}

func (r *stubAuditReader) RecentEvents(limit int) ([]entities.AuditEvent, error) {
	r.limit = limit
	return r.events, nil
}

func (r *stubAuditReader) EntityHistory(entityType string, entityID uint) ([]entities.AuditEvent, error) {
	r.historyType = entityType
	r.historyID = entityID
	return r.events, nil
}

func TestAuditController(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &stubAuditReader{events: []entities.AuditEvent{{ID: 1, Action: entities.AuditActionAddBook}}}
	router := gin.New()
	router.GET("/api/audit", NewAuditController(reader).GetEvents)

	serve := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
		return w
	}

	w := serve("/api/audit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultAuditLimit, reader.limit)
	assert.Contains(t, w.Body.String(), `"add_book"`)

	require.Equal(t, http.StatusOK, serve("/api/audit?limit=5").Code)
	assert.Equal(t, 5, reader.limit)

	require.Equal(t, http.StatusOK, serve("/api/audit?entity_type=book&entity_id=3").Code)
	assert.Equal(t, "book", reader.historyType)
	assert.Equal(t, uint(3), reader.historyID)

	assert.Equal(t, http.StatusBadRequest, serve("/api/audit?limit=zero").Code)
	assert.Equal(t, http.StatusBadRequest, serve("/api/audit?entity_type=book").Code)
}

func TestRespondMutation_StorageError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/x", func(c *gin.Context) {
		respondMutation(c, errors.Join(catalog.ErrStorage, context.DeadlineExceeded), "Book added successfully", nil, "Book")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode[ErrorResponse](t, w).Error)
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/errcat"
	"github.com/tbourn/go-error-catalog/internal/http/middleware"
	"github.com/tbourn/go-error-catalog/internal/repo"
	"github.com/tbourn/go-error-catalog/internal/services"
)

// ---------- test DB + repo shim ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testReportRepo implements services.ReportRepo over the repo package (like router.go).
type testReportRepo struct{}

func (testReportRepo) CreateReport(ctx context.Context, db *gorm.DB, r *domain.Report) error {
	return repo.CreateReport(ctx, db, r)
}
func (testReportRepo) GetReport(ctx context.Context, db *gorm.DB, id string) (*domain.Report, error) {
	return repo.GetReport(ctx, db, id)
}
func (testReportRepo) CountReports(ctx context.Context, db *gorm.DB, key string) (int64, error) {
	return repo.CountReports(ctx, db, key)
}
func (testReportRepo) ListReportsPage(ctx context.Context, db *gorm.DB, key string, offset, limit int) ([]domain.Report, error) {
	return repo.ListReportsPage(ctx, db, key, offset, limit)
}
func (testReportRepo) ReportsStats(ctx context.Context, db *gorm.DB, key string) (int64, *time.Time, error) {
	return repo.ReportsStats(ctx, db, key)
}
func (testReportRepo) CountByKey(ctx context.Context, db *gorm.DB) ([]domain.KeyCount, error) {
	return repo.CountByKey(ctx, db)
}
func (testReportRepo) GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, scope, key, now)
}
func (testReportRepo) CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key, reportID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, scope, key, reportID, status, ttl)
}

// ---------- router under test ----------

type testEnv struct {
	r       *gin.Engine
	reports *services.ReportService
}

func mount(h *Handlers, r gin.IRouter) {
	r.GET("/errors", h.ListErrors)
	r.GET("/errors/codes/:code", h.GetErrorByCode)
	r.GET("/errors/:key", h.GetError)
	r.GET("/errors/:key/as/:kind", h.PreviewError)
	r.POST("/reports", h.CreateReport)
	r.GET("/reports", h.ListReports)
	r.GET("/reports/stats", h.ReportStats)
	r.GET("/reports/:id", h.GetReport)
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := errcat.Default()
	reports := services.NewReportService(newHandlerDB(t), testReportRepo{}, cat)
	h := New(services.NewCatalogService(cat, 3), reports)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, reports.Seen))
	mount(h, r)
	return &testEnv{r: r, reports: reports}
}

func (e *testEnv) do(method, path string, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json %q: %v", w.Body.String(), err)
	}
	return out
}

// ---------- catalog ----------

func TestListErrors_AllAndETag(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/errors", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	resp := decodeJSON[ListErrorsResponse](t, w)
	if len(resp.Errors) != 8 || resp.Hits != nil || resp.Fingerprint == "" {
		t.Fatalf("unexpected listing: %+v", resp)
	}
	if resp.Errors[0].Key != errcat.UserExists || resp.Errors[0].Code != 1000 || resp.Errors[7].Code != 9000 {
		t.Fatalf("not sorted by code: %+v", resp.Errors)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	w = e.do(http.MethodGet, "/errors", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
	w = e.do(http.MethodGet, "/errors", "", map[string]string{"If-None-Match": `W/"stale"`})
	if w.Code != http.StatusOK {
		t.Fatalf("stale ETag should get 200, got %d", w.Code)
	}
}

func TestListErrors_Search(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/errors?q=session+expired", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	resp := decodeJSON[ListErrorsResponse](t, w)
	if resp.Query != "session expired" || len(resp.Hits) == 0 || resp.Errors != nil {
		t.Fatalf("unexpected search: %+v", resp)
	}
	if top := resp.Hits[0]; top.Key != errcat.SessionExpired || top.Code != 1103 || top.Score <= 0 {
		t.Fatalf("unexpected top hit: %+v", top)
	}

	// Different queries get different validators.
	other := e.do(http.MethodGet, "/errors?q=csrf", "", nil)
	if other.Header().Get("ETag") == w.Header().Get("ETag") {
		t.Fatalf("ETag should depend on the query")
	}
}

func TestGetError(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/errors/csrftokenmismatch", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	rec := decodeJSON[errcat.Record](t, w)
	if rec.Key != errcat.CsrfTokenMismatch || rec.Code != 1102 || rec.Message != "Invalid CSRF Token" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	w = e.do(http.MethodGet, "/errors/paymentDeclined", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("unknown key should be 500, got %d", w.Code)
	}
	got := decodeError(t, w)
	if got.Code != 9000 || got.Key != "errorWhileError" || got.Message != "Error occurred while reporting error" || got.RequestID == "" {
		t.Fatalf("expected meta-error, got %+v", got)
	}
}

func TestGetErrorByCode(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/errors/codes/1101", "", nil)
	if rec := decodeJSON[errcat.Record](t, w); w.Code != http.StatusOK || rec.Key != errcat.Forbidden {
		t.Fatalf("by code: %d %+v", w.Code, rec)
	}

	w = e.do(http.MethodGet, "/errors/codes/abc", "", nil)
	if got := decodeError(t, w); w.Code != http.StatusBadRequest || got.Code != 1100 || got.Detail == "" {
		t.Fatalf("non-numeric: %d %+v", w.Code, got)
	}

	w = e.do(http.MethodGet, "/errors/codes/4242", "", nil)
	if got := decodeError(t, w); w.Code != http.StatusNotFound || got.Key != KeyNotFound || got.Code != 0 {
		t.Fatalf("unregistered: %d %+v", w.Code, got)
	}
}

func TestPreviewError(t *testing.T) {
	e := newEnv(t)

	cases := []struct {
		path   string
		status int
		code   int
		kind   string
	}{
		{"/errors/validationFailed/as/bad_request", http.StatusBadRequest, 1100, "bad_request"},
		{"/errors/userNotFound/as/not_found", http.StatusNotFound, 1001, "not_found"},
		{"/errors/sessionExpired/as/unauthorized", http.StatusUnauthorized, 1103, "unauthorized"},
		{"/errors/userExists/as/internal_server", http.StatusInternalServerError, 1000, "internal_server"},
		{"/errors/nope/as/not_found", http.StatusInternalServerError, 9000, "internal_server"},
		{"/errors/userExists/as/teapot", http.StatusInternalServerError, 9000, "internal_server"},
	}
	for _, tc := range cases {
		w := e.do(http.MethodGet, tc.path, "", nil)
		got := decodeError(t, w)
		if w.Code != tc.status || got.Code != tc.code || got.Kind != tc.kind {
			t.Fatalf("%s: %d %+v", tc.path, w.Code, got)
		}
		if w.Header().Get(PreviewHeader) != "true" {
			t.Fatalf("%s: missing preview header", tc.path)
		}
	}
}

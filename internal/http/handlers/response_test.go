package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-error-catalog/internal/errcat"
)

func withScopedLogger(buf *bytes.Buffer) gin.HandlerFunc {
	logger := zerolog.New(buf)
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-1")
		c.Set("logger", &logger)
		c.Next()
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestStatusFor(t *testing.T) {
	cases := map[errcat.Kind]int{
		errcat.KindBadRequest:     http.StatusBadRequest,
		errcat.KindNotFound:       http.StatusNotFound,
		errcat.KindInternalServer: http.StatusInternalServerError,
		errcat.KindUnauthorized:   http.StatusUnauthorized,
		errcat.Kind(0):            http.StatusInternalServerError,
		errcat.Kind(200):          http.StatusInternalServerError,
	}
	for k, want := range cases {
		if got := StatusFor(k); got != want {
			t.Fatalf("StatusFor(%v) = %d; want %d", k, got, want)
		}
	}
	// Every kind round-trips through its status.
	for _, k := range errcat.Kinds() {
		if got := kindForStatus(StatusFor(k)); got != k.String() {
			t.Fatalf("kindForStatus(StatusFor(%v)) = %q", k, got)
		}
	}
	if kindForStatus(http.StatusTooManyRequests) != "" {
		t.Fatalf("429 has no kind")
	}
}

func Test_failWith_CatalogEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(withScopedLogger(&buf))
	r.GET("/nf", func(c *gin.Context) { failWith(c, errcat.AsNotFound(errcat.UserNotFound)) })
	r.GET("/meta", func(c *gin.Context) { failDetail(c, errcat.Meta(), "journal down") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nf", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	want := ErrorResponse{RequestID: "rid-1", Code: 1001, Key: "userNotFound", Kind: "not_found", Message: "User not found"}
	if got := decodeError(t, w); got != want {
		t.Fatalf("body = %+v; want %+v", got, want)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx must not be logged: %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/meta", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	got := decodeError(t, w)
	if got.Code != 9000 || got.Key != "errorWhileError" || got.Kind != "internal_server" || got.Detail != "journal down" {
		t.Fatalf("meta body = %+v", got)
	}
	logs := buf.String()
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"code":9000`) {
		t.Fatalf("expected error log with code, got: %s", logs)
	}
}

func Test_Fail_TransportEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(withScopedLogger(&buf))
	r.GET("/404", func(c *gin.Context) { Fail(c, http.StatusNotFound, KeyNotFound, "resource not found") })
	r.GET("/405", func(c *gin.Context) { Fail(c, http.StatusMethodNotAllowed, KeyMethodNotAllowed, "method not allowed") })
	r.GET("/500", func(c *gin.Context) { fail(c, http.StatusInternalServerError, KeyInternal, "kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/404", nil))
	if got := decodeError(t, w); got.Code != 0 || got.Key != "not_found" || got.Kind != "not_found" {
		t.Fatalf("404 body = %+v", got)
	}
	if strings.Contains(w.Body.String(), `"code"`) {
		t.Fatalf("transport errors must omit code: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/405", nil))
	if got := decodeError(t, w); got.Key != "method_not_allowed" || got.Kind != "" {
		t.Fatalf("405 body = %+v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/500", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(buf.String(), `"api error"`) {
		t.Fatalf("expected logged 500, got %d: %s", w.Code, buf.String())
	}
}

func Test_notModified(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if notModified(c, `W/"v1"`) {
			return
		}
		c.String(http.StatusOK, "fresh")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK || w.Header().Get("ETag") != `W/"v1"` {
		t.Fatalf("first: %d %q", w.Code, w.Header().Get("ETag"))
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("If-None-Match", `W/"v1"`)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified || w.Body.Len() != 0 {
		t.Fatalf("conditional: %d %q", w.Code, w.Body.String())
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRequestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})
	return engine
}

func TestRequestIDMinted(t *testing.T) {
	engine := newRequestIDRouter()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := rec.Header().Get("X-Request-Id")
	if id == "" {
		t.Fatal("expected a minted request ID header")
	}
	if rec.Body.String() != id {
		t.Fatalf("context ID %q does not match header %q", rec.Body.String(), id)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	engine := newRequestIDRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "client-supplied-id")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "client-supplied-id" {
		t.Fatalf("expected client ID echoed back, got %q", got)
	}
}

func TestRequestIDRejectsOversized(t *testing.T) {
	engine := newRequestIDRouter()

	long := strings.Repeat("x", maxInboundRequestIDLen+1)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", long)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-Id")
	if got == long || got == "" {
		t.Fatalf("oversized client ID should be replaced, got %q", got)
	}
}

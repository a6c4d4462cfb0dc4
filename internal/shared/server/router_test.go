package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/shared/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthEndpoints(t *testing.T) {
	engine := NewRouter(config.Config{Env: "dev"})

	for _, path := range []string{"/healthz", "/api/v1/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("health body = %s", rec.Body.String())
	}
}

func TestMetricsGatedByEnv(t *testing.T) {
	dev := NewRouter(config.Config{Env: "dev"})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	dev.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("dev metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "analysis_started_total") {
		t.Errorf("metrics body missing counters: %s", rec.Body.String())
	}

	prod := NewRouter(config.Config{Env: "production"})
	rec = httptest.NewRecorder()
	prod.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("production metrics status = %d, want 404", rec.Code)
	}
}

func TestAddr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8080", ":8080"},
		{":9000", ":9000"},
		{"", ":8080"},
		{"  7070 ", ":7070"},
	}
	for _, tt := range tests {
		if got := Addr(tt.in); got != tt.want {
			t.Errorf("Addr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

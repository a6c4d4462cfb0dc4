package reports

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/shared/server/middleware"
	"bloodreport-backend/internal/shared/storage/object/local"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	svc := NewService(NewMemoryRepo(), local.New(t.TempDir()), "local")
	engine := gin.New()
	api := engine.Group("/api/v1", middleware.Identity())
	NewHandler(svc).RegisterRoutes(api)
	return engine, svc
}

func multipartBody(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadReport(t *testing.T) {
	engine, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "cbc.txt", "Hemoglobin: 13.5 g/dL")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.ID == "" {
		t.Error("missing report id")
	}
	if report.MimeType != "text/plain" {
		t.Errorf("mimeType = %q", report.MimeType)
	}
	if report.FileName != "cbc.txt" {
		t.Errorf("fileName = %q", report.FileName)
	}
}

func TestUploadMissingFile(t *testing.T) {
	engine, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader("no multipart"))
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INPUT_ERROR") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	engine, _ := newTestRouter(t)

	// PNG magic bytes sniff as image/png.
	body, contentType := multipartBody(t, "scan.png", "\x89PNG\r\n\x1a\nnotareport")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "PDF and plain-text") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetReportScopedToCaller(t *testing.T) {
	engine, svc := newTestRouter(t)

	report, err := svc.Upload(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		"guest:owner", "cbc.txt", strings.NewReader("WBC: 9000"))
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+report.ID, nil)
	req.Header.Set("X-Guest-Id", "owner")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+report.ID, nil)
	req.Header.Set("X-Guest-Id", "intruder")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-caller get status = %d, want 404", rec.Code)
	}
}

func TestListReports(t *testing.T) {
	engine, svc := newTestRouter(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	for _, name := range []string{"a.txt", "b.txt"} {
		if _, err := svc.Upload(ctx, "guest:g2", name, strings.NewReader("Glucose: 90")); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("X-Guest-Id", "g2")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Reports []Report `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Reports) != 2 {
		t.Errorf("reports = %d, want 2", len(body.Reports))
	}
}

package analyses

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/reports"
	"bloodreport-backend/internal/shared/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, svc *Service, reportSvc *reports.Service) *gin.Engine {
	t.Helper()
	engine := gin.New()
	api := engine.Group("/api/v1", middleware.Identity())
	reports.NewHandler(reportSvc).RegisterRoutes(api)
	NewHandler(svc).RegisterRoutes(api)
	return engine
}

func uploadViaAPI(t *testing.T, engine *gin.Engine, guestID, fileName, body string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Guest-Id", guestID)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var report struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	return report.ID
}

func TestAnalyzeEndpointLifecycle(t *testing.T) {
	svc, reportSvc := newTestStack(t, &fixedClient{text: "all values look fine"}, 0)
	engine := newTestRouter(t, svc, reportSvc)

	reportID := uploadViaAPI(t, engine, "web-1", "report.txt", "Hemoglobin: 13.5 g/dL")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/"+reportID+"/analyze", nil)
	req.Header.Set("X-Guest-Id", "web-1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("analyze status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var queued Analysis
	if err := json.Unmarshal(rec.Body.Bytes(), &queued); err != nil {
		t.Fatal(err)
	}
	if queued.Status != StatusQueued {
		t.Errorf("status = %q, want queued", queued.Status)
	}

	svc.Wait()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+queued.ID, nil)
	req.Header.Set("X-Guest-Id", "web-1")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var done Analysis
	if err := json.Unmarshal(rec.Body.Bytes(), &done); err != nil {
		t.Fatal(err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("status = %q, failure = %+v", done.Status, done.Failure)
	}
	if done.Result == nil || done.Result.Summary != "all values look fine" {
		t.Errorf("result = %+v", done.Result)
	}
}

func TestAnalyzeEndpointUnknownReport(t *testing.T) {
	svc, reportSvc := newTestStack(t, &fixedClient{text: "x"}, 0)
	engine := newTestRouter(t, svc, reportSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/missing/analyze", nil)
	req.Header.Set("X-Guest-Id", "web-2")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(CodeInput)) {
		t.Errorf("body = %s, want %s code", rec.Body.String(), CodeInput)
	}
}

func TestAnalyzeEndpointQuota(t *testing.T) {
	svc, reportSvc := newTestStack(t, &fixedClient{text: "x"}, 1)
	engine := newTestRouter(t, svc, reportSvc)

	reportID := uploadViaAPI(t, engine, "web-3", "report.txt", "Glucose: 92 mg/dL")

	for i, wantStatus := range []int{http.StatusAccepted, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/"+reportID+"/analyze", nil)
		req.Header.Set("X-Guest-Id", "web-3")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != wantStatus {
			t.Fatalf("call %d status = %d, want %d (body %s)", i, rec.Code, wantStatus, rec.Body.String())
		}
	}
	svc.Wait()
}

func TestAnalyzeEndpointRequiresIdentity(t *testing.T) {
	svc, reportSvc := newTestStack(t, &fixedClient{text: "x"}, 0)
	engine := newTestRouter(t, svc, reportSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListAnalysesEmpty(t *testing.T) {
	svc, reportSvc := newTestStack(t, &fixedClient{text: "x"}, 0)
	engine := newTestRouter(t, svc, reportSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	req.Header.Set("X-Guest-Id", "web-4")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Analyses []Analysis `json:"analyses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Analyses == nil || len(body.Analyses) != 0 {
		t.Errorf("analyses = %v, want empty array", body.Analyses)
	}
}

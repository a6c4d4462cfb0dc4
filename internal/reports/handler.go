package reports

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/shared/metrics"
	"bloodreport-backend/internal/shared/server/middleware"
	"bloodreport-backend/internal/shared/server/respond"
)

// maxUploadBytes caps uploaded report files at 10 MB.
const maxUploadBytes = 10 << 20

// Handler exposes the report endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds a handler around the service.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the report routes on the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reports", h.upload)
	rg.GET("/reports", h.list)
	rg.GET("/reports/:id", h.get)
}

func (h *Handler) upload(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "INPUT_ERROR",
				"report file exceeds the 10 MB limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "INPUT_ERROR",
			"multipart field 'file' is required", nil)
		return
	}
	defer file.Close()

	report, err := h.svc.Upload(c.Request.Context(), callerID, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "INPUT_ERROR",
				"only PDF and plain-text reports are supported", nil)
		case errors.Is(err, ErrEmptyFile):
			respond.Error(c, http.StatusBadRequest, "INPUT_ERROR",
				"uploaded file is empty", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "STORAGE_ERROR",
				"failed to store report", nil)
		}
		return
	}

	c.Set("reportId", report.ID)
	metrics.IncReportUploaded()
	respond.Created(c, report)
}

func (h *Handler) get(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)
	id := c.Param("id")

	report, err := h.svc.Get(c.Request.Context(), callerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "INPUT_ERROR", "report not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "STORAGE_ERROR",
			"failed to load report", nil)
		return
	}

	c.Set("reportId", report.ID)
	respond.OK(c, report)
}

func (h *Handler) list(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	list, err := h.svc.List(c.Request.Context(), callerID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "STORAGE_ERROR",
			"failed to list reports", nil)
		return
	}
	if list == nil {
		list = []Report{}
	}
	respond.OK(c, gin.H{"reports": list})
}

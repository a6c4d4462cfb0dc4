package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/shared/server/middleware"
	"bloodreport-backend/internal/shared/server/respond"
	"bloodreport-backend/internal/usage"
)

// Handler exposes the analysis endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds a handler around the service.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the analysis routes on the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reports/:id/analyze", h.create)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)
	reportID := c.Param("id")
	c.Set("reportId", reportID)

	analysis, err := h.svc.Create(c.Request.Context(), callerID, reportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrReportNotFound):
			respond.Error(c, http.StatusNotFound, CodeInput, "report not found", nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached",
				"daily analysis limit reached", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, CodeStorage,
				"failed to create analysis", nil)
		}
		return
	}

	c.Set("analysisId", analysis.ID)
	respond.Accepted(c, analysis)
}

func (h *Handler) get(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)
	id := c.Param("id")

	analysis, err := h.svc.Get(c.Request.Context(), callerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, CodeInput, "analysis not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, CodeStorage,
			"failed to load analysis", nil)
		return
	}

	c.Set("analysisId", analysis.ID)
	respond.OK(c, analysis)
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
		respond.Error(c, http.StatusInternalServerError, CodeStorage,
			"failed to list analyses", nil)
		return
	}
	if list == nil {
		list = []Analysis{}
	}
	respond.OK(c, gin.H{"analyses": list})
}

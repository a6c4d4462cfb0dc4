package usage

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/shared/server/middleware"
	"bloodreport-backend/internal/shared/server/respond"
)

// Handler exposes the caller's current quota.
type Handler struct {
	svc *Service
}

// NewHandler builds a handler around the quota service.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the usage route on the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.current)
}

func (h *Handler) current(c *gin.Context) {
	callerID := middleware.CallerIDFromContext(c)
	quota, err := h.svc.Current(c.Request.Context(), callerID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "STORAGE_ERROR",
			"failed to load usage", nil)
		return
	}
	respond.OK(c, gin.H{
		"plan":      quota.Plan,
		"limit":     quota.Limit,
		"used":      quota.Used,
		"remaining": quota.Remaining(),
		"resetsAt":  quota.ResetsAt,
	})
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/shared/config"
	"bloodreport-backend/internal/shared/metrics"
	"bloodreport-backend/internal/shared/server/middleware"
)

// Registrar registers a feature's routes on the API group.
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// NewRouter builds the gin engine with the shared middleware chain and
// mounts every registrar under /api/v1.
func NewRouter(cfg config.Config, registrars ...Registrar) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Logging(),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// Health and metrics sit under the API prefix but outside the
	// identity-guarded group so infrastructure checks need no guest header.
	engine.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	if cfg.Env != "production" {
		engine.GET("/api/v1/metrics", metrics.Handler())
	}

	api := engine.Group("/api/v1",
		middleware.Identity(),
		middleware.RateLimit(apiRateLimits()),
	)
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}

	return engine
}

// apiRateLimits keeps one caller from saturating uploads or analyses
// while leaving polling reads effectively unthrottled.
func apiRateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"UPLOAD":  {Rate: 0.5, Burst: 5},
			"ANALYZE": {Rate: 0.2, Burst: 3},
			"READ":    {Rate: 10, Burst: 30},
		},
		DefaultGroup: "READ",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method != http.MethodPost {
				return "READ"
			}
			if strings.HasSuffix(c.FullPath(), "/analyze") {
				return "ANALYZE"
			}
			return "UPLOAD"
		},
	}
}

// Addr normalizes a port value into a listen address.
func Addr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

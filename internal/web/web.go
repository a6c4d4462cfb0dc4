// Package web serves the embedded single-page frontend.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFiles embed.FS

// Register mounts the frontend on the engine root. API routes are
// registered separately and take precedence.
func Register(engine *gin.Engine) error {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}

	// Serving the file by its "index.html" name would trip net/http's
	// index redirect and loop 301s on "/", so the page is written from
	// the embedded bytes directly.
	index, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		return err
	}
	engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	engine.StaticFS("/static", http.FS(sub))
	return nil
}

package api

import (
	"github.com/Ruscigno/StockPulse/pkg/layout"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the page router: the dashboard, its static assets and
// the page description.
func SetupRouter(page *layout.Renderer, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	h := NewHandler(page)

	r.GET("/", h.Index)
	r.HEAD("/", h.Index)
	r.GET("/api/layout", h.Page)
	r.StaticFS("/static", layout.Static())
	r.NoRoute(h.NotFound)
	r.NoMethod(h.MethodNotAllowed)

	return r
}

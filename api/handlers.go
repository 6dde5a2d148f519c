package api

import (
	"net/http"

	apperrors "github.com/Ruscigno/StockPulse/pkg/errors"
	"github.com/Ruscigno/StockPulse/pkg/layout"
	"github.com/Ruscigno/StockPulse/pkg/middleware"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	page *layout.Renderer
}

func NewHandler(page *layout.Renderer) *Handler {
	return &Handler{page: page}
}

// Index serves the dashboard page.
func (h *Handler) Index(c *gin.Context) {
	h.page.ServeHTTP(c.Writer, c.Request)
}

// NotFound answers unknown routes with the standard JSON error body.
func (h *Handler) NotFound(c *gin.Context) {
	middleware.WriteError(c.Writer, c.Request,
		apperrors.NewAppError(apperrors.ErrCodeNotFound, "Route not found").WithDetails(c.Request.URL.Path))
}

// MethodNotAllowed answers known routes hit with the wrong verb.
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	middleware.WriteError(c.Writer, c.Request,
		apperrors.NewAppError(apperrors.ErrCodeMethodNotAllowed, "Method not allowed").
			WithDetails(c.Request.Method+" "+c.Request.URL.Path))
}

// Page returns the page description as JSON, for clients that build their own UI.
func (h *Handler) Page(c *gin.Context) {
	c.JSON(http.StatusOK, h.page.Page())
}

package tasks

import (
	"github.com/labstack/echo/v4"

	"github.com/nara997/taskman/internal/auth"
)

// RegisterRoutes sets up all task routes on the given Echo instance. The
// whole group sits behind the auth middleware: there is no such thing as an
// anonymous task request.
func RegisterRoutes(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
	g := e.Group("/tasks", auth.RequireAuth(tokens))

	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Delete)
}

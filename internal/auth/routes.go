package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all auth routes on the given Echo instance.
// Signup, login and logout are public; /auth/me requires a valid session.
// The RequireAuth middleware is exported separately for other packages to
// apply to their own route groups.
func RegisterRoutes(e *echo.Echo, h *Handler, tokens *Tokens) {
	g := e.Group("/auth")

	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me, RequireAuth(tokens))
}

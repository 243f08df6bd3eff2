package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nara997/taskman/internal/auth"
	"github.com/nara997/taskman/internal/tasks"
)

// RegisterRoutes wires up repositories, services, and handlers, then
// registers every route. This is the single place where the dependency
// graph is assembled: the signing secret flows from config into the token
// issuer/verifier exactly once.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for Docker/orchestrator health monitoring.
	// Pings the database so a wedged pool reports unhealthy.
	e.GET("/healthz", func(c echo.Context) error {
		if err := a.DB.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable,
				map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Auth ---
	tokens := auth.NewTokens(a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL)
	userRepo := auth.NewUserRepository(a.DB)
	authSvc := auth.NewAuthService(userRepo)
	authHandler := auth.NewHandler(authSvc, tokens, a.Config.IsProduction())
	auth.RegisterRoutes(e, authHandler, tokens)

	// --- Tasks ---
	taskRepo := tasks.NewRepository(a.DB)
	taskSvc := tasks.NewService(taskRepo)
	taskHandler := tasks.NewHandler(taskSvc)
	tasks.RegisterRoutes(e, taskHandler, tokens)
}

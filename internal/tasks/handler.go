package tasks

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nara997/taskman/internal/apperror"
	"github.com/nara997/taskman/internal/auth"
)

// Handler handles HTTP requests for task operations. Handlers are thin:
// bind request, resolve the authenticated owner, call the service, render
// the response. No business logic lives here.
type Handler struct {
	service Service
}

// NewHandler creates a new task handler backed by the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List returns all of the current user's tasks (GET /tasks).
func (h *Handler) List(c echo.Context) error {
	ownerID := auth.GetUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthenticated("authentication required")
	}

	tasks, err := h.service.List(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get returns a single task (GET /tasks/:id).
func (h *Handler) Get(c echo.Context) error {
	ownerID := auth.GetUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthenticated("authentication required")
	}

	task, err := h.service.Get(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Create adds a new task (POST /tasks).
func (h *Handler) Create(c echo.Context) error {
	ownerID := auth.GetUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthenticated("authentication required")
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid JSON body")
	}

	task, err := h.service.Create(c.Request().Context(), ownerID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// Update applies a partial update to a task (PUT /tasks/:id).
func (h *Handler) Update(c echo.Context) error {
	ownerID := auth.GetUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthenticated("authentication required")
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid JSON body")
	}

	task, err := h.service.Update(c.Request().Context(), ownerID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateStatus sets a task's completed flag (PATCH /tasks/:id/status).
func (h *Handler) UpdateStatus(c echo.Context) error {
	ownerID := auth.GetUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthenticated("authentication required")
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("invalid JSON body")
	}

	task, err := h.service.UpdateStatus(c.Request().Context(), ownerID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete removes a task (DELETE /tasks/:id).
func (h *Handler) Delete(c echo.Context) error {
	ownerID := auth.GetUserID(c)
	if ownerID == "" {
		return apperror.NewUnauthenticated("authentication required")
	}

	if err := h.service.Delete(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

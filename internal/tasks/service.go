package tasks

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nara997/taskman/internal/apperror"
)

// titleMaxLen bounds the task title; matches the VARCHAR(200) column.
const titleMaxLen = 200

// Service defines the business logic contract for tasks. Every method takes
// the authenticated owner's ID as its first domain argument; handlers pull
// it from the session claims, never from the request body.
type Service interface {
	List(ctx context.Context, ownerID string) ([]Task, error)
	Get(ctx context.Context, ownerID, id string) (*Task, error)
	Create(ctx context.Context, ownerID string, req CreateTaskRequest) (*Task, error)
	Update(ctx context.Context, ownerID, id string, req UpdateTaskRequest) (*Task, error)
	UpdateStatus(ctx context.Context, ownerID, id string, req UpdateStatusRequest) (*Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// taskService implements Service.
type taskService struct {
	repo Repository
}

// NewService creates a new task service backed by the given repository.
func NewService(repo Repository) Service {
	return &taskService{repo: repo}
}

// List returns the owner's tasks, newest first. Callers always get a
// non-nil slice so the JSON response is [] rather than null.
func (s *taskService) List(ctx context.Context, ownerID string) ([]Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// Get returns one of the owner's tasks, or NotFound.
func (s *taskService) Get(ctx context.Context, ownerID, id string) (*Task, error) {
	task, err := s.repo.FindByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return task, nil
}

// Create validates and persists a new task owned by ownerID. The owner is
// stamped here, from the session -- client input carries no owner field.
func (s *taskService) Create(ctx context.Context, ownerID string, req CreateTaskRequest) (*Task, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	task := &Task{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       title,
		Description: req.Description,
		Completed:   req.Completed,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, wrapStorageErr(err)
	}

	// Re-read to return database-assigned timestamps.
	created, err := s.repo.FindByOwnerAndID(ctx, ownerID, task.ID)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return created, nil
}

// Update applies a partial update to the owner's task. Only fields present
// in the request change; a present-but-empty title is rejected rather than
// blanking a required field.
func (s *taskService) Update(ctx context.Context, ownerID, id string, req UpdateTaskRequest) (*Task, error) {
	patch := Patch{
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if patch.IsEmpty() {
		return nil, apperror.NewValidation("no fields to update")
	}

	task, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return task, nil
}

// UpdateStatus sets the completed flag. The field must be present in the
// request and boolean; absent or null is a validation failure, not false.
func (s *taskService) UpdateStatus(ctx context.Context, ownerID, id string, req UpdateStatusRequest) (*Task, error) {
	if req.Completed == nil {
		return nil, apperror.NewValidation("completed must be true or false")
	}

	task, err := s.repo.SetCompleted(ctx, ownerID, id, *req.Completed)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return task, nil
}

// Delete removes the owner's task, or reports NotFound.
func (s *taskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return wrapStorageErr(err)
	}
	return nil
}

// validateTitle trims and bounds the title. Empty titles are rejected: a
// task with nothing to do isn't a task.
func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.NewValidation("title is required")
	}
	if len(title) > titleMaxLen {
		return "", apperror.NewValidation("title must be 200 characters or less")
	}
	return title, nil
}

// wrapStorageErr passes AppErrors through untouched and hides everything
// else behind a generic internal error.
func wrapStorageErr(err error) error {
	if _, ok := err.(*apperror.AppError); ok {
		return err
	}
	return apperror.NewInternal(err)
}

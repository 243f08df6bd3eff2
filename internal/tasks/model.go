// Package tasks implements taskman's task CRUD behind an ownership-scoped
// gateway: every read and every mutation is filtered by the authenticated
// user's ID at the SQL level, so a task is never visible or mutable outside
// its owner's requests. A task that exists but belongs to someone else is
// indistinguishable from one that doesn't exist.
package tasks

import "time"

// Task represents a single to-do item owned by exactly one user. UserID is
// set server-side at creation and never changes.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// CreateTaskRequest holds the data submitted to POST /tasks. There is
// deliberately no owner field: ownership always comes from the session.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest holds the data submitted to PUT /tasks/:id. Pointer
// fields distinguish "absent" from "zero value": only fields present in the
// request are applied.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// UpdateStatusRequest holds the data submitted to PATCH /tasks/:id/status.
// Completed is a pointer so a missing or null field is rejected instead of
// silently reading as false.
type UpdateStatusRequest struct {
	Completed *bool `json:"completed"`
}

// Patch is the set of field changes applied by a partial update. Nil fields
// are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

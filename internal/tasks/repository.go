package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nara997/taskman/internal/apperror"
)

// Repository defines the data access contract for task operations. Every
// method takes the owner's user ID and conjoins it with the row filter in a
// single statement -- there is no unscoped variant, so an ownership check
// can never be skipped or raced against the mutation it guards.
type Repository interface {
	// ListByOwner returns all of the owner's tasks, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Task, error)

	// FindByOwnerAndID returns the task only if it belongs to the owner.
	// Returns apperror.NotFound otherwise -- including when the task exists
	// under a different owner.
	FindByOwnerAndID(ctx context.Context, ownerID, id string) (*Task, error)

	// Create inserts a new task. The caller has already stamped UserID.
	Create(ctx context.Context, task *Task) error

	// Update applies the patch to the owner's task in one conditional
	// UPDATE. Zero affected rows means the task is gone or not theirs.
	Update(ctx context.Context, ownerID, id string, patch Patch) (*Task, error)

	// SetCompleted flips the completed flag with the same conditional shape.
	SetCompleted(ctx context.Context, ownerID, id string, completed bool) (*Task, error)

	// Delete removes the owner's task with a conditional DELETE.
	Delete(ctx context.Context, ownerID, id string) error
}

// taskRepository is the MariaDB implementation of Repository.
type taskRepository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed task repository.
func NewRepository(db *sql.DB) Repository {
	return &taskRepository{db: db}
}

// taskColumns is the SELECT column list for task queries.
const taskColumns = `id, user_id, title, description, completed, created_at, updated_at`

// ListByOwner returns the owner's tasks ordered newest-first. The id
// tiebreak keeps the order stable when two rows share a creation timestamp.
func (r *taskRepository) ListByOwner(ctx context.Context, ownerID string) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
	          WHERE user_id = ?
	          ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description,
			&t.Completed, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// FindByOwnerAndID retrieves one task, owner-scoped.
func (r *taskRepository) FindByOwnerAndID(ctx context.Context, ownerID, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`

	t := &Task{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description,
		&t.Completed, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// Create inserts a new task row. Timestamps are assigned by the database.
func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	query := `INSERT INTO tasks (id, user_id, title, description, completed)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Completed,
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

// Update builds a SET clause from the patch's present fields and applies it
// in a single statement conditioned on both id and owner. The ownership
// filter travels WITH the mutation, so a concurrent delete can't slip
// between a check and a write -- the row is either updated or it isn't,
// and zero affected rows reads as NotFound either way.
func (r *taskRepository) Update(ctx context.Context, ownerID, id string, patch Patch) (*Task, error) {
	var (
		set  []string
		args []any
	)
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Completed != nil {
		set = append(set, "completed = ?")
		args = append(args, *patch.Completed)
	}
	if len(set) == 0 {
		return nil, apperror.NewValidation("no fields to update")
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id, ownerID)

	query := `UPDATE tasks SET ` + strings.Join(set, ", ") + ` WHERE id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	// MySQL reports zero affected rows both for a missing row and for a
	// no-op change, so the owner-scoped re-read decides: it returns the
	// current row, or NotFound if the task is gone or not theirs.
	return r.FindByOwnerAndID(ctx, ownerID, id)
}

// SetCompleted updates the completed flag, owner-scoped and atomic.
func (r *taskRepository) SetCompleted(ctx context.Context, ownerID, id string, completed bool) (*Task, error) {
	query := `UPDATE tasks SET completed = ?, updated_at = CURRENT_TIMESTAMP
	          WHERE id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, completed, id, ownerID); err != nil {
		return nil, fmt.Errorf("updating task status: %w", err)
	}

	// RowsAffected is 0 both when the row is missing and when the flag
	// already had the requested value, so the follow-up read decides.
	return r.FindByOwnerAndID(ctx, ownerID, id)
}

// Delete removes the owner's task. Zero affected rows means the task never
// existed for this owner or a concurrent delete won the race; both read as
// NotFound.
func (r *taskRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return apperror.NewNotFound("task not found")
	}
	return nil
}

package model

import (
	"context"
	"time"
)

// TaskStore defines persistence operations for tasks. Every method that
// addresses a single task is scoped by owner; a task owned by someone else
// is reported as ErrNotFound.
type TaskStore interface {
	Create(ctx context.Context, task Task) (Task, error)
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	GetByID(ctx context.Context, ownerID, taskID int64) (Task, error)
	Update(ctx context.Context, ownerID, taskID int64, changes TaskChanges) error
	Toggle(ctx context.Context, ownerID, taskID int64) error
	Delete(ctx context.Context, ownerID, taskID int64) error
}

// TaskStatus enumerates task states.
type TaskStatus string

const (
	// TaskStatusPending is the initial state of a task.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusCompleted marks a finished task.
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskFilter selects a page of an owner's tasks.
type TaskFilter struct {
	OwnerID int64
	Status  string
	Search  string
	Limit   int
	Offset  int
}

// TaskChanges holds a coalesce update: unset fields keep their stored value.
type TaskChanges struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[TaskStatus]
}

// Empty reports whether no field is set.
func (c TaskChanges) Empty() bool {
	return !c.Title.IsSet() && !c.Description.IsSet() && !c.Status.IsSet()
}

// CreateTaskParams contains parameters to create a task.
type CreateTaskParams struct {
	OwnerID     int64
	Title       string
	Description string
}

// ListTasksParams contains raw paging and filtering input. Zero Page or
// Limit means "use the default".
type ListTasksParams struct {
	OwnerID int64
	Page    int
	Limit   int
	Status  string
	Search  string
}

// TaskPage is one page of tasks together with the effective paging values.
type TaskPage struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Tasks []Task `json:"tasks"`
}

// UpdateTaskParams contains parameters to update a task.
type UpdateTaskParams struct {
	OwnerID int64
	TaskID  int64
	Changes TaskChanges
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dtroode/taskboard-server/internal/model"
)

var _ model.TaskStore = (*TaskRepository)(nil)

const taskColumns = `id, user_id, title, description, status, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type TaskRepository struct {
	db Querier
}

func NewTaskRepository(db Querier) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	query := `INSERT INTO tasks (user_id, title, description, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + taskColumns

	status := task.Status
	if status == "" {
		status = model.TaskStatusPending
	}

	saved, err := scanTask(r.db.QueryRowContext(ctx, query,
		task.OwnerID, task.Title, task.Description, string(status),
	))
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	return saved, nil
}

func (r *TaskRepository) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	var sb strings.Builder
	args := []any{filter.OwnerID}

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)

	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&sb, ` AND status = $%d`, len(args))
	}

	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		fmt.Fprintf(&sb, ` AND title ILIKE $%d`, len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&sb, ` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, filter.Limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, ownerID, taskID int64) (model.Task, error) {
	query := `SELECT ` + taskColumns + `
			  FROM tasks WHERE id = $1 AND user_id = $2`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task by id: %w", err)
	}

	return task, nil
}

// Update applies changes in a single statement. updated_at only moves when
// at least one field is set, so an empty update leaves the row untouched.
func (r *TaskRepository) Update(ctx context.Context, ownerID, taskID int64, changes model.TaskChanges) error {
	const query = `
		UPDATE tasks
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    status = COALESCE($3, status),
		    updated_at = CASE WHEN $4 THEN NOW() ELSE updated_at END
		WHERE id = $5 AND user_id = $6`

	var status *string
	if s, ok := changes.Status.Get(); ok {
		v := string(s)
		status = &v
	}

	res, err := r.db.ExecContext(ctx, query,
		changes.Title.Ptr(), changes.Description.Ptr(), status, !changes.Empty(),
		taskID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return requireAffected(res)
}

func (r *TaskRepository) Toggle(ctx context.Context, ownerID, taskID int64) error {
	const query = `
		UPDATE tasks
		SET status = CASE status
		                 WHEN 'pending' THEN 'completed'
		                 WHEN 'completed' THEN 'pending'
		                 ELSE status
		             END,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to toggle task: %w", err)
	}

	return requireAffected(res)
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description,
		&task.Status, &task.CreatedAt, &task.UpdatedAt,
	)
	return task, err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

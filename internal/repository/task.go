package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taskhive/taskhive/internal/model"
)

// ErrTaskNotFound indicates the task does not exist or is owned by someone else.
var ErrTaskNotFound = errors.New("task not found")

// TaskFilter narrows a task listing. Nil fields are not applied.
// Filters are exact-match equality, not ranges.
type TaskFilter struct {
	Status  *string
	DueDate *time.Time
}

// CreateTask inserts a new task into the database.
func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, status, due_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.CreatedBy,
		task.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTaskByID retrieves a task scoped to its owner.
func (r *Repository) GetTaskByID(ctx context.Context, id, ownerID string) (*model.Task, error) {
	query := `
		SELECT id, title, description, status, due_date, created_by, created_at
		FROM tasks
		WHERE id = $1 AND created_by = $2
	`

	var task model.Task
	err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.CreatedBy,
		&task.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// ListTasks returns one page of the owner's tasks plus the total count of
// matches. Ordering is by primary key; IDs are ULIDs, so this is insertion
// order and stable across pages.
func (r *Repository) ListTasks(ctx context.Context, ownerID string, filter TaskFilter, offset, limit int) ([]*model.Task, int64, error) {
	where := "created_by = $1"
	args := []any{ownerID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.DueDate != nil {
		args = append(args, *filter.DueDate)
		where += fmt.Sprintf(" AND due_date = $%d", len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM tasks WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT id, title, description, status, due_date, created_by, created_at
		FROM tasks
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		var task model.Task
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.DueDate,
			&task.CreatedBy,
			&task.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTaskStatus sets a task's status, scoped to its owner.
func (r *Repository) UpdateTaskStatus(ctx context.Context, id, ownerID, status string) (*model.Task, error) {
	query := `
		UPDATE tasks
		SET status = $3
		WHERE id = $1 AND created_by = $2
		RETURNING id, title, description, status, due_date, created_by, created_at
	`

	var task model.Task
	err := r.pool.QueryRow(ctx, query, id, ownerID, status).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.CreatedBy,
		&task.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return &task, nil
}

// DeleteTask removes a task, scoped to its owner.
func (r *Repository) DeleteTask(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND created_by = $2`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskhive/taskhive/internal/metrics"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
)

// Task service errors.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrMissingTitle   = errors.New("title is required")
	ErrMissingDueDate = errors.New("due_date is required")
	ErrMissingStatus  = errors.New("status is required")
)

// Listing defaults and bounds.
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// TaskStore is the persistence surface the task service depends on.
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id, ownerID string) (*model.Task, error)
	ListTasks(ctx context.Context, ownerID string, filter repository.TaskFilter, offset, limit int) ([]*model.Task, int64, error)
	UpdateTaskStatus(ctx context.Context, id, ownerID, status string) (*model.Task, error)
	DeleteTask(ctx context.Context, id, ownerID string) error
}

// TaskService handles task business logic scoped to an owner.
type TaskService struct {
	store   TaskStore
	metrics metrics.Recorder
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore, recorder metrics.Recorder) *TaskService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TaskService{
		store:   store,
		metrics: recorder,
	}
}

// CreateTaskInput defines input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	DueDate     time.Time
	OwnerID     string
}

// CreateTask creates a new task owned by the given user.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}
	if input.DueDate.IsZero() {
		return nil, ErrMissingDueDate
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = model.TaskStatusPending
	}

	task := &model.Task{
		ID:          ulid.Make().String(),
		Title:       title,
		Description: input.Description,
		Status:      status,
		DueDate:     input.DueDate.UTC(),
		CreatedBy:   input.OwnerID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.IncTaskCreated()

	return task, nil
}

// ListTasksInput defines input for listing tasks.
type ListTasksInput struct {
	OwnerID string
	Status  *string
	DueDate *time.Time
	Page    int
	Limit   int
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks []*model.Task
	Page  int
	Limit int
	Total int64
}

// ListTasks returns one page of the owner's tasks.
// Absent filters mean all of the owner's tasks are eligible.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) (*TaskPage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := repository.TaskFilter{
		Status:  input.Status,
		DueDate: input.DueDate,
	}

	tasks, total, err := s.store.ListTasks(ctx, input.OwnerID, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskPage{
		Tasks: tasks,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

// GetTask retrieves one of the owner's tasks.
func (s *TaskService) GetTask(ctx context.Context, id, ownerID string) (*model.Task, error) {
	task, err := s.store.GetTaskByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// UpdateTaskStatus sets the status of one of the owner's tasks.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id, ownerID, status string) (*model.Task, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, ErrMissingStatus
	}

	task, err := s.store.UpdateTaskStatus(ctx, id, ownerID, status)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.metrics.IncTaskUpdated()

	return task, nil
}

// DeleteTask removes one of the owner's tasks.
func (s *TaskService) DeleteTask(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteTask(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.metrics.IncTaskDeleted()

	return nil
}

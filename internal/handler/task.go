package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/handler/dto"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/service"
)

// TaskHandler serves the task CRUD endpoints. Every route requires an
// authenticated identity in the request context.
type TaskHandler struct {
	logger *slog.Logger
	tasks  *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(logger *slog.Logger, tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{
		logger: logger,
		tasks:  tasks,
	}
}

// Create creates a task owned by the caller.
// POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "Body must be valid JSON")
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		parsed, err := parseDueDate(req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due_date", "Use RFC 3339 or YYYY-MM-DD")
			return
		}
		dueDate = parsed
	}

	task, err := h.tasks.CreateTask(r.Context(), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     dueDate,
		OwnerID:     userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingTitle):
			writeError(w, http.StatusBadRequest, "title is required", "")
		case errors.Is(err, service.ErrMissingDueDate):
			writeError(w, http.StatusBadRequest, "due_date is required", "")
		default:
			h.logger.Error("failed to create task",
				slog.String("error", err.Error()),
				slog.String("user_id", userID),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusInternalServerError, "internal server error", "")
		}
		return
	}

	writeJSON(w, http.StatusCreated, taskToResponse(task))
}

// List returns one page of the caller's tasks.
// GET /tasks?page=&limit=&status=&due_date=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	q := r.URL.Query()

	input := service.ListTasksInput{OwnerID: userID}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "invalid page", "page must be a positive integer")
			return
		}
		input.Page = page
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit", "limit must be a positive integer")
			return
		}
		input.Limit = limit
	}

	if v := q.Get("status"); v != "" {
		input.Status = &v
	}

	if v := q.Get("due_date"); v != "" {
		dueDate, err := parseDueDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due_date", "Use RFC 3339 or YYYY-MM-DD")
			return
		}
		input.DueDate = &dueDate
	}

	page, err := h.tasks.ListTasks(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	resp := dto.TaskListResponse{
		Tasks: make([]dto.TaskResponse, 0, len(page.Tasks)),
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
	}
	for _, task := range page.Tasks {
		resp.Tasks = append(resp.Tasks, taskToResponse(task))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single task owned by the caller.
// GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	taskID := chi.URLParam(r, "id")

	task, err := h.tasks.GetTask(r.Context(), taskID, userID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found", "")
			return
		}
		h.logger.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// UpdateStatus sets the status of a task owned by the caller.
// PATCH /tasks/{id}
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	taskID := chi.URLParam(r, "id")

	var req dto.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "Body must be valid JSON")
		return
	}

	task, err := h.tasks.UpdateTaskStatus(r.Context(), taskID, userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, "task not found", "")
		case errors.Is(err, service.ErrMissingStatus):
			writeError(w, http.StatusBadRequest, "status is required", "")
		default:
			h.logger.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusInternalServerError, "internal server error", "")
		}
		return
	}

	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// Delete removes a task owned by the caller.
// DELETE /tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	taskID := chi.URLParam(r, "id")

	if err := h.tasks.DeleteTask(r.Context(), taskID, userID); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found", "")
			return
		}
		h.logger.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseDueDate accepts RFC 3339 timestamps or bare dates.
func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func taskToResponse(task *model.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
	}
}

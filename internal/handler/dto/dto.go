// Package dto defines request and response shapes for the HTTP API.
package dto

import "time"

// ErrorResponse is the flat error shape used by every failing endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RegisterRequest is the request body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is the response body for a successful registration.
type RegisterResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest is the request body for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// CreateTaskRequest is the request body for POST /tasks.
// DueDate accepts RFC 3339 timestamps or bare dates (2006-01-02).
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
}

// UpdateTaskStatusRequest is the request body for PATCH /tasks/{id}.
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// TaskResponse is the JSON shape of a single task.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"due_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskListResponse is one page of a task listing.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int64          `json:"total"`
}

package model

import "time"

// TaskStatusPending is the status assigned to newly created tasks.
const TaskStatusPending = "pending"

// Task represents a task owned by exactly one user via CreatedBy.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"due_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

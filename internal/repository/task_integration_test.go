//go:build integration

package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/taskhive/taskhive/internal/testutil"
)

func TestRepository_TaskCRUD(t *testing.T) {
	repo, ctx := setupRepo(t)

	owner := testutil.NewTestUser(t, testutil.UniqueUsername("owner"))
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	task := testutil.NewTestTask(t, owner.ID, "write report")
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := repo.GetTaskByID(ctx, task.ID, owner.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != task.Title {
		t.Errorf("title = %q, want %q", got.Title, task.Title)
	}
	if !got.DueDate.Equal(task.DueDate) {
		t.Errorf("due date = %v, want %v", got.DueDate, task.DueDate)
	}

	updated, err := repo.UpdateTaskStatus(ctx, task.ID, owner.ID, "done")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != "done" {
		t.Errorf("status = %q, want done", updated.Status)
	}

	if err := repo.DeleteTask(ctx, task.ID, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTaskByID(ctx, task.ID, owner.ID); err != ErrTaskNotFound {
		t.Errorf("get after delete error = %v, want ErrTaskNotFound", err)
	}
	if err := repo.DeleteTask(ctx, task.ID, owner.ID); err != ErrTaskNotFound {
		t.Errorf("second delete error = %v, want ErrTaskNotFound", err)
	}
}

func TestRepository_TaskOwnerScoping(t *testing.T) {
	repo, ctx := setupRepo(t)

	owner := testutil.NewTestUser(t, testutil.UniqueUsername("owner"))
	other := testutil.NewTestUser(t, testutil.UniqueUsername("other"))
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	task := testutil.NewTestTask(t, owner.ID, "private task")
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := repo.GetTaskByID(ctx, task.ID, other.ID); err != ErrTaskNotFound {
		t.Errorf("cross-owner get error = %v, want ErrTaskNotFound", err)
	}
	if _, err := repo.UpdateTaskStatus(ctx, task.ID, other.ID, "done"); err != ErrTaskNotFound {
		t.Errorf("cross-owner update error = %v, want ErrTaskNotFound", err)
	}
	if err := repo.DeleteTask(ctx, task.ID, other.ID); err != ErrTaskNotFound {
		t.Errorf("cross-owner delete error = %v, want ErrTaskNotFound", err)
	}
}

func TestRepository_ListTasksFiltersAndPaging(t *testing.T) {
	repo, ctx := setupRepo(t)

	owner := testutil.NewTestUser(t, testutil.UniqueUsername("owner"))
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	dueA := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	dueB := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		status string
		due    time.Time
	}{
		{"pending", dueA},
		{"done", dueA},
		{"pending", dueB},
		{"pending", dueA},
		{"done", dueB},
	}
	for i, tc := range cases {
		task := testutil.NewTestTask(t, owner.ID, fmt.Sprintf("task %d", i))
		task.Status = tc.status
		task.DueDate = tc.due
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task %d: %v", i, err)
		}
	}

	// No filter returns everything
	tasks, total, err := repo.ListTasks(ctx, owner.ID, TaskFilter{}, 0, 100)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 5 || len(tasks) != 5 {
		t.Errorf("all: total = %d, len = %d, want 5/5", total, len(tasks))
	}

	// Status filter
	status := "pending"
	tasks, total, err = repo.ListTasks(ctx, owner.ID, TaskFilter{Status: &status}, 0, 100)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if total != 3 {
		t.Errorf("pending total = %d, want 3", total)
	}
	for _, task := range tasks {
		if task.Status != "pending" {
			t.Errorf("pending listing contains %q", task.Status)
		}
	}

	// Combined status and due date filter
	tasks, total, err = repo.ListTasks(ctx, owner.ID, TaskFilter{Status: &status, DueDate: &dueA}, 0, 100)
	if err != nil {
		t.Fatalf("list combined: %v", err)
	}
	if total != 2 {
		t.Errorf("combined total = %d, want 2", total)
	}

	// Paging one at a time covers the full set without overlap
	seen := make(map[string]bool)
	for offset := 0; offset < 5; offset++ {
		tasks, total, err = repo.ListTasks(ctx, owner.ID, TaskFilter{}, offset, 1)
		if err != nil {
			t.Fatalf("page offset %d: %v", offset, err)
		}
		if total != 5 {
			t.Errorf("page total = %d, want 5", total)
		}
		if len(tasks) != 1 {
			t.Fatalf("page offset %d: len = %d, want 1", offset, len(tasks))
		}
		if seen[tasks[0].ID] {
			t.Errorf("task %s returned twice", tasks[0].ID)
		}
		seen[tasks[0].ID] = true
	}
	if len(seen) != 5 {
		t.Errorf("paged through %d distinct tasks, want 5", len(seen))
	}

	// Offset past the end is empty, not an error
	tasks, _, err = repo.ListTasks(ctx, owner.ID, TaskFilter{}, 100, 1)
	if err != nil {
		t.Fatalf("past-end page: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("past-end page len = %d, want 0", len(tasks))
	}
}

package tools

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/db"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/task"
)

// UpdateInput contains parameters for the Update operation. At least one
// field must be set.
type UpdateInput struct {
	UserID   string
	TaskID   string  // required
	Content  *string // optional
	DueDate  *string // optional
	Priority *string // optional
	Status   *string // optional: pending|completed
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	TaskID        string   `json:"task_id"`
	Content       string   `json:"content"`
	UpdatedFields []string `json:"updated_fields"`
	UpdatedAt     int64    `json:"updated_at"`
}

// Update modifies fields of an existing task.
func Update(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateInput) (*UpdateOutput, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidInput("user_id is required")
	}
	taskID := strings.TrimSpace(input.TaskID)
	if taskID == "" {
		return nil, errors.NewInvalidInput("task_id is required")
	}

	t, err := db.GetTaskByIDAndUser(ctx, database, taskID, input.UserID)
	if err != nil {
		return nil, err
	}

	var updated []string

	if c := cleanOptionalString(input.Content); c != nil {
		if max := cfg.TaskMaxChars; max > 0 && task.CountChars(*c) > max {
			return nil, errors.NewInvalidInput("content exceeds maximum length")
		}
		t.Content = *c
		t.ContentNorm = task.Normalize(*c)
		updated = append(updated, "content")
	}

	if d := cleanOptionalString(input.DueDate); d != nil {
		t.DueDate = d
		updated = append(updated, "due_date")
	}

	if p := cleanOptionalString(input.Priority); p != nil {
		priority := task.Priority(strings.ToLower(*p))
		if !task.ValidPriority(priority) {
			return nil, errors.NewInvalidInput("priority must be one of: low, medium, high")
		}
		t.Priority = priority
		updated = append(updated, "priority")
	}

	if s := cleanOptionalString(input.Status); s != nil {
		status := task.Status(strings.ToLower(*s))
		if !task.ValidStatus(status) {
			return nil, errors.NewInvalidInput("status must be one of: pending, completed")
		}
		if status == task.StatusCompleted && t.CompletedAt == nil {
			now := time.Now().Unix()
			t.CompletedAt = &now
		}
		if status == task.StatusPending {
			t.CompletedAt = nil
		}
		t.Status = status
		updated = append(updated, "status")
	}

	if len(updated) == 0 {
		return nil, errors.NewInvalidInput("nothing to update: provide content, due_date, priority, or status")
	}

	t.UpdatedAt = time.Now().Unix()

	if err := db.UpdateTask(ctx, database, t); err != nil {
		return nil, err
	}

	return &UpdateOutput{
		TaskID:        t.ID,
		Content:       t.Content,
		UpdatedFields: updated,
		UpdatedAt:     t.UpdatedAt,
	}, nil
}

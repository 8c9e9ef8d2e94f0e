package tools

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/db"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/task"
)

// CompleteInput contains parameters for the Complete operation.
type CompleteInput struct {
	UserID string
	TaskID string // required
}

// CompleteOutput contains the result of the Complete operation.
type CompleteOutput struct {
	TaskID      string `json:"task_id"`
	Content     string `json:"content"`
	CompletedAt int64  `json:"completed_at"`

	// AlreadyCompleted is set when the task was completed before this call;
	// the operation is idempotent and CompletedAt keeps its original value.
	AlreadyCompleted bool `json:"already_completed,omitempty"`
}

// Complete marks a task as completed.
func Complete(ctx context.Context, database *sql.DB, input CompleteInput) (*CompleteOutput, error) {
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

	if t.Status == task.StatusCompleted && t.CompletedAt != nil {
		return &CompleteOutput{
			TaskID:           t.ID,
			Content:          t.Content,
			CompletedAt:      *t.CompletedAt,
			AlreadyCompleted: true,
		}, nil
	}

	now := time.Now().Unix()
	t.Status = task.StatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now

	if err := db.UpdateTask(ctx, database, t); err != nil {
		return nil, err
	}

	return &CompleteOutput{
		TaskID:      t.ID,
		Content:     t.Content,
		CompletedAt: now,
	}, nil
}

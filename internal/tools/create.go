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

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	UserID   string
	Content  string  // required
	DueDate  *string // optional
	Priority *string // optional, default: medium
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	TaskID    string `json:"task_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// Create stores a new task for the user.
func Create(ctx context.Context, database *sql.DB, cfg *config.Config, input CreateInput) (*CreateOutput, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidInput("user_id is required")
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.NewInvalidInput("content is required")
	}
	if max := cfg.TaskMaxChars; max > 0 && task.CountChars(content) > max {
		return nil, errors.NewInvalidInput("content exceeds maximum length")
	}

	priority := task.PriorityMedium
	if p := cleanOptionalString(input.Priority); p != nil {
		priority = task.Priority(strings.ToLower(*p))
		if !task.ValidPriority(priority) {
			return nil, errors.NewInvalidInput("priority must be one of: low, medium, high")
		}
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	t := &task.Task{
		ID:          id,
		UserID:      input.UserID,
		Content:     content,
		ContentNorm: task.Normalize(content),
		Status:      task.StatusPending,
		DueDate:     cleanOptionalString(input.DueDate),
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := db.InsertTask(ctx, database, t); err != nil {
		return nil, err
	}

	return &CreateOutput{
		TaskID:    id,
		Content:   content,
		CreatedAt: now,
	}, nil
}

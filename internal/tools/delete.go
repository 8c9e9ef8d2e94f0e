package tools

import (
	"context"
	"database/sql"
	"strings"

	"github.com/taskpilot/taskpilot/internal/db"
	"github.com/taskpilot/taskpilot/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	UserID string
	TaskID string // required
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	TaskID  string `json:"task_id"`
	Content string `json:"content"`
	Deleted bool   `json:"deleted"`
}

// Delete removes a task. The content of the removed task is echoed back so
// replies can name what was deleted without a second lookup.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
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

	if err := db.DeleteTask(ctx, database, taskID, input.UserID); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		TaskID:  t.ID,
		Content: t.Content,
		Deleted: true,
	}, nil
}

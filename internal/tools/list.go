package tools

import (
	"context"
	"database/sql"
	"strings"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/db"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/task"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	UserID    string
	Filter    string // all|pending|completed|overdue, default: all
	SortBy    string // created_at|due_date|priority, default: created_at
	SortOrder string // asc|desc, default: desc
	Limit     int    // default and cap come from config
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Tasks      []task.Summary `json:"tasks"`
	TotalCount int            `json:"total_count"`
}

// List retrieves the user's tasks with filtering, sorting, and a limit. A
// missing limit falls back to cfg.ListDefaultLimit; anything above
// cfg.ListMaxLimit is clamped rather than rejected.
func List(ctx context.Context, database *sql.DB, cfg *config.Config, input ListInput) (*ListOutput, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidInput("user_id is required")
	}

	filter := db.FilterAll
	if f := strings.TrimSpace(strings.ToLower(input.Filter)); f != "" {
		filter = db.TaskFilter(f)
		if !db.ValidTaskFilter(filter) {
			return nil, errors.NewInvalidInput("filter must be one of: all, pending, completed, overdue")
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = cfg.ListDefaultLimit
	}
	if limit > cfg.ListMaxLimit {
		limit = cfg.ListMaxLimit
	}

	tasks, total, err := db.ListTasksByUser(ctx, database, input.UserID, filter, input.SortBy, input.SortOrder, limit)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	summaries := make([]task.Summary, 0, len(tasks))
	for _, t := range tasks {
		summaries = append(summaries, t.ToSummary())
	}

	return &ListOutput{
		Tasks:      summaries,
		TotalCount: total,
	}, nil
}

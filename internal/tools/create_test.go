package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/db"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/task"
)

func TestCreate_Basic(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()

	out, err := Create(context.Background(), database, cfg, CreateInput{
		UserID:  "u1",
		Content: "buy milk",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if out.TaskID == "" {
		t.Error("TaskID is empty")
	}
	if out.Content != "buy milk" {
		t.Errorf("Content = %q, want %q", out.Content, "buy milk")
	}
	if out.CreatedAt == 0 {
		t.Error("CreatedAt is zero")
	}

	stored, err := db.GetTaskByIDAndUser(context.Background(), database, out.TaskID, "u1")
	if err != nil {
		t.Fatalf("GetTaskByIDAndUser failed: %v", err)
	}
	if stored.Status != task.StatusPending {
		t.Errorf("Status = %q, want %q", stored.Status, task.StatusPending)
	}
	if stored.Priority != task.PriorityMedium {
		t.Errorf("Priority = %q, want %q (default)", stored.Priority, task.PriorityMedium)
	}
	if stored.ContentNorm != "buy milk" {
		t.Errorf("ContentNorm = %q, want %q", stored.ContentNorm, "buy milk")
	}
}

func TestCreate_Optionals(t *testing.T) {
	database := testDB(t)

	out, err := Create(context.Background(), database, config.DefaultConfig(), CreateInput{
		UserID:   "u1",
		Content:  "file taxes",
		DueDate:  stringPtr("2026-04-15"),
		Priority: stringPtr("HIGH"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, err := db.GetTaskByIDAndUser(context.Background(), database, out.TaskID, "u1")
	if err != nil {
		t.Fatalf("GetTaskByIDAndUser failed: %v", err)
	}
	if stored.DueDate == nil || *stored.DueDate != "2026-04-15" {
		t.Errorf("DueDate = %v, want %q", stored.DueDate, "2026-04-15")
	}
	if stored.Priority != task.PriorityHigh {
		t.Errorf("Priority = %q, want %q (case-insensitive)", stored.Priority, task.PriorityHigh)
	}
}

func TestCreate_EmptyContent(t *testing.T) {
	database := testDB(t)

	_, err := Create(context.Background(), database, config.DefaultConfig(), CreateInput{
		UserID:  "u1",
		Content: "   ",
	})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Create should return ErrInvalidInput for blank content, got: %v", err)
	}
}

func TestCreate_MissingUser(t *testing.T) {
	database := testDB(t)

	_, err := Create(context.Background(), database, config.DefaultConfig(), CreateInput{
		Content: "buy milk",
	})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Create should return ErrInvalidInput for missing user, got: %v", err)
	}
}

func TestCreate_ContentTooLong(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()

	_, err := Create(context.Background(), database, cfg, CreateInput{
		UserID:  "u1",
		Content: strings.Repeat("x", cfg.TaskMaxChars+1),
	})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Create should return ErrInvalidInput for oversized content, got: %v", err)
	}
}

func TestCreate_InvalidPriority(t *testing.T) {
	database := testDB(t)

	_, err := Create(context.Background(), database, config.DefaultConfig(), CreateInput{
		UserID:   "u1",
		Content:  "buy milk",
		Priority: stringPtr("urgent"),
	})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Create should return ErrInvalidInput for bad priority, got: %v", err)
	}
}

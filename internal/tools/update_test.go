package tools

import (
	"context"
	"testing"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/db"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/task"
)

func TestUpdate_Content(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	out, err := Update(context.Background(), database, config.DefaultConfig(), UpdateInput{
		UserID:  "u1",
		TaskID:  created.TaskID,
		Content: stringPtr("buy oat milk"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(out.UpdatedFields) != 1 || out.UpdatedFields[0] != "content" {
		t.Errorf("UpdatedFields = %v, want [content]", out.UpdatedFields)
	}
	if out.Content != "buy oat milk" {
		t.Errorf("Content = %q, want %q", out.Content, "buy oat milk")
	}

	stored, err := db.GetTaskByIDAndUser(context.Background(), database, created.TaskID, "u1")
	if err != nil {
		t.Fatalf("GetTaskByIDAndUser failed: %v", err)
	}
	if stored.ContentNorm != "buy oat milk" {
		t.Errorf("ContentNorm = %q, want normalized content", stored.ContentNorm)
	}
}

func TestUpdate_MultipleFields(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "file taxes")

	out, err := Update(context.Background(), database, config.DefaultConfig(), UpdateInput{
		UserID:   "u1",
		TaskID:   created.TaskID,
		DueDate:  stringPtr("2026-04-15"),
		Priority: stringPtr("high"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(out.UpdatedFields) != 2 {
		t.Fatalf("UpdatedFields = %v, want two entries", out.UpdatedFields)
	}

	stored, err := db.GetTaskByIDAndUser(context.Background(), database, created.TaskID, "u1")
	if err != nil {
		t.Fatalf("GetTaskByIDAndUser failed: %v", err)
	}
	if stored.DueDate == nil || *stored.DueDate != "2026-04-15" {
		t.Errorf("DueDate = %v, want %q", stored.DueDate, "2026-04-15")
	}
	if stored.Priority != task.PriorityHigh {
		t.Errorf("Priority = %q, want %q", stored.Priority, task.PriorityHigh)
	}
}

func TestUpdate_StatusCompletedSetsTimestamp(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	_, err := Update(context.Background(), database, config.DefaultConfig(), UpdateInput{
		UserID: "u1",
		TaskID: created.TaskID,
		Status: stringPtr("completed"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stored, err := db.GetTaskByIDAndUser(context.Background(), database, created.TaskID, "u1")
	if err != nil {
		t.Fatalf("GetTaskByIDAndUser failed: %v", err)
	}
	if stored.Status != task.StatusCompleted {
		t.Errorf("Status = %q, want %q", stored.Status, task.StatusCompleted)
	}
	if stored.CompletedAt == nil {
		t.Error("CompletedAt not set on completion")
	}
}

func TestUpdate_ReopenClearsCompletedAt(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	if _, err := Complete(context.Background(), database, CompleteInput{UserID: "u1", TaskID: created.TaskID}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	_, err := Update(context.Background(), database, config.DefaultConfig(), UpdateInput{
		UserID: "u1",
		TaskID: created.TaskID,
		Status: stringPtr("pending"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stored, err := db.GetTaskByIDAndUser(context.Background(), database, created.TaskID, "u1")
	if err != nil {
		t.Fatalf("GetTaskByIDAndUser failed: %v", err)
	}
	if stored.Status != task.StatusPending {
		t.Errorf("Status = %q, want %q", stored.Status, task.StatusPending)
	}
	if stored.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil after reopen", stored.CompletedAt)
	}
}

func TestUpdate_NoFields(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	_, err := Update(context.Background(), database, config.DefaultConfig(), UpdateInput{
		UserID: "u1",
		TaskID: created.TaskID,
	})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Update should return ErrInvalidInput when nothing to update, got: %v", err)
	}
}

func TestUpdate_InvalidStatus(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	_, err := Update(context.Background(), database, config.DefaultConfig(), UpdateInput{
		UserID: "u1",
		TaskID: created.TaskID,
		Status: stringPtr("archived"),
	})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Update should return ErrInvalidInput for bad status, got: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	database := testDB(t)

	_, err := Update(context.Background(), database, config.DefaultConfig(), UpdateInput{
		UserID:  "u1",
		TaskID:  "01UNKNOWN",
		Content: stringPtr("anything"),
	})
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("Update should return ErrTaskNotFound, got: %v", err)
	}
}

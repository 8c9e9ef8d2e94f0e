package tools

import (
	"context"
	"testing"

	"github.com/taskpilot/taskpilot/internal/errors"
)

func TestComplete_Basic(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	out, err := Complete(context.Background(), database, CompleteInput{UserID: "u1", TaskID: created.TaskID})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if out.TaskID != created.TaskID {
		t.Errorf("TaskID = %q, want %q", out.TaskID, created.TaskID)
	}
	if out.Content != "buy milk" {
		t.Errorf("Content = %q, want %q", out.Content, "buy milk")
	}
	if out.CompletedAt == 0 {
		t.Error("CompletedAt is zero")
	}
	if out.AlreadyCompleted {
		t.Error("AlreadyCompleted = true on first completion")
	}
}

func TestComplete_Idempotent(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	first, err := Complete(context.Background(), database, CompleteInput{UserID: "u1", TaskID: created.TaskID})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	second, err := Complete(context.Background(), database, CompleteInput{UserID: "u1", TaskID: created.TaskID})
	if err != nil {
		t.Fatalf("second Complete failed: %v", err)
	}

	if !second.AlreadyCompleted {
		t.Error("AlreadyCompleted = false on repeat completion")
	}
	if second.CompletedAt != first.CompletedAt {
		t.Errorf("CompletedAt = %d, want original %d", second.CompletedAt, first.CompletedAt)
	}
}

func TestComplete_NotFound(t *testing.T) {
	database := testDB(t)

	_, err := Complete(context.Background(), database, CompleteInput{UserID: "u1", TaskID: "01UNKNOWN"})
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("Complete should return ErrTaskNotFound, got: %v", err)
	}
}

func TestComplete_OtherUsersTask(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	_, err := Complete(context.Background(), database, CompleteInput{UserID: "u2", TaskID: created.TaskID})
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("Complete across users should return ErrTaskNotFound, got: %v", err)
	}
}

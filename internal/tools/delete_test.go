package tools

import (
	"context"
	"testing"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/errors"
)

func TestDelete_Basic(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	out, err := Delete(context.Background(), database, DeleteInput{UserID: "u1", TaskID: created.TaskID})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if !out.Deleted {
		t.Error("Deleted = false")
	}
	if out.Content != "buy milk" {
		t.Errorf("Content = %q, want %q (echoed back)", out.Content, "buy milk")
	}

	// Gone afterwards
	_, err = Delete(context.Background(), database, DeleteInput{UserID: "u1", TaskID: created.TaskID})
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("second Delete should return ErrTaskNotFound, got: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	database := testDB(t)

	_, err := Delete(context.Background(), database, DeleteInput{UserID: "u1", TaskID: "01UNKNOWN"})
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("Delete should return ErrTaskNotFound, got: %v", err)
	}
}

func TestDelete_OtherUsersTask(t *testing.T) {
	database := testDB(t)
	created := mustCreate(t, database, "u1", "buy milk")

	_, err := Delete(context.Background(), database, DeleteInput{UserID: "u2", TaskID: created.TaskID})
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("Delete across users should return ErrTaskNotFound, got: %v", err)
	}

	// Still present for the owner
	out, err := List(context.Background(), database, config.DefaultConfig(), ListInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Tasks) != 1 {
		t.Errorf("len(Tasks) = %d, want 1 (task must survive cross-user delete)", len(out.Tasks))
	}
}

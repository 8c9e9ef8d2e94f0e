package errors

import (
	"fmt"
	"testing"
)

func TestPilotError_Error(t *testing.T) {
	err := &PilotError{
		Code:    ErrTaskNotFound,
		Status:  404,
		Message: "task not found",
	}

	expected := "TASK_NOT_FOUND: task not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidInput(t *testing.T) {
	err := NewInvalidInput("message is required")

	if err.Code != ErrInvalidInput {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidInput)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "message is required" {
		t.Errorf("Message = %q, want %q", err.Message, "message is required")
	}
}

func TestNewMissingParameters(t *testing.T) {
	err := NewMissingParameters("task_complete", []string{"task_id"})

	if err.Code != ErrInvalidInput {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidInput)
	}
	if err.Details["tool"] != "task_complete" {
		t.Errorf("Details[tool] = %v, want %q", err.Details["tool"], "task_complete")
	}
	missing, ok := err.Details["missing"].([]string)
	if !ok || len(missing) != 1 || missing[0] != "task_id" {
		t.Errorf("Details[missing] = %v, want [task_id]", err.Details["missing"])
	}
}

func TestNewTaskNotFound(t *testing.T) {
	err := NewTaskNotFound("99")

	if err.Code != ErrTaskNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrTaskNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "99" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "99")
	}
}

func TestNewMultipleMatches(t *testing.T) {
	candidates := []Candidate{
		{ID: "1", Content: "buy groceries"},
		{ID: "2", Content: "grocery list for party"},
	}
	err := NewMultipleMatches("grocery", candidates)

	if err.Code != ErrMultipleMatches {
		t.Errorf("Code = %q, want %q", err.Code, ErrMultipleMatches)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["reference"] != "grocery" {
		t.Errorf("Details[reference] = %v, want %q", err.Details["reference"], "grocery")
	}
	got, ok := err.Details["candidates"].([]Candidate)
	if !ok || len(got) != 2 {
		t.Fatalf("Details[candidates] = %v, want 2 candidates", err.Details["candidates"])
	}
}

func TestNewToolExecutionFailure(t *testing.T) {
	err := NewToolExecutionFailure("task_list", fmt.Errorf("store timeout"))

	if err.Code != ErrToolExecutionFailure {
		t.Errorf("Code = %q, want %q", err.Code, ErrToolExecutionFailure)
	}
	if err.Message != "store timeout" {
		t.Errorf("Message = %q, want %q", err.Message, "store timeout")
	}
	if err.Details["tool"] != "task_list" {
		t.Errorf("Details[tool] = %v, want %q", err.Details["tool"], "task_list")
	}
}

func TestNewToolExecutionFailure_NilError(t *testing.T) {
	err := NewToolExecutionFailure("task_add", nil)
	if err.Message != "tool execution failed" {
		t.Errorf("Message = %q, want default", err.Message)
	}
}

func TestNewConversationLoadFailure(t *testing.T) {
	err := NewConversationLoadFailure("conv-1", fmt.Errorf("disk gone"))

	if err.Code != ErrConversationLoadFailure {
		t.Errorf("Code = %q, want %q", err.Code, ErrConversationLoadFailure)
	}
	if err.Details["conversation_id"] != "conv-1" {
		t.Errorf("Details[conversation_id] = %v, want %q", err.Details["conversation_id"], "conv-1")
	}
}

func TestNewConflict(t *testing.T) {
	err := NewConflict("concurrent append detected")

	if err.Code != ErrConflict {
		t.Errorf("Code = %q, want %q", err.Code, ErrConflict)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestIs(t *testing.T) {
	err := NewTaskNotFound("7")

	if !Is(err, ErrTaskNotFound) {
		t.Error("Is(err, ErrTaskNotFound) = false, want true")
	}
	if Is(err, ErrConflict) {
		t.Error("Is(err, ErrConflict) = true, want false")
	}
	if Is(fmt.Errorf("plain error"), ErrTaskNotFound) {
		t.Error("Is(plain, ErrTaskNotFound) = true, want false")
	}
	if Is(nil, ErrTaskNotFound) {
		t.Error("Is(nil, ErrTaskNotFound) = true, want false")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewConflict("x")); got != ErrConflict {
		t.Errorf("CodeOf = %q, want %q", got, ErrConflict)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != ErrInternal {
		t.Errorf("CodeOf(plain) = %q, want %q", got, ErrInternal)
	}
}

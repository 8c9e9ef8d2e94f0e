package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/db"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database, config.DefaultConfig()
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("content is not TextContent")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result payload: %v", err)
	}
	return payload
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	payload := resultPayload(t, result)
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	code, _ := errorObj["code"].(string)
	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func TestHandleAdd(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "add valid task",
			args:      map[string]any{"user_id": "u1", "content": "buy milk"},
			wantError: false,
		},
		{
			name:      "add with attributes",
			args:      map[string]any{"user_id": "u1", "content": "file taxes", "due_date": "2026-04-15", "priority": "high"},
			wantError: false,
		},
		{
			name:      "missing content",
			args:      map[string]any{"user_id": "u1"},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
		{
			name:      "missing user",
			args:      map[string]any{"content": "orphan"},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
		{
			name:      "bad priority",
			args:      map[string]any{"user_id": "u1", "content": "x", "priority": "urgent"},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleAdd(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error result")
			}
		})
	}
}

func TestHandleListAndLifecycle(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	addResult, err := h.HandleAdd(ctx, makeRequest(map[string]any{"user_id": "u1", "content": "buy milk"}))
	if err != nil || addResult.IsError {
		t.Fatalf("setup add failed: %v %v", err, addResult)
	}
	taskID, _ := resultPayload(t, addResult)["task_id"].(string)
	if taskID == "" {
		t.Fatal("add result has no task_id")
	}

	listResult, err := h.HandleList(ctx, makeRequest(map[string]any{"user_id": "u1"}))
	if err != nil || listResult.IsError {
		t.Fatalf("list failed: %v %v", err, listResult)
	}
	payload := resultPayload(t, listResult)
	if payload["total_count"].(float64) != 1 {
		t.Errorf("total_count = %v, want 1", payload["total_count"])
	}

	completeResult, err := h.HandleComplete(ctx, makeRequest(map[string]any{"user_id": "u1", "task_id": taskID}))
	if err != nil || completeResult.IsError {
		t.Fatalf("complete failed: %v %v", err, completeResult)
	}

	updateResult, err := h.HandleUpdate(ctx, makeRequest(map[string]any{"user_id": "u1", "task_id": taskID, "priority": "low"}))
	if err != nil || updateResult.IsError {
		t.Fatalf("update failed: %v %v", err, updateResult)
	}

	deleteResult, err := h.HandleDelete(ctx, makeRequest(map[string]any{"user_id": "u1", "task_id": taskID}))
	if err != nil || deleteResult.IsError {
		t.Fatalf("delete failed: %v %v", err, deleteResult)
	}

	again, err := h.HandleDelete(ctx, makeRequest(map[string]any{"user_id": "u1", "task_id": taskID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !again.IsError {
		t.Error("expected error deleting twice")
	}
	assertErrorCode(t, again, "TASK_NOT_FOUND")
}

func TestHandleComplete_UserScoping(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	addResult, _ := h.HandleAdd(ctx, makeRequest(map[string]any{"user_id": "u1", "content": "secret"}))
	taskID, _ := resultPayload(t, addResult)["task_id"].(string)

	result, err := h.HandleComplete(ctx, makeRequest(map[string]any{"user_id": "u2", "task_id": taskID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error completing another user's task")
	}
	assertErrorCode(t, result, "TASK_NOT_FOUND")
}

func TestHandleChat(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	result, err := h.HandleChat(ctx, makeRequest(map[string]any{
		"user_id": "u1",
		"message": "Add a task to buy milk",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("chat failed: %v", resultPayload(t, result))
	}

	payload := resultPayload(t, result)
	if payload["response"] != "Added task: 'buy milk'" {
		t.Errorf("response = %v, want add confirmation", payload["response"])
	}
	conversationID, _ := payload["conversation_id"].(string)
	if conversationID == "" {
		t.Error("no conversation_id in chat result")
	}

	// Second turn resumes the same conversation.
	followUp, err := h.HandleChat(ctx, makeRequest(map[string]any{
		"user_id":         "u1",
		"message":         "show my tasks",
		"conversation_id": conversationID,
	}))
	if err != nil || followUp.IsError {
		t.Fatalf("follow-up chat failed: %v %v", err, followUp)
	}
	if resultPayload(t, followUp)["conversation_id"] != conversationID {
		t.Error("follow-up did not resume the conversation")
	}
}

func TestHandleChat_MissingMessage(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)

	result, err := h.HandleChat(context.Background(), makeRequest(map[string]any{"user_id": "u1"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error for missing message")
	}
	assertErrorCode(t, result, "INVALID_INPUT")
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"task_add", "task_frobnicate"})
	if len(unknown) != 1 || unknown[0] != "task_frobnicate" {
		t.Errorf("unknown = %v, want [task_frobnicate]", unknown)
	}
}

func TestNewServer_RespectsDisabledTools(t *testing.T) {
	database, cfg := testSetup(t)
	cfg.DisabledTools = []string{"task_delete"}

	s := NewServer(database, cfg, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}

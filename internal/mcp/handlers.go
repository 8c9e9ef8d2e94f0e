package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskpilot/taskpilot/internal/agent"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/tools"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db           *sql.DB
	cfg          *config.Config
	orchestrator *agent.Orchestrator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		db:           db,
		cfg:          cfg,
		orchestrator: agent.NewOrchestrator(db, cfg),
	}
}

// Request types for each tool

// AddRequest represents the arguments for task_add.
type AddRequest struct {
	UserID   string  `json:"user_id"`
	Content  string  `json:"content"`
	DueDate  *string `json:"due_date,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

// ListRequest represents the arguments for task_list.
type ListRequest struct {
	UserID    string `json:"user_id"`
	Filter    string `json:"filter,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// CompleteRequest represents the arguments for task_complete.
type CompleteRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteRequest represents the arguments for task_delete.
type DeleteRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// UpdateRequest represents the arguments for task_update.
type UpdateRequest struct {
	UserID   string  `json:"user_id"`
	TaskID   string  `json:"task_id"`
	Content  *string `json:"content,omitempty"`
	DueDate  *string `json:"due_date,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// ChatRequest represents the arguments for chat.
type ChatRequest struct {
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Handler implementations

// HandleAdd handles the task_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := tools.Create(ctx, h.db, h.cfg, tools.CreateInput{
		UserID:   input.UserID,
		Content:  input.Content,
		DueDate:  input.DueDate,
		Priority: input.Priority,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the task_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := tools.List(ctx, h.db, h.cfg, tools.ListInput{
		UserID:    input.UserID,
		Filter:    input.Filter,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Limit:     input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleComplete handles the task_complete tool call.
func (h *Handlers) HandleComplete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := tools.Complete(ctx, h.db, tools.CompleteInput{
		UserID: input.UserID,
		TaskID: input.TaskID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the task_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := tools.Delete(ctx, h.db, tools.DeleteInput{
		UserID: input.UserID,
		TaskID: input.TaskID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the task_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := tools.Update(ctx, h.db, h.cfg, tools.UpdateInput{
		UserID:   input.UserID,
		TaskID:   input.TaskID,
		Content:  input.Content,
		DueDate:  input.DueDate,
		Priority: input.Priority,
		Status:   input.Status,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleChat handles the chat tool call, running the full request
// lifecycle: classify, resolve, execute, format, persist.
func (h *Handlers) HandleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChatRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := h.orchestrator.Chat(ctx, agent.ChatInput{
		UserID:         input.UserID,
		Message:        input.Message,
		ConversationID: input.ConversationID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pilotErr, ok := err.(*errors.PilotError); ok {
		errorObj := map[string]any{
			"code":    pilotErr.Code,
			"message": pilotErr.Message,
			"status":  pilotErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if pilotErr.Code != errors.ErrInternal && pilotErr.Details != nil {
			errorObj["details"] = pilotErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

// Package mcp exposes the task tools and the conversational chat entry
// point over the Model Context Protocol via stdio.
package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/taskpilot/taskpilot/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"task_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"task_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"task_complete": {
		def:     completeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleComplete },
	},
	"task_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"task_update": {
		def:     updateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate },
	},
	"chat": {
		def:     chatToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChat },
	},
}

var addToolDef = mcp.NewTool("task_add",
	mcp.WithDescription("Create a task for a user."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the task.")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Task text.")),
	mcp.WithString("due_date", mcp.Description("Optional due date, ideally YYYY-MM-DD.")),
	mcp.WithString("priority", mcp.Description("low, medium, or high. Defaults to medium.")),
)

var listToolDef = mcp.NewTool("task_list",
	mcp.WithDescription("List a user's tasks with optional filtering and sorting."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the tasks.")),
	mcp.WithString("filter", mcp.Description("all, pending, completed, or overdue. Defaults to all.")),
	mcp.WithString("sort_by", mcp.Description("created_at, due_date, or priority.")),
	mcp.WithString("sort_order", mcp.Description("asc or desc.")),
	mcp.WithNumber("limit", mcp.Description("Maximum tasks returned. Default 50, cap 100.")),
)

var completeToolDef = mcp.NewTool("task_complete",
	mcp.WithDescription("Mark a task as completed. Idempotent."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the task.")),
	mcp.WithString("task_id", mcp.Required(), mcp.Description("Task to complete.")),
)

var deleteToolDef = mcp.NewTool("task_delete",
	mcp.WithDescription("Delete a task."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the task.")),
	mcp.WithString("task_id", mcp.Required(), mcp.Description("Task to delete.")),
)

var updateToolDef = mcp.NewTool("task_update",
	mcp.WithDescription("Update a task's content, due date, priority, or status."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the task.")),
	mcp.WithString("task_id", mcp.Required(), mcp.Description("Task to update.")),
	mcp.WithString("content", mcp.Description("New task text.")),
	mcp.WithString("due_date", mcp.Description("New due date.")),
	mcp.WithString("priority", mcp.Description("low, medium, or high.")),
	mcp.WithString("status", mcp.Description("pending or completed.")),
)

var chatToolDef = mcp.NewTool("chat",
	mcp.WithDescription("Send a free-text task request through the conversational agent. "+
		"Returns the reply, the conversation id, and every task tool call made."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("The requesting user.")),
	mcp.WithString("message", mcp.Required(), mcp.Description("Free-text request.")),
	mcp.WithString("conversation_id", mcp.Description("Conversation to resume. Omit to start a new one.")),
)

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with taskpilot tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"taskpilot",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

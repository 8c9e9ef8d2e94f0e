// Package tools is the tool contract layer: one typed operation per task
// primitive, each scoped to the calling user. Nothing above this package
// talks to the task store directly.
package tools

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Tool names as they appear in tool call records and on the MCP surface.
const (
	ToolAdd      = "task_add"
	ToolList     = "task_list"
	ToolComplete = "task_complete"
	ToolDelete   = "task_delete"
	ToolUpdate   = "task_update"
)

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// cleanOptionalString trims an optional string; empty becomes nil.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

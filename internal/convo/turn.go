package convo

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCall records one task-store operation issued while producing an
// assistant turn: its name, the exact parameters sent, and either a result
// payload or an error code. Returned to callers as observability metadata
// and persisted alongside the turn.
type ToolCall struct {
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters"`
	Result     any            `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Turn is one message in a conversation. Turns are append-only: once
// written to the log they are never mutated. ToolCalls is empty for user
// turns.
type Turn struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	Seq            int64      `json:"seq"`
	Role           Role       `json:"role"`
	Content        string     `json:"content"`
	ToolCalls      []ToolCall `json:"tool_calls,omitempty"`
	CreatedAt      int64      `json:"created_at"`
}

// NewUserTurn builds an unpersisted user turn. Seq is assigned at append
// time.
func NewUserTurn(conversationID, content string) Turn {
	return Turn{
		ID:             NewID(),
		ConversationID: conversationID,
		Role:           RoleUser,
		Content:        content,
		CreatedAt:      time.Now().Unix(),
	}
}

// NewAssistantTurn builds an unpersisted assistant turn with the tool calls
// made while producing it.
func NewAssistantTurn(conversationID, content string, toolCalls []ToolCall) Turn {
	return Turn{
		ID:             NewID(),
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Content:        content,
		ToolCalls:      toolCalls,
		CreatedAt:      time.Now().Unix(),
	}
}

// NewID generates a new ULID.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

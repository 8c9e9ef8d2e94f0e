package convo

import (
	"fmt"
	"strings"
	"testing"
)

func makeTurns(conversationID string, n int) []Turn {
	turns := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		turns = append(turns, Turn{
			ID:             NewID(),
			ConversationID: conversationID,
			Seq:            int64(i + 1),
			Role:           role,
			Content:        fmt.Sprintf("message %d", i+1),
			CreatedAt:      int64(1700000000 + i),
		})
	}
	return turns
}

func TestWindow_UnderLimit(t *testing.T) {
	turns := makeTurns("conv-1", 5)

	ctx := Window("conv-1", turns, 20, nil)

	if len(ctx.Turns) != 5 {
		t.Fatalf("len(Turns) = %d, want 5", len(ctx.Turns))
	}
	for i, turn := range ctx.Turns {
		if turn.Content != fmt.Sprintf("message %d", i+1) {
			t.Errorf("turn %d content = %q", i, turn.Content)
		}
	}
}

func TestWindow_ExactLimit(t *testing.T) {
	turns := makeTurns("conv-1", 20)
	ctx := Window("conv-1", turns, 20, nil)
	if len(ctx.Turns) != 20 {
		t.Fatalf("len(Turns) = %d, want 20 (no summary at exact limit)", len(ctx.Turns))
	}
}

func TestWindow_OverLimit(t *testing.T) {
	turns := makeTurns("conv-1", 25)

	ctx := Window("conv-1", turns, 20, nil)

	// Exactly one summary turn followed by the most recent 20 raw turns.
	if len(ctx.Turns) != 21 {
		t.Fatalf("len(Turns) = %d, want 21", len(ctx.Turns))
	}
	summary := ctx.Turns[0]
	if !strings.Contains(summary.Content, "5 earlier turns") {
		t.Errorf("summary content = %q, want mention of 5 earlier turns", summary.Content)
	}
	if ctx.Turns[1].Content != "message 6" {
		t.Errorf("first raw turn = %q, want %q", ctx.Turns[1].Content, "message 6")
	}
	if ctx.Turns[20].Content != "message 25" {
		t.Errorf("last raw turn = %q, want %q", ctx.Turns[20].Content, "message 25")
	}
}

func TestWindow_CustomSummarizer(t *testing.T) {
	turns := makeTurns("conv-1", 22)

	called := 0
	ctx := Window("conv-1", turns, 20, func(older []Turn) string {
		called++
		if len(older) != 2 {
			t.Errorf("summarizer got %d turns, want 2", len(older))
		}
		return "custom summary"
	})

	if called != 1 {
		t.Fatalf("summarizer called %d times, want 1", called)
	}
	if ctx.Turns[0].Content != "custom summary" {
		t.Errorf("summary content = %q", ctx.Turns[0].Content)
	}
}

func TestWindow_ZeroWindowDisablesWindowing(t *testing.T) {
	turns := makeTurns("conv-1", 30)
	ctx := Window("conv-1", turns, 0, nil)
	if len(ctx.Turns) != 30 {
		t.Fatalf("len(Turns) = %d, want 30", len(ctx.Turns))
	}
}

func TestDefaultSummarize(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Content: "add a task to buy milk"},
		{Role: RoleAssistant, Content: "Added task: 'buy milk'"},
		{Role: RoleUser, Content: "show my tasks"},
	}

	got := DefaultSummarize(turns)

	if !strings.Contains(got, "3 earlier turns") {
		t.Errorf("summary = %q, want turn count", got)
	}
	if !strings.Contains(got, "add a task to buy milk") {
		t.Errorf("summary = %q, want first user message", got)
	}
}

func TestDefaultSummarize_NoUserTurns(t *testing.T) {
	turns := []Turn{{Role: RoleAssistant, Content: "hello"}}
	got := DefaultSummarize(turns)
	if got != "[Summary of 1 earlier turns]" {
		t.Errorf("summary = %q", got)
	}
}

func TestLastAssistantTurn(t *testing.T) {
	ctx := &Context{Turns: makeTurns("conv-1", 4)}
	last := ctx.LastAssistantTurn()
	if last == nil || last.Content != "message 4" {
		t.Fatalf("LastAssistantTurn = %+v, want message 4", last)
	}

	empty := &Context{}
	if empty.LastAssistantTurn() != nil {
		t.Error("LastAssistantTurn on empty context should be nil")
	}
	if !empty.IsEmpty() {
		t.Error("IsEmpty on empty context should be true")
	}
}

package convo

import (
	"fmt"
	"strings"
)

// SummarizeFunc collapses turns that fell out of the context window into a
// single string. The default is a deterministic digest; callers may plug in
// something smarter without touching the rest of the pipeline.
type SummarizeFunc func(turns []Turn) string

// LastIntent records which operation the previous request resolved to,
// keyed by intent type name with the parameters the tool was called with.
// It is rebuilt from the newest assistant turn's tool calls, not stored
// separately, so it survives process restarts like everything else in the
// context.
type LastIntent struct {
	Type       string
	Parameters map[string]string
}

// Context is the working view of one conversation, rebuilt from the message
// log at the start of every request and discarded when the request ends.
// Turns holds at most the window's worth of raw turns, preceded by one
// synthetic summary turn when older history was cut off. LastIntent is nil
// when no prior turn carried a tool call.
type Context struct {
	ConversationID string
	Turns          []Turn
	LastIntent     *LastIntent
}

// IsEmpty reports whether the context carries no history at all.
func (c *Context) IsEmpty() bool {
	return len(c.Turns) == 0
}

// LastAssistantTurn returns the most recent assistant turn, or nil.
func (c *Context) LastAssistantTurn() *Turn {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleAssistant {
			return &c.Turns[i]
		}
	}
	return nil
}

// Window applies the context-window rule: if turns fit within window, they
// are returned as-is; otherwise the most recent window turns are kept and
// everything older is replaced by one synthetic summary turn at the head.
// The log itself is never truncated, only the view.
func Window(conversationID string, turns []Turn, window int, summarize SummarizeFunc) *Context {
	if window <= 0 || len(turns) <= window {
		return &Context{ConversationID: conversationID, Turns: turns}
	}

	if summarize == nil {
		summarize = DefaultSummarize
	}

	older := turns[:len(turns)-window]
	recent := turns[len(turns)-window:]

	summary := Turn{
		ID:             NewID(),
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Content:        summarize(older),
		CreatedAt:      older[len(older)-1].CreatedAt,
	}

	windowed := make([]Turn, 0, window+1)
	windowed = append(windowed, summary)
	windowed = append(windowed, recent...)

	return &Context{ConversationID: conversationID, Turns: windowed}
}

// DefaultSummarize produces a deterministic digest of older turns: a count
// plus the first few user messages, truncated. It fabricates nothing beyond
// what the turns contain.
func DefaultSummarize(turns []Turn) string {
	var topics []string
	for _, t := range turns {
		if t.Role != RoleUser {
			continue
		}
		topic := strings.TrimSpace(t.Content)
		if runes := []rune(topic); len(runes) > 60 {
			topic = string(runes[:60]) + "…"
		}
		topics = append(topics, topic)
		if len(topics) == 3 {
			break
		}
	}

	if len(topics) == 0 {
		return fmt.Sprintf("[Summary of %d earlier turns]", len(turns))
	}
	return fmt.Sprintf("[Summary of %d earlier turns; started with: %s]", len(turns), strings.Join(topics, " / "))
}

package agent

import (
	"context"
	"database/sql"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/convo"
	"github.com/taskpilot/taskpilot/internal/db"
	"github.com/taskpilot/taskpilot/internal/errors"
)

// Reconstructor rebuilds conversation context from the message log before
// every request and persists the new turns after. The process keeps no
// conversation state between requests; the log is the only memory.
type Reconstructor struct {
	db        *sql.DB
	window    int
	summarize convo.SummarizeFunc
}

func NewReconstructor(database *sql.DB, cfg *config.Config) *Reconstructor {
	return &Reconstructor{
		db:        database,
		window:    cfg.ContextWindowTurns,
		summarize: convo.DefaultSummarize,
	}
}

// SetSummarizer replaces the windowing summary function.
func (r *Reconstructor) SetSummarizer(fn convo.SummarizeFunc) {
	if fn != nil {
		r.summarize = fn
	}
}

// Load returns the windowed context for a conversation. An absent or
// unknown id allocates a fresh conversation and returns an empty context;
// that is a normal start, not an error. A conversation owned by a different
// user is treated as unknown so one user can never read another's history.
//
// The returned context is always usable. When the log cannot be read, Load
// returns an empty context for a fresh conversation together with a
// ConversationLoadFailure, and the caller decides whether to degrade.
func (r *Reconstructor) Load(ctx context.Context, conversationID, userID string) (*convo.Context, error) {
	if conversationID != "" {
		owner, found, err := db.GetConversation(ctx, r.db, conversationID)
		if err != nil {
			return r.fresh(ctx, userID, errors.NewConversationLoadFailure(conversationID, err))
		}
		if found && owner == userID {
			turns, err := db.ReadTurns(ctx, r.db, conversationID)
			if err != nil {
				return r.fresh(ctx, userID, errors.NewConversationLoadFailure(conversationID, err))
			}
			cctx := convo.Window(conversationID, turns, r.window, r.summarize)
			cctx.LastIntent = deriveLastIntent(cctx)
			return cctx, nil
		}
	}

	return r.fresh(ctx, userID, nil)
}

// fresh allocates a new conversation and returns its empty context. loadErr
// is passed through so callers see why an existing id could not be used.
func (r *Reconstructor) fresh(ctx context.Context, userID string, loadErr error) (*convo.Context, error) {
	id := convo.NewID()
	if err := db.InsertConversation(ctx, r.db, id, userID); err != nil {
		if loadErr == nil {
			loadErr = err
		}
		return &convo.Context{ConversationID: id}, loadErr
	}
	return &convo.Context{ConversationID: id}, loadErr
}

// deriveLastIntent recovers the previous request's intent from the newest
// assistant turn's tool calls. When a list-then-act chain ran, the acting
// call is the last one recorded.
func deriveLastIntent(c *convo.Context) *convo.LastIntent {
	turn := c.LastAssistantTurn()
	if turn == nil || len(turn.ToolCalls) == 0 {
		return nil
	}

	call := turn.ToolCalls[len(turn.ToolCalls)-1]
	t, ok := toolIntents[call.ToolName]
	if !ok {
		return nil
	}

	params := make(map[string]string, len(call.Parameters))
	for k, v := range call.Parameters {
		if s, ok := v.(string); ok {
			params[k] = s
		}
	}
	return &convo.LastIntent{Type: string(t), Parameters: params}
}

// Append persists the new turns for this request: exactly one user turn and
// one assistant turn, in that order. The write is atomic per conversation;
// racing appends on the same id surface as a Conflict instead of
// interleaving.
func (r *Reconstructor) Append(ctx context.Context, conversationID string, turns ...convo.Turn) error {
	return db.AppendTurns(ctx, r.db, conversationID, turns)
}

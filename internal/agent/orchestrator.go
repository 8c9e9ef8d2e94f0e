package agent

import (
	"context"
	"database/sql"
	"log"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/convo"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/intent"
)

// Orchestrator is the composition root for one chat turn: load context,
// classify, resolve, execute, format, persist. Each inbound request makes
// exactly one pass; there is no retry loop, a user retry is a new request.
type Orchestrator struct {
	cfg   *config.Config
	rec   *Reconstructor
	coord *Coordinator
}

func NewOrchestrator(database *sql.DB, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		rec:   NewReconstructor(database, cfg),
		coord: NewCoordinator(database, cfg),
	}
}

// Reconstructor exposes the conversation store, mainly so callers can plug
// in a different summarizer.
func (o *Orchestrator) Reconstructor() *Reconstructor {
	return o.rec
}

// ChatInput is one inbound request after identity verification: the trusted
// user id, the raw message, and an optional conversation to resume.
type ChatInput struct {
	UserID         string
	Message        string
	ConversationID string
}

// ChatOutput is the reply envelope: the (possibly newly allocated)
// conversation id, the formatted response, and every tool call made while
// producing it, failures included.
type ChatOutput struct {
	ConversationID string           `json:"conversation_id"`
	Response       string           `json:"response"`
	ToolCalls      []convo.ToolCall `json:"tool_calls"`
}

// Chat runs the full request lifecycle and returns the reply. Errors during
// execution become apologetic replies, not failed requests; only invalid
// input or a failure to persist the exchange is returned as an error.
func (o *Orchestrator) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	if in.UserID == "" {
		return nil, errors.NewInvalidInput("user_id is required")
	}
	if in.Message == "" {
		return nil, errors.NewInvalidInput("message is required")
	}

	cctx, loadErr := o.rec.Load(ctx, in.ConversationID, in.UserID)
	if loadErr != nil {
		// Degraded mode: a fresh empty conversation is safe, losing the
		// request is not.
		log.Printf("conversation load failed, starting fresh: %v", loadErr)
	}

	it := intent.Classify(in.Message, cctx)
	response, calls := o.dispatch(ctx, in.UserID, it)

	userTurn := convo.NewUserTurn(cctx.ConversationID, in.Message)
	assistantTurn := convo.NewAssistantTurn(cctx.ConversationID, response, calls)
	if err := o.rec.Append(ctx, cctx.ConversationID, userTurn, assistantTurn); err != nil {
		if errors.Is(err, errors.ErrConflict) {
			return nil, err
		}
		// The tools already ran; dropping the reply now would misreport
		// what happened. Log the persistence failure and answer anyway.
		log.Printf("failed to append turns to conversation %s: %v", cctx.ConversationID, err)
	}

	return &ChatOutput{
		ConversationID: cctx.ConversationID,
		Response:       response,
		ToolCalls:      calls,
	}, nil
}

// dispatch applies the confidence thresholds and runs the request when it
// is actionable. Below the acting threshold nothing executes: the reply is
// a confirmation prompt or a clarifying question.
func (o *Orchestrator) dispatch(ctx context.Context, userID string, it intent.Intent) (string, []convo.ToolCall) {
	if it.Type == intent.Ambiguous {
		return FormatClarification(clarifyIntent(it)), nil
	}

	switch {
	case it.Confidence >= o.cfg.ActThreshold:
		req, clar := Resolve(it)
		if clar != nil {
			return FormatClarification(clar), nil
		}
		out := o.coord.Execute(ctx, userID, req)
		return Format(out), out.Calls

	case it.Confidence >= o.cfg.ConfirmThreshold:
		return FormatConfirmPrompt(it), nil

	default:
		return FormatClarification(clarifyIntent(it)), nil
	}
}

// clarifyIntent builds the clarification for input that could not be
// classified confidently enough to name an action, carrying the coded
// ambiguity error.
func clarifyIntent(it intent.Intent) *Clarification {
	return &Clarification{Intent: it, Err: errors.NewAmbiguousIntent(it.Confidence)}
}

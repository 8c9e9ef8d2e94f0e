package agent

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/convo"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/internal/tools"
)

// Coordinator executes resolved operation requests against the task store.
// When a request targets a task by content reference instead of id, it runs
// the list-then-act chain: one scoped list call, a normalized substring
// match against the task contents, then the action. That chain is the only form of tool
// sequencing and never exceeds two calls per user turn.
type Coordinator struct {
	db  *sql.DB
	cfg *config.Config
}

func NewCoordinator(database *sql.DB, cfg *config.Config) *Coordinator {
	return &Coordinator{db: database, cfg: cfg}
}

// Outcome is the structured result of executing one request. Exactly one of
// Result, Err, or Clar is meaningful; Calls records every tool invocation
// made along the way, including failed ones.
type Outcome struct {
	Tool   string
	Result any
	Err    *errors.PilotError
	Clar   *Clarification
	Calls  []convo.ToolCall
}

// Execute runs the operation, resolving a content reference to a task id
// first if needed. Zero matches surface TaskNotFound; more than one match
// surfaces a clarification listing the candidates rather than guessing.
func (c *Coordinator) Execute(ctx context.Context, userID string, req *OperationRequest) *Outcome {
	out := &Outcome{Tool: req.Tool}

	taskID := req.Parameters["task_id"]
	if ref := req.TaskRef(); ref != "" {
		resolved, clar, err := c.resolveReference(ctx, userID, ref, out)
		if err != nil {
			out.Err = err
			return out
		}
		if clar != nil {
			clar.Intent = req.Intent
			out.Clar = clar
			return out
		}
		taskID = resolved
	}

	switch req.Tool {
	case tools.ToolAdd:
		c.runCreate(ctx, userID, req.Parameters, out)
	case tools.ToolList:
		c.runList(ctx, userID, req.Parameters, out)
	case tools.ToolComplete:
		params := map[string]any{"task_id": taskID}
		result, err := tools.Complete(ctx, c.db, tools.CompleteInput{UserID: userID, TaskID: taskID})
		c.record(out, params, result, err)
	case tools.ToolDelete:
		params := map[string]any{"task_id": taskID}
		result, err := tools.Delete(ctx, c.db, tools.DeleteInput{UserID: userID, TaskID: taskID})
		c.record(out, params, result, err)
	case tools.ToolUpdate:
		c.runUpdate(ctx, userID, taskID, req.Parameters, out)
	default:
		out.Err = errors.NewInternal(nil)
	}

	return out
}

func (c *Coordinator) runCreate(ctx context.Context, userID string, p map[string]string, out *Outcome) {
	input := tools.CreateInput{UserID: userID, Content: p["content"]}
	params := map[string]any{"content": p["content"]}
	if v := p["due_date"]; v != "" {
		input.DueDate = &v
		params["due_date"] = v
	}
	if v := p["priority"]; v != "" {
		input.Priority = &v
		params["priority"] = v
	}

	result, err := tools.Create(ctx, c.db, c.cfg, input)
	c.record(out, params, result, err)
}

func (c *Coordinator) runList(ctx context.Context, userID string, p map[string]string, out *Outcome) {
	input := tools.ListInput{
		UserID:    userID,
		Filter:    p["filter"],
		SortBy:    p["sort_by"],
		SortOrder: p["sort_order"],
	}
	params := map[string]any{}
	for _, k := range []string{"filter", "sort_by", "sort_order"} {
		if p[k] != "" {
			params[k] = p[k]
		}
	}
	if v := p["limit"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			input.Limit = n
			params["limit"] = n
		}
	}

	result, err := tools.List(ctx, c.db, c.cfg, input)
	c.record(out, params, result, err)
}

func (c *Coordinator) runUpdate(ctx context.Context, userID, taskID string, p map[string]string, out *Outcome) {
	input := tools.UpdateInput{UserID: userID, TaskID: taskID}
	params := map[string]any{"task_id": taskID}
	for k, dst := range map[string]**string{
		"content":  &input.Content,
		"due_date": &input.DueDate,
		"priority": &input.Priority,
		"status":   &input.Status,
	} {
		if v := p[k]; v != "" {
			value := v
			*dst = &value
			params[k] = v
		}
	}

	result, err := tools.Update(ctx, c.db, c.cfg, input)
	c.record(out, params, result, err)
}

// resolveReference turns a content phrase into a concrete task id by
// listing the user's tasks and matching the phrase against their contents.
func (c *Coordinator) resolveReference(ctx context.Context, userID, ref string, out *Outcome) (string, *Clarification, *errors.PilotError) {
	params := map[string]any{"filter": "all", "limit": c.cfg.ListMaxLimit}
	listed, err := tools.List(ctx, c.db, c.cfg, tools.ListInput{
		UserID: userID,
		Filter: "all",
		Limit:  c.cfg.ListMaxLimit,
	})
	call := convo.ToolCall{ToolName: tools.ToolList, Parameters: params}
	if err != nil {
		call.Error = string(errors.CodeOf(err))
		out.Calls = append(out.Calls, call)
		return "", nil, toPilotError(err)
	}
	call.Result = listed
	out.Calls = append(out.Calls, call)

	// Normalized matching: "buy  milk" in the message still finds the
	// stored "buy milk".
	var matches []errors.Candidate
	for _, t := range listed.Tasks {
		if task.MatchesReference(t.Content, ref) {
			matches = append(matches, errors.Candidate{ID: t.ID, Content: t.Content})
		}
	}

	switch len(matches) {
	case 0:
		return "", nil, errors.NewTaskNotFound(ref)
	case 1:
		return matches[0].ID, nil, nil
	default:
		return "", &Clarification{
			Reference:  ref,
			Candidates: matches,
			Err:        errors.NewMultipleMatches(ref, matches),
		}, nil
	}
}

// record captures the tool call and sorts its result into the outcome.
func (c *Coordinator) record(out *Outcome, params map[string]any, result any, err error) {
	call := convo.ToolCall{ToolName: out.Tool, Parameters: params}
	if err != nil {
		pe := toPilotError(err)
		call.Error = string(pe.Code)
		out.Err = pe
	} else {
		call.Result = result
		out.Result = result
	}
	out.Calls = append(out.Calls, call)
}

// toPilotError normalizes errors crossing the tool boundary: anything that
// is not already a coded error becomes a ToolExecutionFailure.
func toPilotError(err error) *errors.PilotError {
	if pe, ok := err.(*errors.PilotError); ok {
		return pe
	}
	return errors.NewToolExecutionFailure("task store", err)
}

// Package agent wires intent classification, tool mapping, chained
// execution, conversation reconstruction, and response formatting into the
// single request lifecycle behind every chat turn.
package agent

import (
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/intent"
	"github.com/taskpilot/taskpilot/internal/tools"
)

// Mapping binds an intent type to a task tool and its parameter shape.
type Mapping struct {
	Tool     string
	Required []string
	Optional []string
}

// mappings is the static intent-to-tool table. The task target for
// complete/delete/update is "task_id", which a "task_ref" content phrase
// also satisfies; resolution of a ref to an id happens in the coordinator.
var mappings = map[intent.Type]Mapping{
	intent.CreateTask: {
		Tool:     tools.ToolAdd,
		Required: []string{"content"},
		Optional: []string{"due_date", "priority"},
	},
	intent.ListTasks: {
		Tool:     tools.ToolList,
		Optional: []string{"filter", "sort_by", "sort_order", "limit"},
	},
	intent.CompleteTask: {
		Tool:     tools.ToolComplete,
		Required: []string{"task_id"},
	},
	intent.DeleteTask: {
		Tool:     tools.ToolDelete,
		Required: []string{"task_id"},
	},
	intent.UpdateTask: {
		Tool:     tools.ToolUpdate,
		Required: []string{"task_id", "updates"},
	},
}

// toolIntents inverts mappings so the reconstructor can recover the intent
// behind a recorded tool call.
var toolIntents = func() map[string]intent.Type {
	inv := make(map[string]intent.Type, len(mappings))
	for t, m := range mappings {
		inv[m.Tool] = t
	}
	return inv
}()

// OperationRequest is a fully validated, ready-to-execute tool invocation.
type OperationRequest struct {
	Tool       string
	Intent     intent.Intent
	Parameters map[string]string
}

// TaskRef returns the content phrase referencing the target task, if the
// request carries one instead of a concrete id.
func (r *OperationRequest) TaskRef() string {
	if r.Parameters["task_id"] != "" {
		return ""
	}
	return r.Parameters["task_ref"]
}

// Clarification says the request cannot proceed without more information
// from the user: missing parameters, several tasks matching a reference, or
// input the classifier could not resolve. Err carries the coded error for
// the underlying condition so tool call records and callers see why the
// request stalled.
type Clarification struct {
	Intent        intent.Intent
	MissingParams []string
	Reference     string
	Candidates    []errors.Candidate
	Err           *errors.PilotError
}

// Resolve maps a classified intent onto a tool invocation, validating that
// every required parameter is present. A missing required parameter yields
// a Clarification naming the missing fields; identifiers are never guessed
// or defaulted.
func Resolve(it intent.Intent) (*OperationRequest, *Clarification) {
	mapping, ok := mappings[it.Type]
	if !ok {
		return nil, &Clarification{Intent: it, Err: errors.NewAmbiguousIntent(it.Confidence)}
	}

	var missing []string
	for _, name := range mapping.Required {
		if hasRequirement(it, name) {
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return nil, &Clarification{
			Intent:        it,
			MissingParams: missing,
			Err:           errors.NewMissingParameters(mapping.Tool, missing),
		}
	}

	return &OperationRequest{
		Tool:       mapping.Tool,
		Intent:     it,
		Parameters: it.Parameters,
	}, nil
}

// hasRequirement checks one required parameter against the intent. Two
// requirements are composite: the task target accepts an id or a content
// reference, and "updates" means at least one updatable field was given.
func hasRequirement(it intent.Intent, name string) bool {
	switch name {
	case "task_id":
		return it.Param("task_id") != "" || it.Param("task_ref") != ""
	case "updates":
		return it.Param("content") != "" || it.Param("priority") != "" ||
			it.Param("status") != "" || it.Param("due_date") != ""
	default:
		return it.Param(name) != ""
	}
}

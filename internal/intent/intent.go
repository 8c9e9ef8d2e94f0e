// Package intent classifies free-text task requests into a typed intent
// with a confidence score and extracted parameters. Classification is a
// deterministic keyword scorer, not a learned model.
package intent

// Type is the kind of task operation the user is asking for.
type Type string

const (
	CreateTask   Type = "create_task"
	ListTasks    Type = "list_tasks"
	CompleteTask Type = "complete_task"
	DeleteTask   Type = "delete_task"
	UpdateTask   Type = "update_task"
	Ambiguous    Type = "ambiguous"
)

// allTypes is the fixed evaluation order for scoring. Ordering only affects
// which scores are computed first, never the outcome.
var allTypes = []Type{CreateTask, ListTasks, CompleteTask, DeleteTask, UpdateTask}

// Intent is the result of classifying one user message. Immutable once
// produced; created fresh per request and never persisted on its own.
type Intent struct {
	Type       Type
	Confidence float64
	Parameters map[string]string
}

// Param returns the named parameter, or "" when absent.
func (i Intent) Param(key string) string {
	return i.Parameters[key]
}

// HasParam reports whether the named parameter was extracted.
func (i Intent) HasParam(key string) bool {
	_, ok := i.Parameters[key]
	return ok
}

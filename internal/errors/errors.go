package errors

import "fmt"

// ErrorCode represents a taskpilot error code.
type ErrorCode string

const (
	ErrInvalidInput            ErrorCode = "INVALID_INPUT"             // 400
	ErrAmbiguousIntent         ErrorCode = "AMBIGUOUS_INTENT"          // 422
	ErrTaskNotFound            ErrorCode = "TASK_NOT_FOUND"            // 404
	ErrMultipleMatches         ErrorCode = "MULTIPLE_MATCHES"          // 409
	ErrToolExecutionFailure    ErrorCode = "TOOL_EXECUTION_FAILURE"    // 502
	ErrConversationLoadFailure ErrorCode = "CONVERSATION_LOAD_FAILURE" // 500
	ErrConflict                ErrorCode = "CONFLICT"                  // 409 (concurrent append on one conversation)
	ErrInternal                ErrorCode = "INTERNAL"                  // 500
)

// PilotError represents a structured error with code, status, and details.
type PilotError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PilotError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInput creates a 400 error for malformed or missing parameters.
func NewInvalidInput(msg string) *PilotError {
	return &PilotError{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: msg,
	}
}

// NewMissingParameters creates an invalid-input error naming the missing
// required parameters, so callers can turn it into a clarification.
func NewMissingParameters(tool string, missing []string) *PilotError {
	return &PilotError{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: fmt.Sprintf("missing required parameters for %s: %v", tool, missing),
		Details: map[string]any{"tool": tool, "missing": missing},
	}
}

// NewAmbiguousIntent creates a 422 error for input the classifier could not
// resolve with enough confidence to act.
func NewAmbiguousIntent(confidence float64) *PilotError {
	return &PilotError{
		Code:    ErrAmbiguousIntent,
		Status:  422,
		Message: "could not determine intent with sufficient confidence",
		Details: map[string]any{"confidence": confidence},
	}
}

// NewTaskNotFound creates a 404 error for when a task cannot be found.
func NewTaskNotFound(identifier string) *PilotError {
	return &PilotError{
		Code:    ErrTaskNotFound,
		Status:  404,
		Message: fmt.Sprintf("task not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// Candidate is an id/content pair used when a content reference must be
// disambiguated by the user.
type Candidate struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// NewMultipleMatches creates a 409 error when a content reference matches
// more than one task.
func NewMultipleMatches(reference string, candidates []Candidate) *PilotError {
	return &PilotError{
		Code:    ErrMultipleMatches,
		Status:  409,
		Message: fmt.Sprintf("%d tasks match %q", len(candidates), reference),
		Details: map[string]any{"reference": reference, "candidates": candidates},
	}
}

// NewToolExecutionFailure creates a 502 error for a failed or timed-out
// task-store call.
func NewToolExecutionFailure(tool string, err error) *PilotError {
	msg := "tool execution failed"
	if err != nil {
		msg = err.Error()
	}
	return &PilotError{
		Code:    ErrToolExecutionFailure,
		Status:  502,
		Message: msg,
		Details: map[string]any{"tool": tool},
	}
}

// NewConversationLoadFailure creates a 500 error for an unreadable message
// log. The orchestrator treats this as a degraded mode, not a fatal error.
func NewConversationLoadFailure(conversationID string, err error) *PilotError {
	msg := "failed to load conversation"
	if err != nil {
		msg = err.Error()
	}
	return &PilotError{
		Code:    ErrConversationLoadFailure,
		Status:  500,
		Message: msg,
		Details: map[string]any{"conversation_id": conversationID},
	}
}

// NewConflict creates a 409 error for concurrent appends on one conversation.
func NewConflict(msg string) *PilotError {
	return &PilotError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PilotError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PilotError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a PilotError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := err.(*PilotError); ok {
		return pErr.Code == code
	}
	return false
}

// CodeOf returns the error code of err, or ErrInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if pErr, ok := err.(*PilotError); ok {
		return pErr.Code
	}
	return ErrInternal
}

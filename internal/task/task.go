package task

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusCompleted
}

// Priority is the user-assigned importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task represents a single task record, always owned by exactly one user.
type Task struct {
	// ID is a ULID that uniquely identifies this task
	ID string

	// UserID is the owner; every store access is scoped by it
	UserID string

	// Content is the task text as the user phrased it
	Content string

	// ContentNorm is the normalized content (lowercased, trimmed, collapsed
	// spaces), used for case-insensitive reference matching
	ContentNorm string

	// Status is pending or completed
	Status Status

	// DueDate is an optional due date, stored as given (nullable)
	DueDate *string

	// Priority is low, medium, or high (default medium)
	Priority Priority

	// CreatedAt is the Unix timestamp when the task was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the task was last updated
	UpdatedAt int64

	// CompletedAt is the Unix timestamp when the task was completed (nullable)
	CompletedAt *int64
}

// Summary is a task's wire representation for list results and tool call
// payloads.
type Summary struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Status      Status   `json:"status"`
	DueDate     *string  `json:"due_date,omitempty"`
	Priority    Priority `json:"priority"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
	CompletedAt *int64   `json:"completed_at,omitempty"`
}

// ToSummary converts a Task to its wire representation. The owner id is
// deliberately omitted: callers already know whose tasks they asked for.
func (t *Task) ToSummary() Summary {
	return Summary{
		ID:          t.ID,
		Content:     t.Content,
		Status:      t.Status,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}

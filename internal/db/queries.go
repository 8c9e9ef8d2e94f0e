package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/convo"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/task"
)

// InsertTask stores a new task.
func InsertTask(ctx context.Context, db *sql.DB, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, content, content_norm, status,
			due_date, priority, created_at, updated_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Content, t.ContentNorm, t.Status,
		toNullString(t.DueDate), t.Priority, t.CreatedAt, t.UpdatedAt,
		toNullInt64(t.CompletedAt),
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetTaskByIDAndUser retrieves a task by id, scoped to its owner.
// A task belonging to another user is indistinguishable from a missing one.
func GetTaskByIDAndUser(ctx context.Context, db *sql.DB, id, userID string) (*task.Task, error) {
	query := `
		SELECT id, user_id, content, content_norm, status,
			due_date, priority, created_at, updated_at, completed_at
		FROM tasks
		WHERE id = ? AND user_id = ?
	`

	row := db.QueryRowContext(ctx, query, id, userID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewTaskNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return t, nil
}

// TaskFilter narrows ListTasksByUser results.
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterPending   TaskFilter = "pending"
	FilterCompleted TaskFilter = "completed"
	FilterOverdue   TaskFilter = "overdue"
)

// ValidTaskFilter reports whether f is a known filter.
func ValidTaskFilter(f TaskFilter) bool {
	switch f {
	case FilterAll, FilterPending, FilterCompleted, FilterOverdue:
		return true
	}
	return false
}

// taskSortColumns maps caller-facing sort keys to columns. Keys outside
// this map are rejected before query assembly, so no user input ever
// reaches the SQL text.
var taskSortColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"priority":   "CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END",
}

// ListTasksByUser retrieves tasks for a user with filtering, sorting, and a
// limit. Returns the slice plus the total count matching the filter
// (ignoring the limit).
func ListTasksByUser(ctx context.Context, db *sql.DB, userID string, filter TaskFilter, sortBy, sortOrder string, limit int) ([]*task.Task, int, error) {
	where := "user_id = ?"
	args := []any{userID}

	switch filter {
	case FilterPending:
		where += " AND status = 'pending'"
	case FilterCompleted:
		where += " AND status = 'completed'"
	case FilterOverdue:
		// Overdue = pending with a parseable due date in the past. Due
		// dates are stored as given; only ISO dates sort lexically, which
		// is what the comparison relies on.
		where += " AND status = 'pending' AND due_date IS NOT NULL AND due_date < ?"
		args = append(args, time.Now().Format("2006-01-02"))
	}

	orderCol, ok := taskSortColumns[sortBy]
	if !ok {
		orderCol = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, user_id, content, content_norm, status,
			due_date, priority, created_at, updated_at, completed_at
		FROM tasks
		WHERE ` + where + `
		ORDER BY ` + orderCol + ` ` + order + `, id ` + order + `
		LIMIT ?
	`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return tasks, total, nil
}

// UpdateTask persists mutable fields of an existing task.
// Does NOT change: id, user_id, created_at.
func UpdateTask(ctx context.Context, db *sql.DB, t *task.Task) error {
	query := `
		UPDATE tasks
		SET content = ?, content_norm = ?, status = ?, due_date = ?,
			priority = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := db.ExecContext(ctx, query,
		t.Content, t.ContentNorm, t.Status, toNullString(t.DueDate),
		t.Priority, t.UpdatedAt, toNullInt64(t.CompletedAt),
		t.ID, t.UserID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewTaskNotFound(t.ID)
	}

	return nil
}

// DeleteTask removes a task, scoped to its owner.
func DeleteTask(ctx context.Context, db *sql.DB, id, userID string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewTaskNotFound(id)
	}

	return nil
}

// GetConversation retrieves a conversation's owner. An unknown id is not an
// error: callers allocate a fresh conversation in that case.
func GetConversation(ctx context.Context, db *sql.DB, id string) (userID string, found bool, err error) {
	row := db.QueryRowContext(ctx, "SELECT user_id FROM conversations WHERE id = ?", id)
	if err := row.Scan(&userID); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, errors.NewInternal(err)
	}
	return userID, true, nil
}

// InsertConversation creates a conversation record.
func InsertConversation(ctx context.Context, db *sql.DB, id, userID string) error {
	now := time.Now().Unix()
	_, err := db.ExecContext(ctx,
		"INSERT INTO conversations (id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)",
		id, userID, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("conversation already exists: " + id)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// ReadTurns returns all turns of a conversation ordered by sequence number
// (createdAt order with insertion-order tie-breaking, by construction).
func ReadTurns(ctx context.Context, db *sql.DB, conversationID string) ([]convo.Turn, error) {
	query := `
		SELECT id, conversation_id, seq, role, content, tool_calls_json, created_at
		FROM turns
		WHERE conversation_id = ?
		ORDER BY seq ASC
	`

	rows, err := db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var turns []convo.Turn
	for rows.Next() {
		var t convo.Turn
		var toolCallsJSON sql.NullString
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Seq, &t.Role, &t.Content, &toolCallsJSON, &t.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		if toolCallsJSON.Valid && toolCallsJSON.String != "" {
			if err := json.Unmarshal([]byte(toolCallsJSON.String), &t.ToolCalls); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return turns, nil
}

// AppendTurns appends turns to a conversation in one transaction, assigning
// consecutive sequence numbers past the current maximum. The unique
// (conversation_id, seq) index turns a racing append into a CONFLICT error
// instead of interleaved ordering; retrying is the caller's decision.
func AppendTurns(ctx context.Context, db *sql.DB, conversationID string, turns []convo.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	var maxSeq sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		"SELECT MAX(seq) FROM turns WHERE conversation_id = ?", conversationID,
	).Scan(&maxSeq); err != nil {
		return errors.NewInternal(err)
	}

	next := maxSeq.Int64 + 1
	for i := range turns {
		t := &turns[i]
		t.Seq = next
		next++

		var toolCallsJSON sql.NullString
		if len(t.ToolCalls) > 0 {
			data, err := json.Marshal(t.ToolCalls)
			if err != nil {
				return errors.NewInternal(err)
			}
			toolCallsJSON = sql.NullString{String: string(data), Valid: true}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO turns (id, conversation_id, seq, role, content, tool_calls_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			t.ID, conversationID, t.Seq, t.Role, t.Content, toolCallsJSON, t.CreatedAt,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return errors.NewConflict("concurrent append on conversation " + conversationID)
			}
			return errors.NewInternal(err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?",
		time.Now().Unix(), conversationID,
	); err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("concurrent append on conversation " + conversationID)
		}
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint
// violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask scans a task row into a Task struct.
func scanTask(row scanner) (*task.Task, error) {
	var t task.Task
	var dueDate sql.NullString
	var completedAt sql.NullInt64

	err := row.Scan(
		&t.ID, &t.UserID, &t.Content, &t.ContentNorm, &t.Status,
		&dueDate, &t.Priority, &t.CreatedAt, &t.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Int64
	}

	return &t, nil
}

// toNullString converts *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// toNullInt64 converts *int64 to sql.NullInt64.
func toNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Valid: true, Int64: *i}
}

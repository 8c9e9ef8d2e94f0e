package agent

import (
	"fmt"
	"strings"

	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/intent"
	"github.com/taskpilot/taskpilot/internal/tools"
)

// Response formatting produces one of three reply shapes: a confirmation
// naming the concrete entity affected, a clarification question, or an
// apologetic error with a suggested alternative. It works only from
// structured outcomes; raw error text and internals never reach the user,
// and nothing is described as done unless a tool reported it done.

// Format renders the outcome of an executed (or aborted) request.
func Format(out *Outcome) string {
	switch {
	case out.Clar != nil:
		return FormatClarification(out.Clar)
	case out.Err != nil:
		return formatError(out.Err)
	default:
		return formatSuccess(out)
	}
}

func formatSuccess(out *Outcome) string {
	switch result := out.Result.(type) {
	case *tools.CreateOutput:
		return fmt.Sprintf("Added task: '%s'", result.Content)
	case *tools.ListOutput:
		return formatTaskList(result)
	case *tools.CompleteOutput:
		if result.AlreadyCompleted {
			return fmt.Sprintf("Task '%s' was already completed.", result.Content)
		}
		return fmt.Sprintf("Completed task: '%s'", result.Content)
	case *tools.DeleteOutput:
		return fmt.Sprintf("Deleted task: '%s'", result.Content)
	case *tools.UpdateOutput:
		return fmt.Sprintf("Updated task: '%s' (updated fields: %s)",
			result.Content, strings.Join(result.UpdatedFields, ", "))
	default:
		return "Done."
	}
}

// formatTaskList renders list results as a numbered markdown list, one
// "n. content [status]" line per task.
func formatTaskList(result *tools.ListOutput) string {
	if len(result.Tasks) == 0 {
		return "You don't have any tasks."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d %s:\n", result.TotalCount, pluralTasks(result.TotalCount))
	for i, t := range result.Tasks {
		fmt.Fprintf(&b, "%d. %s [%s]", i+1, t.Content, t.Status)
		if t.DueDate != nil {
			fmt.Fprintf(&b, " (due %s)", *t.DueDate)
		}
		b.WriteString("\n")
	}
	if len(result.Tasks) < result.TotalCount {
		fmt.Fprintf(&b, "... and %d more.\n", result.TotalCount-len(result.Tasks))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatClarification asks a direct question naming exactly what is missing
// or ambiguous, enumerating candidates when disambiguation failed.
func FormatClarification(c *Clarification) string {
	if len(c.Candidates) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "I found %d tasks matching '%s':\n", len(c.Candidates), c.Reference)
		for i, cand := range c.Candidates {
			fmt.Fprintf(&b, "%d. %s (id %s)\n", i+1, cand.Content, cand.ID)
		}
		b.WriteString("Which one did you mean?")
		return b.String()
	}

	for _, missing := range c.MissingParams {
		switch missing {
		case "content":
			return "What should the task say?"
		case "task_id":
			return "Which task do you mean? You can give its number or part of its text."
		case "updates":
			return "What would you like to change about that task? You can update its text, due date, priority, or status."
		}
	}

	return "I'm not sure what you'd like me to do. You can ask me to add, list, complete, update, or delete tasks."
}

// FormatConfirmPrompt asks the user to confirm before acting, used when the
// classifier was confident enough to name the action but not to run it.
func FormatConfirmPrompt(it intent.Intent) string {
	switch it.Type {
	case intent.CreateTask:
		if content := it.Param("content"); content != "" {
			return fmt.Sprintf("It sounds like you want to add a task: '%s'. Should I go ahead?", content)
		}
		return "It sounds like you want to add a task. What should it say?"
	case intent.ListTasks:
		return "Would you like me to show your tasks?"
	case intent.CompleteTask:
		return fmt.Sprintf("It sounds like you want to complete %s. Should I go ahead?", describeTarget(it))
	case intent.DeleteTask:
		return fmt.Sprintf("It sounds like you want to delete %s. Should I go ahead?", describeTarget(it))
	case intent.UpdateTask:
		return fmt.Sprintf("It sounds like you want to update %s. Should I go ahead?", describeTarget(it))
	default:
		return "I'm not sure what you'd like me to do. You can ask me to add, list, complete, update, or delete tasks."
	}
}

func describeTarget(it intent.Intent) string {
	if id := it.Param("task_id"); id != "" {
		return fmt.Sprintf("task %s", id)
	}
	if ref := it.Param("task_ref"); ref != "" {
		return fmt.Sprintf("the task matching '%s'", ref)
	}
	return "a task"
}

func formatError(err *errors.PilotError) string {
	switch err.Code {
	case errors.ErrTaskNotFound:
		return "I'm sorry, I couldn't find that task. Want me to list your tasks?"
	case errors.ErrInvalidInput:
		return "I had trouble understanding your request. Could you rephrase it?"
	case errors.ErrToolExecutionFailure:
		return "I'm sorry, I couldn't complete that action right now. Please try again in a moment."
	case errors.ErrConflict:
		return "I'm sorry, that conversation received another message at the same time. Please try again."
	default:
		return "I'm sorry, something went wrong on my end. Please try again."
	}
}

func pluralTasks(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}

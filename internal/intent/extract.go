package intent

import (
	"regexp"
	"strings"
)

// Parameter extraction is regex-driven and intent-specific. Extraction never
// invents values: a parameter is present only when the message contains it.

var (
	// Creation content: "add a task to buy milk", "create todo buy milk",
	// "remind me to call mom".
	createContentRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:add|create|make|schedule)\s+(?:a\s+)?(?:task|to-do|todo)\s+(?:to|for|about|that|is)\s+(.+)`),
		regexp.MustCompile(`(?i)(?:add|create|make|schedule)\s+(?:a\s+)?(?:task|to-do|todo)\s+(.+)`),
		regexp.MustCompile(`(?i)(?:remind\s+me\s+to|need\s+to|want\s+to|have\s+to)\s+(.+)`),
	}
	createLeadingActionRe = regexp.MustCompile(`(?i)^(?:please\s+)?(?:add|create|make|schedule|new)\s+(?:a\s+)?(?:task|to-do|todo)?\s*`)

	dueDateRe = regexp.MustCompile(`(?i)\b(?:by|before|on|until|due)\s+(\d{4}-\d{2}-\d{2}|\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?|\w+\s+\d{1,2}(?:,\s*\d{4})?)`)
	priorityRe = regexp.MustCompile(`(?i)\b(high|medium|low)\s+priority\b`)

	// Phrases stripped from extracted task content once captured as
	// structured parameters.
	dueDatePhraseRe  = regexp.MustCompile(`(?i)\s*(?:by|before|until|due)\s+(?:\d{4}-\d{2}-\d{2}|\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?|\w+\s+\d{1,2}(?:,\s*\d{4})?)\s*$`)
	priorityPhraseRe = regexp.MustCompile(`(?i)\s*(?:with\s+)?(?:high|medium|low)\s+priority\s*$`)

	// Target identification for complete/delete/update: an explicit number
	// ("task 2", "#2"), any bare number, or a quoted phrase.
	taskNumberRe = regexp.MustCompile(`(?i)(?:task|number|#)\s*(\d+)`)
	bareNumberRe = regexp.MustCompile(`\d+`)
	quotedRefRe  = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)

	// Content references: "delete the grocery task" -> "grocery".
	deleteRefRe   = regexp.MustCompile(`(?i)(?:delete|remove|cancel|erase|eliminate)\s+(?:the\s+|my\s+)?(.+?)(?:\s+task)?$`)
	completeRefRe = regexp.MustCompile(`(?i)(?:complete|finish|mark)\s+(?:the\s+|my\s+)?(.+?)(?:\s+task)?(?:\s+as\s+(?:done|complete|completed))?$`)
	updateRefRe   = regexp.MustCompile(`(?i)(?:update|change|modify|edit|adjust)\s+(?:the\s+|my\s+)?(.+?)\s+task\b`)

	// Update field phrases: "change priority to high", "set status to
	// completed", "change the content to buy oat milk".
	updateContentRe  = regexp.MustCompile(`(?i)(?:change|update|modify|edit|set)\s+(?:the\s+)?(?:content|text|description)\s+to\s+(.+?)(?:\s+and\s+|$)`)
	updatePriorityRe = regexp.MustCompile(`(?i)(?:priority|importance)\s+to\s+(high|medium|low)`)
	updateStatusRe   = regexp.MustCompile(`(?i)(?:status|state)\s+to\s+(pending|completed)`)
)

// extractParams pulls the parameters relevant to the given intent type out
// of the message. Keys follow the tool contract names: content, due_date,
// priority, status, task_id, task_ref, filter, sort_by, sort_order.
func extractParams(t Type, text string) map[string]string {
	switch t {
	case CreateTask:
		return extractCreate(text)
	case ListTasks:
		return extractList(text)
	case CompleteTask:
		return extractTarget(text, completeRefRe)
	case DeleteTask:
		return extractTarget(text, deleteRefRe)
	case UpdateTask:
		return extractUpdate(text)
	default:
		return map[string]string{}
	}
}

func extractCreate(text string) map[string]string {
	params := map[string]string{}

	var content string
	for _, re := range createContentRes {
		if m := re.FindStringSubmatch(text); m != nil {
			content = strings.TrimSpace(m[1])
			break
		}
	}
	if content == "" {
		content = strings.TrimSpace(createLeadingActionRe.ReplaceAllString(text, ""))
	}

	if m := dueDateRe.FindStringSubmatch(text); m != nil {
		params["due_date"] = strings.TrimSpace(m[1])
	}
	if m := priorityRe.FindStringSubmatch(text); m != nil {
		params["priority"] = strings.ToLower(m[1])
	}

	// Structured attributes are stripped from the content so the stored
	// task reads cleanly.
	content = priorityPhraseRe.ReplaceAllString(content, "")
	content = dueDatePhraseRe.ReplaceAllString(content, "")
	content = priorityPhraseRe.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)
	if content != "" {
		params["content"] = content
	}

	return params
}

func extractList(text string) map[string]string {
	params := map[string]string{}
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "pending") || strings.Contains(lower, "incomplete"):
		params["filter"] = "pending"
	case strings.Contains(lower, "completed") || strings.Contains(lower, "done"):
		params["filter"] = "completed"
	case strings.Contains(lower, "overdue"):
		params["filter"] = "overdue"
	case strings.Contains(lower, "all"):
		params["filter"] = "all"
	}

	if strings.Contains(lower, "oldest") {
		params["sort_order"] = "asc"
	} else if strings.Contains(lower, "newest") || strings.Contains(lower, "recent") {
		params["sort_order"] = "desc"
	}

	if strings.Contains(lower, "priority") {
		params["sort_by"] = "priority"
	} else if strings.Contains(lower, "due") || strings.Contains(lower, "date") {
		params["sort_by"] = "due_date"
	}

	return params
}

// extractTarget finds what task a complete/delete request points at: an
// explicit task number wins, then a quoted phrase, then the content
// reference pattern for the verb.
func extractTarget(text string, refRe *regexp.Regexp) map[string]string {
	params := map[string]string{}

	if id := extractTaskID(text); id != "" {
		params["task_id"] = id
		return params
	}

	if ref := extractQuotedRef(text); ref != "" {
		params["task_ref"] = ref
		return params
	}

	if m := refRe.FindStringSubmatch(text); m != nil {
		ref := strings.TrimSpace(m[1])
		if ref != "" && !isFillerRef(ref) {
			params["task_ref"] = ref
		}
	}

	return params
}

func extractUpdate(text string) map[string]string {
	params := map[string]string{}

	if id := extractTaskID(text); id != "" {
		params["task_id"] = id
	} else if ref := extractQuotedRef(text); ref != "" {
		params["task_ref"] = ref
	} else if m := updateRefRe.FindStringSubmatch(text); m != nil {
		ref := strings.TrimSpace(m[1])
		if ref != "" && !isFillerRef(ref) {
			params["task_ref"] = ref
		}
	}

	if m := updateContentRe.FindStringSubmatch(text); m != nil {
		params["content"] = strings.TrimSpace(m[1])
	}
	if m := updatePriorityRe.FindStringSubmatch(text); m != nil {
		params["priority"] = strings.ToLower(m[1])
	}
	if m := updateStatusRe.FindStringSubmatch(text); m != nil {
		params["status"] = strings.ToLower(m[1])
	}
	if m := dueDateRe.FindStringSubmatch(text); m != nil {
		params["due_date"] = strings.TrimSpace(m[1])
	}

	return params
}

func extractTaskID(text string) string {
	if m := taskNumberRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareNumberRe.FindString(text); m != "" {
		return m
	}
	return ""
}

func extractQuotedRef(text string) string {
	m := quotedRefRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[2])
}

// isFillerRef rejects captured phrases that carry no identifying content,
// like "it" in "delete it".
func isFillerRef(ref string) bool {
	switch strings.ToLower(ref) {
	case "it", "that", "this", "them", "one", "that one", "this one":
		return true
	}
	return false
}

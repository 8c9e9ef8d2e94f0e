package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taskpilot/taskpilot/internal/convo"
)

// keywordWeights assigns a signal strength to each keyword per intent.
// High-weight words are near-unambiguous verbs; low-weight words are common
// filler that only reinforces an intent when paired with a stronger signal.
var keywordWeights = map[Type]map[string]float64{
	CreateTask: {
		"add": 0.9, "create": 0.9, "make": 0.8, "remember": 0.8,
		"schedule": 0.8, "new": 0.7, "task": 0.5, "todo": 0.5,
	},
	ListTasks: {
		"show": 0.9, "list": 0.9, "view": 0.8, "display": 0.8,
		"see": 0.8, "get": 0.7, "my": 0.5, "tasks": 0.8, "todos": 0.8,
	},
	CompleteTask: {
		"complete": 0.9, "finish": 0.9, "done": 0.9,
		"mark": 0.7, "as": 0.5, "check": 0.7,
	},
	DeleteTask: {
		"delete": 0.95, "remove": 0.9, "cancel": 0.85,
		"erase": 0.8, "eliminate": 0.8,
	},
	UpdateTask: {
		"update": 0.9, "change": 0.9, "modify": 0.9,
		"edit": 0.9, "adjust": 0.8,
	},
}

// strongIndicators are multi-word phrases that make an intent near-certain.
var strongIndicators = map[Type][]string{
	CreateTask:   {"please add", "can you create", "i need to add"},
	ListTasks:    {"show me", "list all", "what are my"},
	CompleteTask: {"please complete", "mark as done", "finish task"},
	DeleteTask:   {"please delete", "remove task", "get rid of"},
	UpdateTask:   {"update task", "change task", "modify task"},
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// Classify scores the message against every intent type and returns the
// leading intent with its confidence and extracted parameters. Pure function
// of text and context: identical input yields an identical Intent.
//
// A message that matches no keyword at all falls back to the conversation
// context: a follow-up naming a concrete target ("number 2") inherits the
// previous request's intent at confirm-level confidence. A tie for the top
// score, or a no-match message the context cannot resolve, yields Ambiguous
// with confidence 0 and the per-intent scores preserved in the parameters.
// Threshold policy (act / confirm / clarify) belongs to the caller, not
// here.
func Classify(text string, ctx *convo.Context) Intent {
	lower := strings.ToLower(text)
	words := tokenize(lower)

	scores := make(map[Type]float64, len(allTypes))
	matched := make(map[Type]bool, len(allTypes))

	for _, t := range allTypes {
		score, hit := scoreIntent(t, lower, words)
		scores[t] = score
		matched[t] = hit
	}

	best := Ambiguous
	bestScore := 0.0
	tied := false
	for _, t := range allTypes {
		if !matched[t] {
			continue
		}
		switch {
		case scores[t] > bestScore:
			best, bestScore, tied = t, scores[t], false
		case scores[t] == bestScore && bestScore > 0:
			tied = true
		}
	}

	if best == Ambiguous {
		// No keyword matched: the message may be a follow-up the
		// conversation context can resolve.
		if it, ok := resolveWithContext(text, ctx); ok {
			return it
		}
	}
	if best == Ambiguous || tied {
		return Intent{
			Type:       Ambiguous,
			Confidence: 0,
			Parameters: ambiguousParams(text, scores),
		}
	}

	return Intent{
		Type:       best,
		Confidence: bestScore,
		Parameters: extractParams(best, text),
	}
}

// scoreIntent computes the confidence that the message carries intent t.
// The strongest matched keyword sets the base; further matches add a small
// reinforcement; identifier and attribute signals, strong phrases, and a
// short-input penalty adjust it. The result is clipped to [0,1]. The second
// return reports whether any keyword matched at all.
func scoreIntent(t Type, lower string, words map[string]bool) (float64, bool) {
	weights := keywordWeights[t]

	var top, sum float64
	for w := range words {
		wt, ok := weights[w]
		if !ok {
			continue
		}
		sum += wt
		if wt > top {
			top = wt
		}
	}
	if top == 0 {
		return 0, false
	}

	// Reinforcement from keywords beyond the strongest one.
	confidence := top + 0.1*(sum-top)

	// An explicit target or attribute is a signal the request is concrete.
	params := extractParams(t, lower)
	switch t {
	case CompleteTask, DeleteTask, UpdateTask:
		if params["task_id"] != "" || params["task_ref"] != "" {
			confidence += 0.05
		}
	case CreateTask:
		if params["due_date"] != "" || params["priority"] != "" {
			confidence += 0.05
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	for _, phrase := range strongIndicators[t] {
		if strings.Contains(lower, phrase) {
			confidence *= 1.3
			if confidence > 1.0 {
				confidence = 1.0
			}
			break
		}
	}

	// Very short messages are easy to misread.
	if wordCount(lower) < 3 && confidence > 0.5 {
		confidence *= 0.8
	}

	return confidence, true
}

// resolveWithContext handles follow-up messages that carry no intent
// keywords of their own, like "number 2" after "delete the report task".
// The previous request's intent supplies the verb when it targets a task
// and the new message names a concrete target. The result lands at
// confirm-level confidence so the caller asks before acting on an
// inherited intent.
func resolveWithContext(text string, ctx *convo.Context) (Intent, bool) {
	if ctx == nil || ctx.LastIntent == nil {
		return Intent{}, false
	}

	prev := Type(ctx.LastIntent.Type)
	switch prev {
	case CompleteTask, DeleteTask, UpdateTask:
	default:
		return Intent{}, false
	}

	params := map[string]string{}
	if id := extractTaskID(text); id != "" {
		params["task_id"] = id
	} else if ref := extractQuotedRef(text); ref != "" {
		params["task_ref"] = ref
	} else {
		return Intent{}, false
	}

	return Intent{Type: prev, Confidence: 0.5, Parameters: params}, true
}

func tokenize(lower string) map[string]bool {
	cleaned := nonWordRe.ReplaceAllString(lower, " ")
	words := make(map[string]bool)
	for _, w := range strings.Fields(cleaned) {
		words[w] = true
	}
	return words
}

func wordCount(s string) int {
	return len(strings.Fields(strings.TrimSpace(s)))
}

func ambiguousParams(text string, scores map[Type]float64) map[string]string {
	params := map[string]string{"input": text}
	for _, t := range allTypes {
		params["score_"+string(t)] = fmt.Sprintf("%.2f", scores[t])
	}
	return params
}

package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/taskpilot/taskpilot/internal/convo"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/task"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "chat", "tasks"
}

// TurnView is one conversation turn prepared for rendering. Assistant
// replies are markdown and arrive pre-rendered; user messages stay plain
// text.
type TurnView struct {
	Role         convo.Role
	Content      string
	RenderedHTML template.HTML
	ToolCalls    []convo.ToolCall
	Time         string
}

// ChatPageData is the template data for the chat page.
type ChatPageData struct {
	PageData
	UserID         string
	ConversationID string
	Turns          []TurnView
}

// TasksPageData is the template data for the tasks page.
type TasksPageData struct {
	PageData
	UserID     string
	Filter     string
	Items      []task.Summary
	TotalCount int
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"chat":  "chat.html",
		"tasks": "tasks.html",
		"error": "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation: JSON for
// clients that ask for it, a full error page otherwise.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	pErr, ok := err.(*errors.PilotError)
	if !ok {
		pErr = errors.NewInternal(err)
	}

	status := pErr.Status
	message := pErr.Message

	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		renderJSONError(w, pErr)
		return
	}

	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderJSONError writes a structured error object. Internal errors keep
// their details out of the response.
func renderJSONError(w http.ResponseWriter, pErr *errors.PilotError) {
	body := map[string]any{
		"code":    string(pErr.Code),
		"message": pErr.Message,
		"status":  pErr.Status,
	}
	if pErr.Code != errors.ErrInternal && len(pErr.Details) > 0 {
		body["details"] = pErr.Details
	}
	renderJSON(w, pErr.Status, map[string]any{"error": body})
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// turnViews prepares conversation turns for the chat template. Assistant
// turns are rendered as markdown, everything else is left for the template
// to escape.
func turnViews(turns []convo.Turn) []TurnView {
	views := make([]TurnView, 0, len(turns))
	for _, t := range turns {
		v := TurnView{
			Role:      t.Role,
			Content:   t.Content,
			ToolCalls: t.ToolCalls,
			Time:      formatTime(t.CreatedAt),
		}
		if t.Role == convo.RoleAssistant {
			v.RenderedHTML = renderMarkdown(t.Content)
		}
		views = append(views, v)
	}
	return views
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

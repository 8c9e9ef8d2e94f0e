package web

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/taskpilot/taskpilot/internal/agent"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/db"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/tools"
)

// defaultUserID identifies the local user when no X-User-ID header or
// user_id parameter is given. Identity verification happens upstream of
// this server; the id is trusted as-is.
const defaultUserID = "local"

// maxChatBodyBytes caps the JSON body accepted by the chat API.
const maxChatBodyBytes = 64 * 1024

// Handlers contains HTTP route handlers for the web UI and chat API.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	orch     *agent.Orchestrator
	renderer *Renderer
}

// chatRequest is the JSON body of POST /api/chat.
type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// HandleChatAPI handles POST /api/chat — one full conversational turn,
// returning the conversation id, the reply, and every tool call made.
func (h *Handlers) HandleChatAPI(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		renderJSONError(w, errors.NewInvalidInput("X-User-ID header is required"))
		return
	}

	var req chatRequest
	body := io.LimitReader(r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		renderJSONError(w, errors.NewInvalidInput("request body must be valid JSON"))
		return
	}

	out, err := h.orch.Chat(r.Context(), agent.ChatInput{
		UserID:         userID,
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		pErr, ok := err.(*errors.PilotError)
		if !ok {
			pErr = errors.NewInternal(err)
		}
		renderJSONError(w, pErr)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleChatPage handles GET /chat — render a conversation's transcript
// with a message form. An unknown or foreign conversation id renders an
// empty page rather than an error; sending a message then starts fresh.
func (h *Handlers) HandleChatPage(w http.ResponseWriter, r *http.Request) {
	userID := pageUserID(r)
	conversationID := r.URL.Query().Get("conversation_id")

	data := ChatPageData{
		PageData: PageData{
			Title:   "Chat",
			Version: h.renderer.version,
			Nav:     "chat",
		},
		UserID:         userID,
		ConversationID: conversationID,
	}

	if conversationID != "" {
		owner, found, err := db.GetConversation(r.Context(), h.db, conversationID)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewConversationLoadFailure(conversationID, err))
			return
		}
		if !found || owner != userID {
			data.ConversationID = ""
		} else {
			turns, err := db.ReadTurns(r.Context(), h.db, conversationID)
			if err != nil {
				h.renderer.renderError(w, r, errors.NewConversationLoadFailure(conversationID, err))
				return
			}
			data.Turns = turnViews(turns)
		}
	}

	h.renderer.renderPage(w, "chat", data)
}

// HandleChatSend handles POST /chat — form submission from the chat page.
// Runs the turn, then redirects back to the transcript so a refresh never
// resubmits the message.
func (h *Handlers) HandleChatSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidInput("invalid form data"))
		return
	}

	userID := pageUserID(r)
	message := r.FormValue("message")

	out, err := h.orch.Chat(r.Context(), agent.ChatInput{
		UserID:         userID,
		Message:        message,
		ConversationID: r.FormValue("conversation_id"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	q := url.Values{"conversation_id": {out.ConversationID}}
	if userID != defaultUserID {
		q.Set("user_id", userID)
	}
	http.Redirect(w, r, "/chat?"+q.Encode(), http.StatusSeeOther)
}

// HandleTasks handles GET /tasks — list the user's tasks directly, without
// going through the agent.
func (h *Handlers) HandleTasks(w http.ResponseWriter, r *http.Request) {
	userID := pageUserID(r)
	filter := r.URL.Query().Get("filter")

	result, err := tools.List(r.Context(), h.db, h.cfg, tools.ListInput{
		UserID:    userID,
		Filter:    filter,
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
		Limit:     parseIntParam(r, "limit", h.cfg.ListDefaultLimit),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if filter == "" {
		filter = "all"
	}

	h.renderer.renderPage(w, "tasks", TasksPageData{
		PageData: PageData{
			Title:   "Tasks",
			Version: h.renderer.version,
			Nav:     "tasks",
		},
		UserID:     userID,
		Filter:     filter,
		Items:      result.Tasks,
		TotalCount: result.TotalCount,
	})
}

// pageUserID resolves the acting user for UI pages: X-User-ID header first,
// then a user_id query/form parameter, then the local default.
func pageUserID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	if id := r.FormValue("user_id"); id != "" {
		return id
	}
	return defaultUserID
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

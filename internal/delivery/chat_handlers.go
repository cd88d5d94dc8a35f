package delivery

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/ai"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/history"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/metrics"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// chatRequest is the body both chat endpoints share. conversation_history is
// still accepted from the old stateless contract, but the stored transcript
// is what the pipeline sees.
type chatRequest struct {
	SessionID           string          `json:"session_id"`
	Message             string          `json:"message"`
	ConversationHistory json.RawMessage `json:"conversation_history"`
}

type ChatHandler struct {
	ai      ai.Service
	history history.Service
	log     *logger.ZapLogger
}

func NewChatHandler(aiSvc ai.Service, historySvc history.Service, log *logger.ZapLogger) *ChatHandler {
	return &ChatHandler{
		ai:      aiSvc,
		history: historySvc,
		log:     log,
	}
}

// Stream answers one turn over SSE: agent, content, summary, done. Failures
// surface as a single error event.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SessionID != "" && req.SessionID != id.SessionID {
		http.Error(w, "session mismatch", http.StatusForbidden)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	metrics.StreamOpened()
	defer metrics.StreamClosed()

	send := func(ev ai.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	_, err := h.ai.RespondStream(r.Context(), id.UserID, id.SessionID, req.Message, nil, send)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "stream turn failed", Error: err})
		send(ai.Event{Error: "assistant failed to respond"})
	}
}

// Chat is the plain request/response variant of Stream.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SessionID != "" && req.SessionID != id.SessionID {
		http.Error(w, "session mismatch", http.StatusForbidden)
		return
	}

	resp, err := h.ai.Respond(r.Context(), id.UserID, id.SessionID, req.Message, nil)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "chat turn failed", Error: err})
		http.Error(w, "assistant failed to respond", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	sessionID := chi.URLParam(r, "session_id")
	if sessionID != id.SessionID {
		http.Error(w, "session mismatch", http.StatusForbidden)
		return
	}

	limit := queryLimit(r, defaultHistoryLimit, maxHistoryLimit)
	msgs, err := h.history.Transcript(r.Context(), sessionID, limit)
	if err != nil {
		http.Error(w, "failed to load history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

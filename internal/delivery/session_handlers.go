package delivery

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/sessions"
)

type SessionHandler struct {
	sessions sessions.Service
}

func NewSessionHandler(svc sessions.Service) *SessionHandler {
	return &SessionHandler{sessions: svc}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	sess, token, err := h.sessions.Start(r.Context(), req.Name)
	if err != nil {
		http.Error(w, "failed to start session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":    sess.UserID,
		"session_id": sess.ID,
		"token":      token,
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	sessionID := chi.URLParam(r, "session_id")
	if sessionID != id.SessionID {
		http.Error(w, "session mismatch", http.StatusForbidden)
		return
	}

	sess, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	sessionID := chi.URLParam(r, "session_id")
	if sessionID != id.SessionID {
		http.Error(w, "session mismatch", http.StatusForbidden)
		return
	}

	if err := h.sessions.End(r.Context(), sessionID); err != nil {
		http.Error(w, "failed to end session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

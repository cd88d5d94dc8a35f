package delivery

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/avatar"
)

type AvatarHandler struct {
	avatars avatar.Service
}

func NewAvatarHandler(svc avatar.Service) *AvatarHandler {
	return &AvatarHandler{avatars: svc}
}

// CreateSession issues an Anam session token for the browser SDK. Without an
// API key the provider returns a demo session and the client renders a
// placeholder instead of a live avatar.
func (h *AvatarHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PersonaName  string `json:"persona_name"`
		SystemPrompt string `json:"system_prompt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := h.avatars.CreateSession(r.Context(), req.PersonaName, req.SystemPrompt)
	if err != nil {
		http.Error(w, "failed to create avatar session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *AvatarHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	avatarSessionID := chi.URLParam(r, "avatar_session_id")

	if err := h.avatars.EndSession(r.Context(), avatarSessionID); err != nil {
		http.Error(w, "failed to end avatar session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package delivery

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/agents"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/history"
)

type AgentHandler struct {
	registry *agents.Registry
	history  history.Service
}

func NewAgentHandler(registry *agents.Registry, hist history.Service) *AgentHandler {
	return &AgentHandler{registry: registry, history: hist}
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agents": h.registry.List()})
}

// Last reports which agent answered most recently in this session, so the
// client can preselect it in the picker. Empty string before the first turn.
func (h *AgentHandler) Last(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	agent, err := h.history.LastAgent(r.Context(), id.SessionID)
	if err != nil {
		http.Error(w, "failed to load last agent: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agent": agent})
}

func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Editable() {
		http.Error(w, "registry is read-only", http.StatusConflict)
		return
	}

	domain := chi.URLParam(r, "domain")
	if _, ok := h.registry.Lookup(domain); !ok {
		http.Error(w, "unknown agent", http.StatusNotFound)
		return
	}

	var upd agents.AgentUpdate
	if err := decodeJSON(r, &upd); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	agent, err := h.registry.Update(domain, upd)
	if err != nil {
		http.Error(w, "failed to update agent: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

package delivery

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/memory"
)

const (
	defaultMemoryLimit = 20
	maxMemoryLimit     = 100
)

type MemoryHandler struct {
	memories memory.Service
}

func NewMemoryHandler(svc memory.Service) *MemoryHandler {
	return &MemoryHandler{memories: svc}
}

// List returns the caller's memories, ranked by the query when one is given.
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	limit := queryLimit(r, defaultMemoryLimit, maxMemoryLimit)
	query := r.URL.Query().Get("query")

	ms, err := h.memories.Recall(r.Context(), id.UserID, query, limit)
	if err != nil {
		http.Error(w, "failed to load memories: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memories": ms})
}

func (h *MemoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req struct {
		Content  string            `json:"content"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "missing content", http.StatusBadRequest)
		return
	}

	m, err := h.memories.Add(r.Context(), id.UserID, req.Content, req.Metadata)
	if err != nil {
		http.Error(w, "failed to save memory: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	memoryID := chi.URLParam(r, "memory_id")

	err := h.memories.Delete(r.Context(), id.UserID, memoryID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "memory not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to delete memory: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

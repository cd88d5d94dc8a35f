package delivery

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/rag"
)

const (
	defaultChunkLimit   = 5
	maxChunkLimit       = 20
	defaultDocListLimit = 50
	maxDocListLimit     = 200
)

type DocumentHandler struct {
	docs rag.Service
}

func NewDocumentHandler(svc rag.Service) *DocumentHandler {
	return &DocumentHandler{docs: svc}
}

func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string            `json:"title"`
		Text     string            `json:"text"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Text == "" {
		http.Error(w, "missing title or text", http.StatusBadRequest)
		return
	}

	doc, err := h.docs.Ingest(r.Context(), req.Title, req.Text, req.Metadata)
	if err != nil {
		http.Error(w, "failed to ingest document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"document_id": doc.ID,
		"chunks":      doc.Chunks,
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, defaultDocListLimit, maxDocListLimit)

	docs, err := h.docs.ListDocuments(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Search runs full-text retrieval over the ingested chunks without asking the model.
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	limit := queryInt(r, "k", defaultChunkLimit, maxChunkLimit)

	chunks, err := h.docs.Query(r.Context(), query, limit)
	if err != nil {
		http.Error(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks})
}

func (h *DocumentHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "missing question", http.StatusBadRequest)
		return
	}

	answer, chunks, err := h.docs.Answer(r.Context(), req.Question)
	if err != nil {
		http.Error(w, "failed to answer: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answer": answer, "chunks": chunks})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")

	err := h.docs.DeleteDocument(r.Context(), documentID)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

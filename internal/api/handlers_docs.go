package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleDeleteDocument removes a document and its chunks from the downstream
// index.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	idx := s.orchestrator.IndexClient()
	if idx == nil {
		jsonError(w, "no downstream index configured", http.StatusServiceUnavailable)
		return
	}

	docID := chi.URLParam(r, "docID")
	if err := idx.DeleteDocument(r.Context(), docID); err != nil {
		jsonError(w, "delete failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":  docID,
		"deleted": true,
	})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"docqa/internal/index"
	"docqa/internal/service"
)

type chatRequest struct {
	Message string `json:"message"`
	TopK    *int   `json:"top_k,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	ask := service.AskRequest{Message: req.Message}
	if req.TopK != nil {
		if *req.TopK < 0 {
			jsonError(w, "top_k must not be negative", http.StatusBadRequest)
			return
		}
		ask.TopK = *req.TopK
	}

	resp, err := s.asker.Ask(r.Context(), ask)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrGeneration):
			s.log.Error("generation failed", "error", err)
			jsonError(w, err.Error(), http.StatusBadGateway)
		default:
			s.log.Error("ask failed", "error", err)
			jsonError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	idx := s.indexes.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": ServiceName,
		"chunks":  idx.Len(),
		"sources": len(idx.Sources()),
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources := s.indexes.Current().Sources()
	if sources == nil {
		sources = []index.SourceStat{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

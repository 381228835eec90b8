// ABOUTME: HTTP handlers for health, stats, ask, and the frontend index
// ABOUTME: Errors are returned as {"detail": "..."} JSON bodies
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/harper/ragveda/internal/core"
	"github.com/harper/ragveda/internal/models"
)

const (
	detailNotReady      = "RAG engine not ready"
	detailAskNotReady   = "RAG engine not ready. Please ensure gita.txt is in the data directory."
	detailFrontendBuild = "Frontend build not found. Run 'npm run build' in the frontend folder."
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Health())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if errors.Is(err, core.ErrNotReady) {
		writeError(w, http.StatusServiceUnavailable, detailNotReady)
		return
	}
	if err != nil {
		log.Printf("Error reading stats: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading stats: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var q models.Question
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	answer, err := s.engine.Ask(r.Context(), q.Question, q.ContextLimit)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, answer)
	case errors.Is(err, core.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, detailAskNotReady)
	case errors.Is(err, core.ErrEmptyQuestion), errors.Is(err, core.ErrInvalidContextLimit):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Error processing question: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing question: %v", err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if !s.frontendReady {
		writeError(w, http.StatusServiceUnavailable, detailFrontendBuild)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.opts.FrontendDir, "index.html"))
}

package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/quizrally-go/internal/infra/buildinfo"
)

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": buildinfo.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. The server is ready while the storage engine
// accepts work.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Status(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

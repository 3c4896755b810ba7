package handler

import "net/http"

// Ranking handles GET /api/ranking. The optional limit query parameter
// caps the number of entries; 0 returns all.
func (h *Handler) Ranking(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	entries, err := h.svc.Ranking(r.Context(), limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, RankingResponse{Entries: entries})
}

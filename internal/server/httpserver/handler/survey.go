package handler

import "net/http"

// SubmitSurvey handles POST /api/survey/submit.
func (h *Handler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req SurveyRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	res, err := h.svc.SubmitSurvey(r.Context(), u.ID, req.Feedback)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusCreated, res)
}

// SurveyStatus handles GET /api/survey/status and
// GET /api/survey/status/{userID}.
func (h *Handler) SurveyStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := statusTarget(w, r)
	if !ok {
		return
	}
	st, err := h.svc.SurveyStatus(r.Context(), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, st)
}

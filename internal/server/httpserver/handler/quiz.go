package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
)

// currentUser returns the user set by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, r, domain.ErrUnauthenticated)
	}
	return u, ok
}

// Questions handles GET /api/quiz/questions.
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.svc.ListQuestions(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, qs)
}

func (h *Handler) saveAnswer(w http.ResponseWriter, r *http.Request) (*domain.AnswerResult, *AnswerRequest, bool) {
	u, ok := currentUser(w, r)
	if !ok {
		return nil, nil, false
	}
	var req AnswerRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return nil, nil, false
	}
	res, err := h.svc.SaveAnswer(r.Context(), u.ID, req.QuestionNumber, req.Answer)
	if err != nil {
		WriteError(w, r, err)
		return nil, nil, false
	}
	return res, &req, true
}

// Answer handles POST /api/quiz/answer. The response includes progress.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.saveAnswer(w, r)
	if !ok {
		return
	}
	WriteJSON(w, r, http.StatusOK, res)
}

// SaveAnswer handles POST /api/quiz/save-answer.
func (h *Handler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	res, req, ok := h.saveAnswer(w, r)
	if !ok {
		return
	}
	WriteJSON(w, r, http.StatusOK, SavedAnswerResponse{
		QuestionNumber: req.QuestionNumber,
		Answer:         domain.NormalizeChoice(req.Answer),
		Correct:        res.Correct,
		CorrectAnswer:  res.CorrectAnswer,
		Explanation:    res.Explanation,
	})
}

// Answers handles GET /api/quiz/answers.
func (h *Handler) Answers(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	answers, err := h.svc.UserAnswers(r.Context(), u.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, AnswersResponse{Answers: answers, Total: len(answers)})
}

// Submit handles POST /api/quiz/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	res, err := h.svc.CompleteQuiz(r.Context(), u.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, res)
}

// Status handles GET /api/quiz/status and GET /api/quiz/status/{userID}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := statusTarget(w, r)
	if !ok {
		return
	}
	st, err := h.svc.QuizStatus(r.Context(), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, st)
}

// statusTarget resolves the user a status request is about: the caller,
// or the {userID} path parameter. Only administrators may read another
// user's status.
func statusTarget(w http.ResponseWriter, r *http.Request) (int, bool) {
	u, ok := currentUser(w, r)
	if !ok {
		return 0, false
	}
	param := chi.URLParam(r, "userID")
	if param == "" {
		return u.ID, true
	}
	id, err := parseID(param)
	if err != nil {
		WriteError(w, r, err)
		return 0, false
	}
	if id != u.ID {
		if err := service.RequireAdmin(u); err != nil {
			WriteError(w, r, err)
			return 0, false
		}
	}
	return id, true
}

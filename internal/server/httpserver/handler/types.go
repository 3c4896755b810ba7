package handler

import (
	"time"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/infra/buildinfo"
	"github.com/yndnr/quizrally-go/internal/storage/snapshot"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics and CSV exports).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// AnswerRequest is the request body for POST /api/quiz/answer and
// POST /api/quiz/save-answer.
type AnswerRequest struct {
	QuestionNumber int    `json:"questionNumber"`
	Answer         string `json:"answer"`
}

// SavedAnswerResponse is the response body for POST /api/quiz/save-answer.
type SavedAnswerResponse struct {
	QuestionNumber int    `json:"questionNumber"`
	Answer         string `json:"answer"`
	Correct        bool   `json:"correct"`
	CorrectAnswer  string `json:"correctAnswer"`
	Explanation    string `json:"explanation"`
}

// AnswersResponse is the response body for GET /api/quiz/answers.
type AnswersResponse struct {
	Answers []domain.Answer `json:"answers"`
	Total   int             `json:"total"`
}

// SurveyRequest is the request body for POST /api/survey/submit.
type SurveyRequest struct {
	Feedback string `json:"feedback"`
}

// RankingResponse is the response body for GET /api/ranking.
type RankingResponse struct {
	Entries []domain.RankingEntry `json:"entries"`
}

// UsersResponse is the response body for GET /api/admin/users.
type UsersResponse struct {
	Users []domain.UserView `json:"users"`
}

// StatusResponse is the response body for GET /api/admin/status.
type StatusResponse struct {
	Build buildinfo.Info `json:"build"`
	*service.SystemStatus
}

// FlushResponse is the response body for POST /api/admin/flush.
type FlushResponse struct {
	*snapshot.Info
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/telemetry/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// Handler serves the quiz API.
type Handler struct {
	svc    *service.QuizService
	logger *slog.Logger
}

// New creates a new Handler.
func New(svc *service.QuizService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// WriteJSON writes data in the success envelope.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

// WriteError writes err in the error envelope. Errors that are not domain
// errors are logged and reported as internal errors.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		logger.L(r.Context()).Error("internal error", "error", err)
		de = domain.ErrInternalServer
	}
	status := domain.HTTPStatus(de)
	if status >= http.StatusInternalServerError && de.Cause != nil {
		logger.L(r.Context()).Error("request failed", "code", de.Code, "error", de.Cause)
	}

	message := de.Message
	var details any
	if de.Details != "" {
		details = de.Details
	}

	requestID := logger.RequestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", de.Code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(NewErrorResponse(requestID, de.Code, message, details))
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrBadRequest.WithDetails("request body is required")
		}
		return domain.ErrBadRequest.WithDetails("invalid request body").WithCause(err)
	}
	return nil
}

// parseID parses a positive integer path parameter.
func parseID(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidArgument.WithDetails("invalid id")
	}
	return n, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, domain.ErrInvalidArgument.WithDetails(name + " must be a non-negative integer")
	}
	return n, nil
}

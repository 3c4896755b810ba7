package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes follow QR-<FAMILY>-<NNNN>; the first three digits of NNNN are the HTTP status.
type DomainError struct {
	Code    string // Error code (e.g., "QR-USER-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true // Only check if it's a DomainError
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("QR-ARG-4000", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("QR-ARG-4001", "missing required argument")

	// ErrInvalidChoice indicates an answer outside A-D.
	ErrInvalidChoice = NewDomainError("QR-ARG-4002", "answer must be one of A, B, C, D")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthenticated indicates no valid login session was presented.
	ErrUnauthenticated = NewDomainError("QR-AUTH-4010", "login required")

	// ErrInvalidCredentials indicates the nickname/password pair did not match.
	ErrInvalidCredentials = NewDomainError("QR-AUTH-4011", "invalid nickname or password")

	// ErrSessionExpired indicates the login session has expired.
	ErrSessionExpired = NewDomainError("QR-AUTH-4012", "session expired")

	// ErrAdminRequired indicates the caller is not an administrator.
	ErrAdminRequired = NewDomainError("QR-AUTH-4030", "admin role required")
)

// ============================================================================
// User Errors (USER)
// ============================================================================

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = NewDomainError("QR-USER-4040", "user not found")

	// ErrNicknameTaken indicates the nickname is already registered.
	ErrNicknameTaken = NewDomainError("QR-USER-4090", "nickname already in use")

	// ErrRegistrationDisabled indicates self-registration is turned off.
	ErrRegistrationDisabled = NewDomainError("QR-USER-4030", "registration is disabled")
)

// ============================================================================
// Quiz Errors (QUIZ)
// ============================================================================

var (
	// ErrQuestionNotFound indicates no question carries the given number.
	ErrQuestionNotFound = NewDomainError("QR-QUIZ-4040", "question not found")

	// ErrQuestionNumberTaken indicates a question with that number exists.
	ErrQuestionNumberTaken = NewDomainError("QR-QUIZ-4090", "question number already in use")

	// ErrQuizIncomplete indicates completion was requested with unanswered questions.
	ErrQuizIncomplete = NewDomainError("QR-QUIZ-4091", "not all questions have been answered")

	// ErrNoQuestions indicates the question set is empty.
	ErrNoQuestions = NewDomainError("QR-QUIZ-4092", "no questions configured")
)

// ============================================================================
// Survey Errors (SURV)
// ============================================================================

var (
	// ErrSurveyAlreadySubmitted indicates the user already answered the survey.
	ErrSurveyAlreadySubmitted = NewDomainError("QR-SURV-4090", "survey already submitted")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("QR-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("QR-SYS-5001", "storage error")

	// ErrServiceUnavailable indicates the service is shutting down or not ready.
	ErrServiceUnavailable = NewDomainError("QR-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("QR-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("QR-SYS-4290", "too many requests")

	// ErrNotFound indicates an unknown route or resource.
	ErrNotFound = NewDomainError("QR-SYS-4040", "not found")
)

// HTTPStatus derives the HTTP status from the code suffix (QR-USER-4090 -> 409).
// Unknown or malformed codes map to 500.
func HTTPStatus(err error) int {
	code := GetErrorCode(err)
	if len(code) < 4 {
		return 500
	}
	n := 0
	for _, c := range code[len(code)-4 : len(code)-1] {
		if c < '0' || c > '9' {
			return 500
		}
		n = n*10 + int(c-'0')
	}
	if n < 400 || n > 599 {
		return 500
	}
	return n
}

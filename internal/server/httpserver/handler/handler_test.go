package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/telemetry/logger"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestWriteJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	WriteJSON(rec, req, http.StatusCreated, map[string]int{"id": 4})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	resp := decodeResponse(t, rec)
	if resp.Code != "OK" || resp.RequestID != "req-1" || resp.Timestamp == 0 {
		t.Errorf("envelope = %+v", resp)
	}
	if data, ok := resp.Data.(map[string]any); !ok || data["id"] != float64(4) {
		t.Errorf("data = %#v", resp.Data)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails any
	}{
		{"not found", domain.ErrUserNotFound, http.StatusNotFound, "QR-USER-4040", nil},
		{"conflict with details", domain.ErrQuizIncomplete.WithDetails("(2/10)"), http.StatusConflict, "QR-QUIZ-4091", "(2/10)"},
		{"wrapped", errors.Join(errors.New("ctx"), domain.ErrSessionExpired), http.StatusUnauthorized, "QR-AUTH-4012", nil},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, "QR-SYS-5000", nil},
		{"unavailable", domain.ErrServiceUnavailable, http.StatusServiceUnavailable, "QR-SYS-5030", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), logger.Discard()))
			rec := httptest.NewRecorder()

			WriteError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("X-Error-Code"); got != tt.wantCode {
				t.Errorf("X-Error-Code = %q, want %q", got, tt.wantCode)
			}
			resp := decodeResponse(t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Details != tt.wantDetails {
				t.Errorf("details = %v, want %v", resp.Details, tt.wantDetails)
			}
			if strings.Contains(rec.Body.String(), "disk on fire") {
				t.Error("internal error text leaked to the client")
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer qrs_abc", "qrs_abc"},
		{"bearer  qrs_abc ", "qrs_abc"},
		{"Basic dXNlcg==", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	var dst LoginRequest

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nickname":"test","password":"x"}`))
	if err := decode(req, &dst); err != nil || dst.Nickname != "test" {
		t.Errorf("decode() = %v, dst = %+v", err, dst)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := decode(req, &dst); !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("empty body error = %v, want ErrBadRequest", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	if err := decode(req, &dst); !errors.Is(err, domain.ErrBadRequest) {
		t.Errorf("invalid body error = %v, want ErrBadRequest", err)
	}
}

func TestParseID(t *testing.T) {
	for _, s := range []string{"0", "-1", "abc", ""} {
		if _, err := parseID(s); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("parseID(%q) error = %v, want ErrInvalidArgument", s, err)
		}
	}
	if n, err := parseID("12"); err != nil || n != 12 {
		t.Errorf("parseID(12) = %d, %v", n, err)
	}
}

func TestUserContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserFromContext(req.Context()); ok {
		t.Error("empty context should have no user")
	}
	ctx := WithUser(req.Context(), domain.User{ID: 3, Nickname: "aaa"})
	if u, ok := UserFromContext(ctx); !ok || u.ID != 3 {
		t.Errorf("UserFromContext() = %+v, %v", u, ok)
	}
}

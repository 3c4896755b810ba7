package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/server/httpserver/handler"
	"github.com/yndnr/quizrally-go/internal/telemetry/logger"
)

type stubResolver struct {
	users map[string]domain.User
}

func (s stubResolver) ResolveSession(_ context.Context, token string) (domain.User, error) {
	if token == "qrs_expired" {
		return domain.User{}, domain.ErrSessionExpired
	}
	u, ok := s.users[token]
	if !ok {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return u, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	routes []string
	codes  []int
}

func (o *recordingObserver) ObserveRequest(_, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
	o.codes = append(o.codes, status)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handler.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	if got := rec.Header().Get("X-Error-Code"); got != resp.Code {
		t.Errorf("X-Error-Code = %q, envelope code = %q", got, resp.Code)
	}
	return resp.Code
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 26 {
		t.Errorf("generated request id = %q, want a 26 character ULID", seen)
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Error("X-Request-ID header should match context value")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "client-id" {
		t.Errorf("request id = %q, want client-id", seen)
	}
}

func TestAuth(t *testing.T) {
	resolver := stubResolver{users: map[string]domain.User{
		"qrs_alice": {ID: 7, Nickname: "alice"},
	}}

	var got domain.User
	h := Auth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = handler.UserFromContext(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing", "", http.StatusUnauthorized, "QR-AUTH-4010"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "QR-AUTH-4010"},
		{"unknown", "Bearer qrs_nobody", http.StatusUnauthorized, "QR-AUTH-4010"},
		{"expired", "Bearer qrs_expired", http.StatusUnauthorized, "QR-AUTH-4012"},
		{"valid", "Bearer qrs_alice", http.StatusOK, ""},
		{"lowercase scheme", "bearer qrs_alice", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = domain.User{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
				return
			}
			if got.ID != 7 {
				t.Errorf("user in context = %+v, want alice", got)
			}
		})
	}
}

func TestAdminAuth(t *testing.T) {
	h := AdminAuth()(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no user: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(handler.WithUser(req.Context(), domain.User{ID: 2}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("participant: status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(handler.WithUser(req.Context(), domain.User{ID: 1, IsAdmin: true}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1, 2)(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("over burst: status = %d, want 429", code)
	}
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(0, 0)(okHandler)
	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
}

func TestRecover(t *testing.T) {
	h := Recover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if code := errorCode(t, rec); code != "QR-SYS-5000" {
		t.Errorf("code = %q, want QR-SYS-5000", code)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://quiz.example.com"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://quiz.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://quiz.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q for disallowed origin", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://quiz.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestAudit_ObservesRoutePattern(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Audit(obs))
	r.Get("/api/quiz/status/{userID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/quiz/status/3", nil))

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.routes) != 1 || obs.routes[0] != "/api/quiz/status/{userID}" {
		t.Errorf("routes = %v", obs.routes)
	}
	if obs.codes[0] != http.StatusTeapot {
		t.Errorf("status = %d, want 418", obs.codes[0])
	}
}

func TestRealIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		remote  string
		header  map[string]string
		trusted []netip.Prefix
		want    string
	}{
		{"remote addr", "192.0.2.1:5000", nil, trusted, "192.0.2.1"},
		{"ipv6", "[::1]:5000", nil, trusted, "::1"},
		{"untrusted peer ignores forwarded", "192.0.2.1:5000",
			map[string]string{"X-Forwarded-For": "203.0.113.5"}, trusted, "192.0.2.1"},
		{"untrusted peer ignores real ip", "192.0.2.1:5000",
			map[string]string{"X-Real-IP": "203.0.113.9"}, trusted, "192.0.2.1"},
		{"no proxies configured", "10.0.0.2:5000",
			map[string]string{"X-Forwarded-For": "203.0.113.5"}, nil, "10.0.0.2"},
		{"trusted peer forwarded", "10.0.0.2:5000",
			map[string]string{"X-Forwarded-For": "203.0.113.5"}, trusted, "203.0.113.5"},
		{"spoofed leftmost hop skipped", "10.0.0.2:5000",
			map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.5, 10.0.0.7"}, trusted, "203.0.113.5"},
		{"trusted peer real ip", "10.0.0.2:5000",
			map[string]string{"X-Real-IP": "203.0.113.9"}, trusted, "203.0.113.9"},
		{"garbage header", "10.0.0.2:5000",
			map[string]string{"X-Forwarded-For": "not-an-ip"}, trusted, "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = getClientIP(r)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("client ip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimit_IgnoresRotatedForwardedFor(t *testing.T) {
	h := RealIP(nil)(RateLimit(1, 1)(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want 200 then 429", codes)
	}
}

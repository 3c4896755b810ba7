package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func writeEnvelope(w http.ResponseWriter, status int, code string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": "msg " + code,
		"data":    data,
	})
}

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"http://localhost:3000", "http://localhost:3000"},
		{"https://quiz.example.com/", "https://quiz.example.com"},
		{"localhost:3000", "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			if got := NewHTTPClient(tt.server, "").BaseURL(); got != tt.want {
				t.Fatalf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPClient_LoginAndGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("User-Agent = %q", ua)
		}
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["nickname"] != "admin" || body["password"] != "admin123" {
				writeEnvelope(w, http.StatusUnauthorized, "QR-AUTH-4011", nil)
				return
			}
			writeEnvelope(w, http.StatusOK, "OK", map[string]string{"token": "tok"})
		case "/api/admin/status":
			if r.Header.Get("Authorization") != "Bearer tok" {
				writeEnvelope(w, http.StatusUnauthorized, "QR-AUTH-4010", nil)
				return
			}
			writeEnvelope(w, http.StatusOK, "OK", map[string]int{"users": 3})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	ctx := context.Background()

	var status map[string]int
	err := c.Get(ctx, "/api/admin/status", &status)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "QR-AUTH-4010" {
		t.Fatalf("unauthenticated Get() error = %v", err)
	}

	if err := c.Login(ctx, "admin", "wrong"); err == nil {
		t.Fatal("Login() with wrong password succeeded")
	}
	if err := c.Login(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if c.Token() != "tok" {
		t.Fatalf("Token() = %q", c.Token())
	}

	if err := c.Get(ctx, "/api/admin/status", &status); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if status["users"] != 3 {
		t.Fatalf("status = %v", status)
	}
}

func TestHTTPClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/export/scores" {
			writeEnvelope(w, http.StatusNotFound, "QR-SYS-4040", nil)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "/api/admin/export/scores", &buf)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if n != 8 || buf.String() != "a,b\n1,2\n" {
		t.Fatalf("Download() = %d %q", n, buf.String())
	}

	_, err = c.Download(context.Background(), "/api/admin/export/nope", &buf)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("Download() error = %v, want 404 APIError", err)
	}
}

func TestParseResponse_NonJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusBadGateway)
	rec.WriteString("bad gateway")

	err := ParseResponse(rec.Result(), nil)
	if err == nil || err.Error() != "request failed with status 502" {
		t.Fatalf("ParseResponse() error = %v", err)
	}
}

func TestHTTPClient_Logout(t *testing.T) {
	var called atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(r.URL.Path == "/api/auth/logout")
		writeEnvelope(w, http.StatusOK, "OK", nil)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	if err := c.Logout(context.Background()); err != nil || called.Load() {
		t.Fatalf("Logout() without token: err=%v called=%v", err, called.Load())
	}

	c = NewHTTPClient(srv.URL, "tok")
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if !called.Load() || c.Token() != "" {
		t.Fatalf("Logout() called=%v token=%q", called.Load(), c.Token())
	}
}

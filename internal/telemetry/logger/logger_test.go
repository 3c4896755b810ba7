package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "text", Output: &buf})
	l.Info("hello", "component", "test")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	l = New(Config{Level: "info", Format: "json", Output: &buf})
	l.Info("hello")
	if decode(t, &buf)["msg"] != "hello" {
		t.Error("json output should carry msg")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	defer SetLevel("info")

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}

	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	l.Debug("shown")
	if buf.Len() == 0 {
		t.Error("debug should be logged after SetLevel(debug)")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DEBUG", "DEBUG"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in).String(); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"session token", "value", "qrs_ABCDEFGHIJKLMNOPQRSTUVWXYZ", "qrs_ABC...XYZ"},
		{"short token", "value", "qrs_abc", "qrs_***"},
		{"password key", "password", "admin123", redactedValue},
		{"authorization key", "Authorization", "Basic xyz", redactedValue},
		{"argon2 hash", "hash", "$argon2id$v=19$m=19456,t=2,p=1$abc$def", redactedValue},
		{"bearer value", "header", "Bearer qrs", redactedValue},
		{"plain", "nickname", "hana", "hana"},
		{"empty secret", "secret", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Level: "info", Output: &buf}).Info("event", tt.key, tt.value)
			if got := decode(t, &buf)[tt.key]; got != tt.want {
				t.Errorf("%s = %v, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestRedact_Group(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: "info", Output: &buf}).
		WithGroup("req").
		Info("login", "password", "hunter2", "nickname", "hana")

	req, _ := decode(t, &buf)["req"].(map[string]any)
	if req["password"] != redactedValue || req["nickname"] != "hana" {
		t.Errorf("group = %v", req)
	}
}

func TestRedactString(t *testing.T) {
	if got := RedactString("qrs_0123456789"); got != "qrs_012...789" {
		t.Errorf("RedactString() = %q", got)
	}
	if got := RedactString("plain"); got != "plain" {
		t.Errorf("RedactString(plain) = %q", got)
	}
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Output: &buf})

	ctx := WithLogger(context.Background(), base)
	ctx = WithRequestID(ctx, "01J0REQ")
	if RequestIDFromContext(ctx) != "01J0REQ" {
		t.Fatal("request id not stored")
	}

	L(ctx).Info("handled")
	if decode(t, &buf)["request_id"] != "01J0REQ" {
		t.Error("L() should attach the request id")
	}

	if FromContext(context.Background()) == nil {
		t.Error("FromContext() should fall back to the default logger")
	}
}

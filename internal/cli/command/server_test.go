package command

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/quizrally-go/internal/cli/connection"
	"github.com/yndnr/quizrally-go/internal/core/domain"
)

func TestServer_RequiresCredentials(t *testing.T) {
	srv := newLiveServer(t)
	_, err := run(t, "", "server", "--server", srv.URL, "status")
	if !errors.Is(err, errUsage) {
		t.Fatalf("status error = %v, want usage error", err)
	}
}

func TestServer_LoginRejected(t *testing.T) {
	srv := newLiveServer(t)
	_, err := run(t, "", "server", "--server", srv.URL, "--nickname", "admin", "--password", "nope", "status")
	var apiErr *connection.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != domain.ErrInvalidCredentials.Code {
		t.Fatalf("status error = %v, want invalid credentials", err)
	}
}

func TestServer_NonAdmin(t *testing.T) {
	srv := newLiveServer(t)
	_, err := run(t, "", "server", "--server", srv.URL, "--nickname", "test", "--password", "test123", "flush")
	var apiErr *connection.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != domain.ErrAdminRequired.Code {
		t.Fatalf("flush error = %v, want admin required", err)
	}
}

func TestServer_AdminCommands(t *testing.T) {
	srv := newLiveServer(t)
	base := []string{"server", "--server", srv.URL, "--nickname", "admin", "--password", "admin123"}
	cmd := func(args ...string) []string {
		return append(append([]string{"-o", "json"}, base...), args...)
	}

	t.Run("status", func(t *testing.T) {
		out, err := run(t, "", cmd("status")...)
		if err != nil {
			t.Fatalf("status error = %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if _, ok := got["build"]; !ok {
			t.Fatalf("status missing build: %v", got)
		}
	})

	t.Run("flush", func(t *testing.T) {
		out, err := run(t, "", cmd("flush")...)
		if err != nil {
			t.Fatalf("flush error = %v", err)
		}
		if !strings.Contains(out, "database.json") {
			t.Fatalf("flush output = %s", out)
		}
	})

	t.Run("integrity", func(t *testing.T) {
		out, err := run(t, "", cmd("integrity")...)
		if err != nil {
			t.Fatalf("integrity error = %v", err)
		}
		var res CheckResult
		if err := json.Unmarshal([]byte(out), &res); err != nil || !res.Clean {
			t.Fatalf("integrity = %+v, %v", res, err)
		}
	})

	t.Run("ranking", func(t *testing.T) {
		out, err := run(t, "", cmd("ranking", "-n", "1")...)
		if err != nil {
			t.Fatalf("ranking error = %v", err)
		}
		var entries []domain.RankingEntry
		if err := json.Unmarshal([]byte(out), &entries); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if len(entries) != 1 || entries[0].Nickname != "test" {
			t.Fatalf("ranking = %+v", entries)
		}
	})

	t.Run("export", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "survey.csv")
		if _, err := run(t, "", cmd("export", "--out", dst, "survey")...); err != nil {
			t.Fatalf("export error = %v", err)
		}
		data, err := os.ReadFile(dst)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "\ufeff") {
			t.Fatal("export missing BOM")
		}
	})
}

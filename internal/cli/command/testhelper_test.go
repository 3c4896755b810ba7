package command

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/server/httpserver"
	"github.com/yndnr/quizrally-go/internal/storage"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
	"github.com/yndnr/quizrally-go/internal/storage/snapshot"
	"github.com/yndnr/quizrally-go/internal/telemetry/logger"
)

var seedTime = time.Date(2025, 8, 10, 9, 0, 0, 0, time.UTC)

// writeSnapshot seeds a store, lets mutate adjust it, and writes it as
// the snapshot file of a fresh data directory.
func writeSnapshot(t *testing.T, mutate func(st *memory.Store)) string {
	t.Helper()
	seed, err := service.NewSeeder(service.DefaultSeedConfig(), seedTime)
	if err != nil {
		t.Fatalf("NewSeeder() error = %v", err)
	}
	st := memory.New()
	if err := seed(st); err != nil {
		t.Fatalf("seed() error = %v", err)
	}
	if mutate != nil {
		mutate(st)
	}

	dir := t.TempDir()
	f, err := snapshot.NewFile(snapshot.DefaultConfig(dir))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if _, err := f.Write(snapshot.Capture(st, seedTime)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return dir
}

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)

	err := app.Run(append([]string{"quizrally-cli"}, args...))
	if errOut.Len() > 0 {
		t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}

// newLiveServer starts a seeded quizrally API on an httptest server.
func newLiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	ecfg := storage.DefaultConfig(t.TempDir())
	ecfg.Logger = logger.Discard()
	engine, err := storage.New(ecfg)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { _ = engine.Close(context.Background()) })

	seed, err := service.NewSeeder(service.DefaultSeedConfig(), time.Now())
	if err != nil {
		t.Fatalf("NewSeeder() error = %v", err)
	}
	if _, err := engine.Recover(context.Background(), seed); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	svc := service.NewQuizService(engine, service.WithLogger(logger.Discard()))
	srv := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{
		Service: svc,
		Logger:  logger.Discard(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

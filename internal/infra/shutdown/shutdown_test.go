package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/quizrally-go/internal/telemetry/logger"
)

func recordHooks(h *Handler, names ...string) func() []string {
	var mu sync.Mutex
	var order []string
	for _, name := range names {
		h.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), order...)
	}
}

func TestHandler_Shutdown_ReverseOrder(t *testing.T) {
	h := NewHandler(time.Second, logger.Discard())
	order := recordHooks(h, "mirror", "engine", "http")

	if err := h.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if diff := cmp.Diff([]string{"http", "engine", "mirror"}, order()); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Shutdown")
	}
}

func TestHandler_Shutdown_Once(t *testing.T) {
	h := NewHandler(time.Second, logger.Discard())
	order := recordHooks(h, "engine")

	h.Shutdown()
	h.Shutdown()

	if got := len(order()); got != 1 {
		t.Errorf("hook ran %d times, want 1", got)
	}
}

func TestHandler_Shutdown_HookError(t *testing.T) {
	h := NewHandler(time.Second, logger.Discard())
	boom := errors.New("boom")

	ran := false
	h.OnShutdown("first", func(context.Context) error {
		ran = true
		return nil
	})
	h.OnShutdown("failing", func(context.Context) error { return boom })

	err := h.Shutdown()
	if !errors.Is(err, boom) {
		t.Errorf("Shutdown() error = %v, want %v", err, boom)
	}
	if !ran {
		t.Error("hooks after a failing hook should still run")
	}
}

func TestHandler_Shutdown_Deadline(t *testing.T) {
	h := NewHandler(20*time.Millisecond, logger.Discard())
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := h.Shutdown(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline exceeded", err)
	}
}

func TestHandler_Wait_ContextCancelled(t *testing.T) {
	h := NewHandler(time.Second, logger.Discard())
	order := recordHooks(h, "engine")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(ctx) }()

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after cancel")
	}
	if len(order()) != 1 {
		t.Error("hooks should run after context cancel")
	}
}

func TestHandler_Wait_Signal(t *testing.T) {
	h := NewHandler(time.Second, logger.Discard())
	order := recordHooks(h, "engine", "http")

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}
	if diff := cmp.Diff([]string{"http", "engine"}, order()); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/quizrally-go/internal/infra/clock"
	"github.com/yndnr/quizrally-go/internal/storage/batch"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
	"github.com/yndnr/quizrally-go/internal/storage/snapshot"
)

// ErrClosed is returned by operations submitted after Close.
var ErrClosed = errors.New("storage: engine closed")

// Observer receives storage events for metrics. Calls arrive on the
// engine loop and must not block.
type Observer interface {
	ObserveMutation(table string)
	ObserveFlush(elapsed time.Duration, err error)
}

// Config configures the storage engine.
type Config struct {
	// DataDir holds the snapshot file.
	DataDir string

	// FileName is the snapshot file name inside DataDir.
	FileName string

	// BatchInterval is the coalescing window between the first mutation
	// and the flush it triggers.
	BatchInterval time.Duration

	// Clock drives the batch timer. Defaults to the wall clock.
	Clock clock.Clock

	// Observer is optional.
	Observer Observer

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:       dataDir,
		FileName:      snapshot.DefaultFileName,
		BatchInterval: batch.DefaultInterval,
		Logger:        slog.Default(),
	}
}

// Engine owns the store and serializes all access to it.
type Engine struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	store *memory.Store
	file  *snapshot.File
	sched *batch.Scheduler

	lastFlush *snapshot.Info
	lastErr   error

	reqCh  chan func()
	stopCh chan struct{}
	doneCh chan struct{}
	closed bool
}

// New creates a storage engine and starts its loop.
//
// The store starts empty. Call Recover before serving requests.
func New(cfg Config) (*Engine, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("storage: data_dir is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	file, err := snapshot.NewFile(snapshot.Config{Dir: cfg.DataDir, FileName: cfg.FileName})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	e := &Engine{
		cfg:    cfg,
		clock:  cfg.Clock,
		logger: cfg.Logger,
		file:   file,
		reqCh:  make(chan func()),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	hooks := batch.Hooks{}
	if cfg.Observer != nil {
		hooks.OnFlush = cfg.Observer.ObserveFlush
	}
	e.sched = batch.New(e.flush,
		batch.WithInterval(cfg.BatchInterval),
		batch.WithClock(cfg.Clock),
		batch.WithDispatcher(e.dispatch),
		batch.WithHooks(hooks),
		batch.WithLogger(cfg.Logger),
	)
	e.store = memory.New(memory.WithMutationHook(e.onMutation))

	go e.loop()

	return e, nil
}

func (e *Engine) loop() {
	defer close(e.doneCh)

	for {
		select {
		case fn := <-e.reqCh:
			fn()
		case <-e.stopCh:
			return
		}
	}
}

// dispatch hands a timer callback to the loop. Callbacks arriving after
// Close are dropped; Close has already flushed.
func (e *Engine) dispatch(fn func()) {
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("storage timer task panicked", "panic", r)
			}
		}()
		fn()
	}

	select {
	case e.reqCh <- task:
	case <-e.stopCh:
	}
}

func (e *Engine) onMutation(table string) {
	e.sched.NotifyMutation()
	if e.cfg.Observer != nil {
		e.cfg.Observer.ObserveMutation(table)
	}
}

// flush runs on the loop. It captures the store as it is right now.
func (e *Engine) flush() error {
	rec := snapshot.Capture(e.store, e.clock.Now())
	info, err := e.file.Write(rec)
	if err != nil {
		e.lastErr = err
		return err
	}
	e.lastFlush = info
	e.lastErr = nil
	return nil
}

// submit runs fn on the loop and waits for it to finish. Once submitted,
// fn always runs to completion even if ctx is cancelled.
func (e *Engine) submit(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("storage task panicked", "panic", r)
				done <- fmt.Errorf("storage: task panicked: %v", r)
			}
		}()
		done <- fn()
	}

	select {
	case e.reqCh <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopCh:
		return ErrClosed
	}
	return <-done
}

// UpdateOption modifies a single Update call.
type UpdateOption func(*updateOptions)

type updateOptions struct {
	flushNow bool
}

// FlushNow makes Update write the snapshot before returning, bypassing
// the batch window. A failed write is logged, not returned; the scheduler
// keeps the store dirty and retries.
func FlushNow() UpdateOption {
	return func(o *updateOptions) {
		o.flushNow = true
	}
}

// Update runs fn against the store on the engine loop. Mutations made by
// fn are visible to every later View or Update. An error from fn is
// returned as is; fn must validate before it mutates.
func (e *Engine) Update(ctx context.Context, fn func(s *memory.Store) error, opts ...UpdateOption) error {
	var o updateOptions
	for _, opt := range opts {
		opt(&o)
	}

	return e.submit(ctx, func() error {
		if err := fn(e.store); err != nil {
			return err
		}
		if o.flushNow && e.sched.Dirty() {
			if err := e.sched.FlushNow(); err != nil {
				e.logger.Error("immediate flush failed, batch will retry",
					"error", err)
			}
		}
		return nil
	})
}

// View runs fn against the store on the engine loop. fn must not mutate.
func (e *Engine) View(ctx context.Context, fn func(s *memory.Store) error) error {
	return e.submit(ctx, func() error {
		return fn(e.store)
	})
}

// Flush writes the snapshot now and reports the result.
func (e *Engine) Flush(ctx context.Context) (*snapshot.Info, error) {
	var info *snapshot.Info
	err := e.submit(ctx, func() error {
		if err := e.sched.FlushNow(); err != nil {
			return fmt.Errorf("storage: flush: %w", err)
		}
		info = e.lastFlush
		return nil
	})
	return info, err
}

// RecoverSource tells where the store contents came from.
type RecoverSource string

// Recovery sources.
const (
	SourceFile          RecoverSource = "file"
	SourceSeeded        RecoverSource = "seeded"
	SourceSeededCorrupt RecoverSource = "seeded_after_corrupt"
)

// RecoverResult summarizes Recover.
type RecoverResult struct {
	Source      RecoverSource  `json:"source"`
	Counts      map[string]int `json:"counts"`
	Timestamp   time.Time      `json:"timestamp,omitempty"`
	Quarantined string         `json:"quarantined,omitempty"`
	Elapsed     time.Duration  `json:"elapsed"`
}

// Seeder fills an empty store with initial data.
type Seeder func(s *memory.Store) error

// Recover loads the snapshot file into the store. When the file is
// missing, or exists but cannot be decoded, the store is seeded instead
// and flushed right away. A corrupt file is renamed aside first.
// Other read errors are returned.
func (e *Engine) Recover(ctx context.Context, seed Seeder) (*RecoverResult, error) {
	var res *RecoverResult
	err := e.submit(ctx, func() error {
		var err error
		res, err = e.recover(seed)
		return err
	})
	return res, err
}

func (e *Engine) recover(seed Seeder) (*RecoverResult, error) {
	start := time.Now()
	e.logger.Info("storage recovery started", "path", e.file.Path())

	res := &RecoverResult{}
	rec, info, err := e.file.Load()
	switch {
	case err == nil:
		rec.Apply(e.store)
		res.Source = SourceFile
		res.Timestamp = info.Timestamp
		e.logger.Info("snapshot loaded",
			"path", info.Path,
			"size_bytes", info.Size,
			"timestamp", info.Timestamp)

	case errors.Is(err, snapshot.ErrNotFound):
		e.logger.Info("no snapshot found, seeding initial data")
		res.Source = SourceSeeded

	case errors.Is(err, snapshot.ErrCorrupt):
		e.logger.Error("snapshot unreadable, seeding initial data",
			"path", e.file.Path(),
			"error", err)
		res.Source = SourceSeededCorrupt
		moved, qerr := e.file.Quarantine(e.clock.Now())
		if qerr != nil {
			e.logger.Warn("could not move corrupt snapshot aside", "error", qerr)
		} else {
			res.Quarantined = moved
		}

	default:
		return nil, fmt.Errorf("storage: load snapshot: %w", err)
	}

	if res.Source != SourceFile {
		e.store.Reset()
		if seed != nil {
			if err := seed(e.store); err != nil {
				return nil, fmt.Errorf("storage: seed: %w", err)
			}
		}
		if err := e.sched.FlushNow(); err != nil {
			e.logger.Error("initial flush failed, batch will retry", "error", err)
		}
	}

	res.Counts = e.store.Counts()
	res.Elapsed = time.Since(start)
	e.logger.Info("recovery completed",
		"source", res.Source,
		"users", res.Counts[memory.TableUsers],
		"answers", res.Counts[memory.TableAnswers],
		"elapsed", res.Elapsed)
	return res, nil
}

// Stats is a point-in-time view of the engine.
type Stats struct {
	State        string         `json:"state"`
	Dirty        bool           `json:"dirty"`
	Interval     time.Duration  `json:"batch_interval"`
	Counts       map[string]int `json:"counts"`
	Batch        batch.Stats    `json:"batch"`
	LastFlush    *snapshot.Info `json:"last_flush,omitempty"`
	LastError    string         `json:"last_error,omitempty"`
	SnapshotPath string         `json:"snapshot_path"`
}

// Stats returns engine statistics.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	var st *Stats
	err := e.submit(ctx, func() error {
		st = &Stats{
			State:        e.sched.State().String(),
			Dirty:        e.sched.Dirty(),
			Interval:     e.sched.Interval(),
			Counts:       e.store.Counts(),
			Batch:        e.sched.Stats(),
			LastFlush:    e.lastFlush,
			SnapshotPath: e.file.Path(),
		}
		if e.lastErr != nil {
			st.LastError = e.lastErr.Error()
		}
		return nil
	})
	return st, err
}

// Close flushes the store one last time and stops the loop. It is safe
// to call more than once; later calls return nil.
func (e *Engine) Close(ctx context.Context) error {
	e.logger.Info("shutting down storage engine")

	var flushErr error
	err := e.submit(ctx, func() error {
		if e.closed {
			return ErrClosed
		}
		e.closed = true
		if e.sched.Dirty() {
			flushErr = e.sched.FlushNow()
		}
		e.sched.Stop()
		close(e.stopCh)
		return nil
	})
	if errors.Is(err, ErrClosed) {
		return nil
	}
	if err != nil {
		return err
	}

	<-e.doneCh

	if flushErr != nil {
		e.logger.Error("final flush failed", "error", flushErr)
		return fmt.Errorf("storage: final flush: %w", flushErr)
	}
	e.logger.Info("storage engine shutdown complete")
	return nil
}

package batch

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/yndnr/quizrally-go/internal/infra/clock"
)

// DefaultInterval is the default batch window.
const DefaultInterval = time.Second

// State is the scheduler's timer state.
type State int

const (
	// Idle means no flush is scheduled.
	Idle State = iota
	// PendingFlush means a timer is armed and has not fired yet.
	PendingFlush
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingFlush:
		return "pending_flush"
	default:
		return "unknown"
	}
}

// FlushFunc writes the current state to durable storage.
type FlushFunc func() error

// Dispatcher runs fn on the goroutine that owns the store.
type Dispatcher func(fn func())

// Inline runs fn on the calling goroutine.
func Inline(fn func()) { fn() }

// Hooks observe scheduler activity. Nil hooks are skipped.
type Hooks struct {
	// OnArm is called when a timer is armed.
	OnArm func()
	// OnFlush is called after every flush attempt.
	OnFlush func(elapsed time.Duration, err error)
}

// Stats are cumulative counters.
type Stats struct {
	Mutations uint64 `json:"mutations"`
	Armed     uint64 `json:"armed"`
	Flushes   uint64 `json:"flushes"`
	Failures  uint64 `json:"failures"`
	Skipped   uint64 `json:"skipped"`
}

// Scheduler is the dirty tracker plus batch timer.
type Scheduler struct {
	flush    FlushFunc
	interval time.Duration
	clock    clock.Clock
	dispatch Dispatcher
	hooks    Hooks
	logger   *slog.Logger

	dirty   bool
	pending clock.Timer

	mutations atomic.Uint64
	armed     atomic.Uint64
	flushes   atomic.Uint64
	failures  atomic.Uint64
	skipped   atomic.Uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the batch window. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithDispatcher sets how timer callbacks reach the owner goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Scheduler) {
		s.dispatch = d
	}
}

// WithHooks sets observation hooks.
func WithHooks(h Hooks) Option {
	return func(s *Scheduler) {
		s.hooks = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// New creates a scheduler that calls flush at most once per window.
func New(flush FlushFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		flush:    flush,
		interval: DefaultInterval,
		clock:    clock.New(),
		dispatch: Inline,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NotifyMutation records that the store changed. If no flush is pending
// it arms one for the batch interval; otherwise it only sets the flag.
func (s *Scheduler) NotifyMutation() {
	s.dirty = true
	s.mutations.Add(1)

	if s.pending != nil {
		return
	}
	s.arm()
}

func (s *Scheduler) arm() {
	s.pending = s.clock.AfterFunc(s.interval, func() {
		s.dispatch(s.fire)
	})
	s.armed.Add(1)
	if s.hooks.OnArm != nil {
		s.hooks.OnArm()
	}
}

// fire runs when the batch window closes. The dirty flag is checked here,
// not at arm time. A mutation recorded while the flush was running keeps
// the flag set and arms the next window.
func (s *Scheduler) fire() {
	if !s.dirty {
		s.pending = nil
		s.skipped.Add(1)
		return
	}

	s.pending = nil
	err := s.run()
	if err != nil {
		s.logger.Error("batch flush failed, will retry on next mutation",
			"error", err)
		return
	}
	s.logger.Debug("batch flush completed")

	if s.dirty && s.pending == nil {
		s.arm()
	}
}

// FlushNow flushes immediately, bypassing the batch window. A pending
// timer is left armed; when it fires it finds nothing to do unless new
// mutations arrived in between.
func (s *Scheduler) FlushNow() error {
	if err := s.run(); err != nil {
		return err
	}
	if s.dirty && s.pending == nil {
		s.arm()
	}
	return nil
}

func (s *Scheduler) run() error {
	seq := s.mutations.Load()
	start := s.clock.Now()
	err := s.flush()
	elapsed := s.clock.Now().Sub(start)

	if err != nil {
		s.failures.Add(1)
	} else {
		if s.mutations.Load() == seq {
			s.dirty = false
		}
		s.flushes.Add(1)
	}
	if s.hooks.OnFlush != nil {
		s.hooks.OnFlush(elapsed, err)
	}
	return err
}

// Stop disarms a pending timer. Call it only after a final FlushNow,
// when the owner goroutine is about to exit.
func (s *Scheduler) Stop() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// Dirty reports whether unflushed mutations exist.
func (s *Scheduler) Dirty() bool {
	return s.dirty
}

// State reports whether a flush is pending.
func (s *Scheduler) State() State {
	if s.pending != nil {
		return PendingFlush
	}
	return Idle
}

// Interval returns the batch window.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Stats returns the counters. Safe to call from any goroutine.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Mutations: s.mutations.Load(),
		Armed:     s.armed.Load(),
		Flushes:   s.flushes.Load(),
		Failures:  s.failures.Load(),
		Skipped:   s.skipped.Load(),
	}
}

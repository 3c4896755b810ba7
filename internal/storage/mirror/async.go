package mirror

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/domain"
)

// Defaults for Async.
const (
	DefaultQueueSize   = 1024
	DefaultSaveTimeout = 5 * time.Second
)

// ErrQueueFull is returned when a save is dropped because the queue is full.
var ErrQueueFull = errors.New("mirror: queue full")

// ErrSinkClosed is returned for saves after Close.
var ErrSinkClosed = errors.New("mirror: closed")

type job struct {
	kind string
	run  func(ctx context.Context, s Sink) error
}

// AsyncStats are cumulative counters.
type AsyncStats struct {
	Saved   uint64 `json:"saved"`
	Failed  uint64 `json:"failed"`
	Dropped uint64 `json:"dropped"`
}

// Async forwards saves to a Sink from a single background worker. Save
// methods only enqueue and never block; the result of the real save is
// logged, not returned.
type Async struct {
	sink    Sink
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	queue  chan job
	closed bool

	saved   atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64

	doneCh chan struct{}
}

// NewAsync starts a worker that drains saves into sink.
func NewAsync(sink Sink, queueSize int, logger *slog.Logger) *Async {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Async{
		sink:    sink,
		logger:  logger,
		timeout: DefaultSaveTimeout,
		queue:   make(chan job, queueSize),
		doneCh:  make(chan struct{}),
	}
	go a.worker()
	return a
}

func (a *Async) worker() {
	defer close(a.doneCh)

	for j := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := j.run(ctx, a.sink)
		cancel()

		if err != nil {
			a.failed.Add(1)
			a.logger.Warn("mirror save failed", "kind", j.kind, "error", err)
			continue
		}
		a.saved.Add(1)
	}
}

func (a *Async) enqueue(kind string, run func(ctx context.Context, s Sink) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrSinkClosed
	}
	select {
	case a.queue <- job{kind: kind, run: run}:
		return nil
	default:
		a.dropped.Add(1)
		a.logger.Warn("mirror queue full, save dropped", "kind", kind)
		return ErrQueueFull
	}
}

// SaveUser implements Sink.
func (a *Async) SaveUser(_ context.Context, u domain.User) error {
	return a.enqueue("user", func(ctx context.Context, s Sink) error { return s.SaveUser(ctx, u) })
}

// SaveQuestion implements Sink.
func (a *Async) SaveQuestion(_ context.Context, q domain.Question) error {
	return a.enqueue("question", func(ctx context.Context, s Sink) error { return s.SaveQuestion(ctx, q) })
}

// SaveAnswer implements Sink.
func (a *Async) SaveAnswer(_ context.Context, ans domain.Answer) error {
	return a.enqueue("answer", func(ctx context.Context, s Sink) error { return s.SaveAnswer(ctx, ans) })
}

// SaveCompletion implements Sink.
func (a *Async) SaveCompletion(_ context.Context, c domain.Completion) error {
	return a.enqueue("completion", func(ctx context.Context, s Sink) error { return s.SaveCompletion(ctx, c) })
}

// SaveRanking implements Sink.
func (a *Async) SaveRanking(_ context.Context, r domain.Ranking) error {
	return a.enqueue("ranking", func(ctx context.Context, s Sink) error { return s.SaveRanking(ctx, r) })
}

// SaveSurvey implements Sink.
func (a *Async) SaveSurvey(_ context.Context, sv domain.SurveyAnswer) error {
	return a.enqueue("survey", func(ctx context.Context, s Sink) error { return s.SaveSurvey(ctx, sv) })
}

// Stats returns the worker counters.
func (a *Async) Stats() AsyncStats {
	return AsyncStats{
		Saved:   a.saved.Load(),
		Failed:  a.failed.Load(),
		Dropped: a.dropped.Load(),
	}
}

// Close stops accepting saves, drains the queue, and closes the sink.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.doneCh
	return a.sink.Close()
}

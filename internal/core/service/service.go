package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/infra/clock"
	"github.com/yndnr/quizrally-go/internal/storage"
	"github.com/yndnr/quizrally-go/internal/storage/mirror"
	"github.com/yndnr/quizrally-go/internal/storage/snapshot"
)

// Config holds the quiz rules.
type Config struct {
	// SurveyBonusPoints is added to the score of users who answered the survey.
	SurveyBonusPoints float64

	// SessionTTL is the lifetime of a login session.
	SessionTTL time.Duration

	// EnableRegistration allows participants to create their own accounts.
	EnableRegistration bool
}

// DefaultConfig returns the default quiz rules.
func DefaultConfig() Config {
	return Config{
		SurveyBonusPoints: 10,
		SessionTTL:        12 * time.Hour,
	}
}

// QuizService is the application service.
type QuizService struct {
	engine *storage.Engine
	mirror mirror.Sink
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// Option configures a QuizService.
type Option func(*QuizService)

// WithMirror sets the sink committed records are copied to.
func WithMirror(sink mirror.Sink) Option {
	return func(s *QuizService) {
		if sink != nil {
			s.mirror = sink
		}
	}
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(s *QuizService) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithConfig sets the quiz rules.
func WithConfig(cfg Config) Option {
	return func(s *QuizService) {
		s.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *QuizService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewQuizService creates the service over an engine that has already
// been recovered.
func NewQuizService(engine *storage.Engine, opts ...Option) *QuizService {
	s := &QuizService{
		engine: engine,
		mirror: mirror.Noop{},
		clock:  clock.New(),
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.SessionTTL <= 0 {
		s.cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	return s
}

// Config returns the active quiz rules.
func (s *QuizService) Config() Config {
	return s.cfg
}

func (s *QuizService) now() time.Time {
	return s.clock.Now().UTC()
}

// mirrored logs a mirror enqueue failure. The mirror never affects the
// outcome of an operation.
func (s *QuizService) mirrored(kind string, err error) {
	if err != nil {
		s.logger.Debug("mirror enqueue failed", "kind", kind, "error", err)
	}
}

// storageErr wraps engine failures that are not domain errors.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, storage.ErrClosed) {
		return domain.ErrServiceUnavailable.WithCause(err)
	}
	return domain.ErrStorageError.WithCause(err)
}

// SystemStatus is returned by Status.
type SystemStatus struct {
	Storage *storage.Stats     `json:"storage"`
	Mirror  *mirror.AsyncStats `json:"mirror,omitempty"`
}

// Status reports engine and mirror statistics.
func (s *QuizService) Status(ctx context.Context) (*SystemStatus, error) {
	st, err := s.engine.Stats(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	out := &SystemStatus{Storage: st}
	if a, ok := s.mirror.(interface{ Stats() mirror.AsyncStats }); ok {
		ms := a.Stats()
		out.Mirror = &ms
	}
	return out, nil
}

// Flush writes the snapshot now.
func (s *QuizService) Flush(ctx context.Context) (*snapshot.Info, error) {
	info, err := s.engine.Flush(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	s.logger.Info("manual flush completed", "path", info.Path, "size_bytes", info.Size)
	return info, nil
}

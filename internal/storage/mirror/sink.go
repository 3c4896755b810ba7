package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yndnr/quizrally-go/internal/core/domain"
)

// Sink receives committed records.
type Sink interface {
	SaveUser(ctx context.Context, u domain.User) error
	SaveQuestion(ctx context.Context, q domain.Question) error
	SaveAnswer(ctx context.Context, a domain.Answer) error
	SaveCompletion(ctx context.Context, c domain.Completion) error
	SaveRanking(ctx context.Context, r domain.Ranking) error
	SaveSurvey(ctx context.Context, s domain.SurveyAnswer) error
	Close() error
}

// Driver names.
const (
	DriverNone   = "none"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Config selects and configures a mirror driver.
type Config struct {
	Driver    string
	Path      string
	QueueSize int
}

// Open returns the sink for cfg.Driver. The result is not wrapped in Async.
func Open(cfg Config, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", DriverNone:
		return Noop{}, nil
	case DriverSQLite:
		return OpenSQLite(cfg.Path)
	case DriverBadger:
		return OpenBadger(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("mirror: unknown driver %q", cfg.Driver)
	}
}

// Noop discards everything.
type Noop struct{}

func (Noop) SaveUser(context.Context, domain.User) error             { return nil }
func (Noop) SaveQuestion(context.Context, domain.Question) error     { return nil }
func (Noop) SaveAnswer(context.Context, domain.Answer) error         { return nil }
func (Noop) SaveCompletion(context.Context, domain.Completion) error { return nil }
func (Noop) SaveRanking(context.Context, domain.Ranking) error       { return nil }
func (Noop) SaveSurvey(context.Context, domain.SurveyAnswer) error   { return nil }
func (Noop) Close() error                                            { return nil }

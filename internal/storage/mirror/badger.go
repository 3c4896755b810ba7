package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/quizrally-go/internal/core/domain"
)

// Key prefixes for the Badger mirror.
const (
	PrefixUser       = "user/"
	PrefixQuestion   = "question/"
	PrefixAnswer     = "answer/"
	PrefixCompletion = "completion/"
	PrefixRanking    = "ranking/"
	PrefixSurvey     = "survey/"
)

// Badger mirrors records as JSON values in an embedded Badger database.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(dir string, logger *slog.Logger) (*Badger, error) {
	if dir == "" {
		return nil, fmt.Errorf("mirror: badger dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("mirror: open badger: %w", err)
	}

	logger.Info("badger mirror opened", "dir", dir)
	return &Badger{db: db, logger: logger}, nil
}

func (b *Badger) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mirror: marshal %s: %w", key, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("mirror: put %s: %w", key, err)
	}
	return nil
}

// SaveUser implements Sink.
func (b *Badger) SaveUser(_ context.Context, u domain.User) error {
	return b.put(PrefixUser+strconv.Itoa(u.ID), u)
}

// SaveQuestion implements Sink.
func (b *Badger) SaveQuestion(_ context.Context, q domain.Question) error {
	return b.put(PrefixQuestion+strconv.Itoa(q.ID), q)
}

// SaveAnswer implements Sink.
func (b *Badger) SaveAnswer(_ context.Context, a domain.Answer) error {
	return b.put(PrefixAnswer+domain.AnswerKey(a.UserID, a.QuestionNumber), a)
}

// SaveCompletion implements Sink.
func (b *Badger) SaveCompletion(_ context.Context, c domain.Completion) error {
	return b.put(PrefixCompletion+strconv.Itoa(c.UserID), c)
}

// SaveRanking implements Sink.
func (b *Badger) SaveRanking(_ context.Context, r domain.Ranking) error {
	return b.put(PrefixRanking+strconv.Itoa(r.UserID), r)
}

// SaveSurvey implements Sink.
func (b *Badger) SaveSurvey(_ context.Context, s domain.SurveyAnswer) error {
	return b.put(PrefixSurvey+strconv.Itoa(s.UserID), s)
}

// Scan iterates over keys with a given prefix.
func (b *Badger) Scan(prefix string, fn func(key string, value []byte) bool) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if !fn(string(item.Key()), value) {
				break
			}
		}
		return nil
	})
}

// Count returns the number of keys under prefix.
func (b *Badger) Count(prefix string) (int, error) {
	n := 0
	err := b.Scan(prefix, func(string, []byte) bool {
		n++
		return true
	})
	return n, err
}

// Close implements Sink.
func (b *Badger) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("mirror: close badger: %w", err)
	}
	return nil
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

package mirror

import (
	"context"
	"fmt"

	"github.com/yndnr/quizrally-go/internal/storage/snapshot"
)

// SyncReport counts records pushed by Sync.
type SyncReport struct {
	Users       int `json:"users"`
	Questions   int `json:"questions"`
	Answers     int `json:"answers"`
	Completions int `json:"completions"`
	Rankings    int `json:"rankings"`
	Surveys     int `json:"surveys"`
	Failed      int `json:"failed"`
}

// Sync pushes every record of a snapshot into sink. Individual failures
// are counted and reported through onError, and do not stop the sync.
func Sync(ctx context.Context, sink Sink, rec *snapshot.Record, onError func(kind string, err error)) (*SyncReport, error) {
	rep := &SyncReport{}
	fail := func(kind string, err error) {
		rep.Failed++
		if onError != nil {
			onError(kind, err)
		}
	}

	for _, p := range rec.Users {
		if err := sink.SaveUser(ctx, p.Value); err != nil {
			fail("user", err)
			continue
		}
		rep.Users++
	}
	for _, p := range rec.Questions {
		if err := sink.SaveQuestion(ctx, p.Value); err != nil {
			fail("question", err)
			continue
		}
		rep.Questions++
	}
	for _, p := range rec.Answers {
		a := p.Value
		a.Normalize()
		if err := sink.SaveAnswer(ctx, a); err != nil {
			fail("answer", err)
			continue
		}
		rep.Answers++
	}
	for _, p := range rec.Completions {
		if err := sink.SaveCompletion(ctx, p.Value); err != nil {
			fail("completion", err)
			continue
		}
		rep.Completions++
	}
	for _, p := range rec.Rankings {
		if err := sink.SaveRanking(ctx, p.Value); err != nil {
			fail("ranking", err)
			continue
		}
		rep.Rankings++
	}
	for _, p := range rec.Surveys {
		if err := sink.SaveSurvey(ctx, p.Value); err != nil {
			fail("survey", err)
			continue
		}
		rep.Surveys++
	}

	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("mirror: sync interrupted: %w", err)
	}
	return rep, nil
}

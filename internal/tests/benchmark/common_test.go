package benchmark

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
)

// UserCounts are the participant counts benchmarks run at. An event
// rarely exceeds a few thousand players.
var UserCounts = []int{100, 1000, 5000}

var choices = []string{"A", "B", "C", "D"}

func fillStore(b *testing.B, st *memory.Store, count int) {
	b.Helper()
	if err := populate(st, count); err != nil {
		b.Fatalf("populate() error = %v", err)
	}
}

// populate seeds the default questions and count users who each
// answered every question and finished the quiz.
func populate(st *memory.Store, count int) error {
	seed, err := service.NewSeeder(service.SeedConfig{
		AdminNickname: "admin",
		AdminPassword: "admin123",
	}, time.Now())
	if err != nil {
		return err
	}
	if err := seed(st); err != nil {
		return err
	}

	now := time.Now().UTC()
	questions := st.QuestionsByNumber()
	for i := 0; i < count; i++ {
		id := 100 + i
		st.Users.Set(id, domain.User{
			ID:        id,
			Nickname:  fmt.Sprintf("player-%d", i),
			AgeGroup:  "adult",
			CreatedAt: now,
		})

		correct := 0
		for j, q := range questions {
			choice := choices[(i+j)%len(choices)]
			ok := choice == q.CorrectAnswer
			if ok {
				correct++
			}
			st.Answers.Set(domain.AnswerKey(id, q.Number), domain.Answer{
				UserID:         id,
				QuestionNumber: q.Number,
				Choice:         choice,
				IsCorrect:      ok,
				AnsweredAt:     now,
			})
		}
		score := float64(correct) / float64(len(questions)) * 100
		st.Completions.Set(id, domain.Completion{
			UserID:         id,
			CompletedAt:    now,
			Score:          score,
			BaseScore:      score,
			CorrectCount:   correct,
			TotalQuestions: len(questions),
		})
		st.Rankings.Set(id, domain.Ranking{UserID: id, Score: score, CorrectCount: correct, UpdatedAt: now})
	}
	return nil
}

// reportMemory reports heap usage after a GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
}

// runWithUserCounts runs benchFn once per entry of counts.
func runWithUserCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("users_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

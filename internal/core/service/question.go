package service

import (
	"context"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
)

// ListQuestions returns the participant view of all questions ordered by
// question number.
func (s *QuizService) ListQuestions(ctx context.Context) ([]domain.PublicQuestion, error) {
	var out []domain.PublicQuestion
	err := s.engine.View(ctx, func(st *memory.Store) error {
		qs := st.QuestionsByNumber()
		out = make([]domain.PublicQuestion, 0, len(qs))
		for _, q := range qs {
			out = append(out, q.Public())
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// AddQuestion stores a new question. Question numbers are unique.
func (s *QuizService) AddQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}

	now := s.now()
	err := s.engine.Update(ctx, func(st *memory.Store) error {
		if _, taken := st.QuestionByNumber(q.Number); taken {
			return domain.ErrQuestionNumberTaken
		}
		q.ID = st.NextQuestionID()
		q.CreatedAt = &now
		st.Questions.Set(q.ID, q)
		return nil
	}, storage.FlushNow())
	if err != nil {
		return domain.Question{}, storageErr(err)
	}

	s.mirrored("question", s.mirror.SaveQuestion(ctx, q))
	s.logger.Info("question added", "question_id", q.ID, "number", q.Number)
	return q, nil
}

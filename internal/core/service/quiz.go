package service

import (
	"context"
	"fmt"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
)

// SaveAnswer records userID's choice for a question, replacing any
// earlier answer to the same question.
func (s *QuizService) SaveAnswer(ctx context.Context, userID, questionNumber int, choice string) (*domain.AnswerResult, error) {
	choice = domain.NormalizeChoice(choice)
	if !domain.ValidChoice(choice) {
		return nil, domain.ErrInvalidChoice
	}

	now := s.now()
	var res domain.AnswerResult
	var ans domain.Answer
	err := s.engine.Update(ctx, func(st *memory.Store) error {
		if !st.Users.Has(userID) {
			return domain.ErrUserNotFound
		}
		q, ok := st.QuestionByNumber(questionNumber)
		if !ok {
			return domain.ErrQuestionNotFound.WithDetails(fmt.Sprintf("question %d", questionNumber))
		}

		ans = domain.Answer{
			UserID:         userID,
			QuestionNumber: questionNumber,
			Choice:         choice,
			IsCorrect:      q.CorrectAnswer == choice,
			AnsweredAt:     now,
		}
		st.Answers.Set(domain.AnswerKey(userID, questionNumber), ans)

		answered := len(st.AnswersOf(userID))
		total := st.Questions.Len()
		res = domain.AnswerResult{
			Correct:       ans.IsCorrect,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Progress:      domain.NewProgress(answered, total),
			AllCompleted:  answered >= total,
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	s.mirrored("answer", s.mirror.SaveAnswer(ctx, ans))
	return &res, nil
}

// UserAnswers returns a user's answers ordered by question number.
func (s *QuizService) UserAnswers(ctx context.Context, userID int) ([]domain.Answer, error) {
	var out []domain.Answer
	err := s.engine.View(ctx, func(st *memory.Store) error {
		out = st.AnswersOf(userID)
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	if out == nil {
		out = []domain.Answer{}
	}
	return out, nil
}

// CompleteQuiz scores the quiz for userID. A user completes once; later
// calls return the stored result with AlreadyCompleted set.
func (s *QuizService) CompleteQuiz(ctx context.Context, userID int) (*domain.CompletionResult, error) {
	now := s.now()
	var res domain.CompletionResult
	var ranking domain.Ranking
	err := s.engine.Update(ctx, func(st *memory.Store) error {
		if !st.Users.Has(userID) {
			return domain.ErrUserNotFound
		}
		answers := st.AnswersOf(userID)
		if answers == nil {
			answers = []domain.Answer{}
		}

		if c, ok := st.Completions.Get(userID); ok {
			res = domain.CompletionResult{Completion: c, AlreadyCompleted: true, Answers: answers}
			return nil
		}

		total := st.Questions.Len()
		if total == 0 {
			return domain.ErrNoQuestions
		}
		if len(answers) < total {
			return domain.ErrQuizIncomplete.WithDetails(fmt.Sprintf("(%d/%d)", len(answers), total))
		}

		correct := 0
		for _, a := range answers {
			if a.IsCorrect {
				correct++
			}
		}
		c := domain.Completion{
			UserID:         userID,
			CompletedAt:    now,
			BaseScore:      float64(correct) / float64(total) * 100,
			CorrectCount:   correct,
			TotalQuestions: total,
		}
		c.Score = c.BaseScore
		if st.Surveys.Has(userID) {
			c.ApplyBonus(s.cfg.SurveyBonusPoints)
		}

		ranking = domain.Ranking{UserID: userID, Score: c.Score, CorrectCount: correct, UpdatedAt: now}
		st.Completions.Set(userID, c)
		st.Rankings.Set(userID, ranking)
		res = domain.CompletionResult{Completion: c, Answers: answers}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	if !res.AlreadyCompleted {
		s.mirrored("completion", s.mirror.SaveCompletion(ctx, res.Completion))
		s.mirrored("ranking", s.mirror.SaveRanking(ctx, ranking))
		s.logger.Info("quiz completed",
			"user_id", userID,
			"score", res.Score,
			"correct", res.CorrectCount,
			"bonus", res.BonusPoints)
	}
	return &res, nil
}

// QuizStatus reports userID's progress through the quiz.
func (s *QuizService) QuizStatus(ctx context.Context, userID int) (domain.QuizStatus, error) {
	var qs domain.QuizStatus
	err := s.engine.View(ctx, func(st *memory.Store) error {
		answered := len(st.AnswersOf(userID))
		total := st.Questions.Len()
		qs = domain.QuizStatus{
			IsCompleted:    st.Completions.Has(userID),
			AnsweredCount:  answered,
			TotalQuestions: total,
			Progress:       domain.NewProgress(answered, total).Percentage,
		}
		return nil
	})
	if err != nil {
		return domain.QuizStatus{}, storageErr(err)
	}
	return qs, nil
}

package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
)

// SurveyResult is returned by SubmitSurvey.
type SurveyResult struct {
	Survey domain.SurveyAnswer `json:"survey"`

	// BonusApplied is set when an existing completion received the
	// survey bonus.
	BonusApplied bool    `json:"bonusApplied"`
	Score        float64 `json:"score,omitempty"`
}

// SubmitSurvey stores userID's feedback. Each user answers once. If the
// quiz is already completed without a bonus, the bonus is added to the
// completion and the ranking. The snapshot is written before returning.
func (s *QuizService) SubmitSurvey(ctx context.Context, userID int, feedback string) (*SurveyResult, error) {
	feedback = strings.TrimSpace(feedback)
	if utf8.RuneCountInString(feedback) > domain.MaxFeedbackLength {
		return nil, domain.ErrInvalidArgument.WithDetails("feedback is too long")
	}

	now := s.now()
	res := &SurveyResult{}
	var completion domain.Completion
	var ranking domain.Ranking
	err := s.engine.Update(ctx, func(st *memory.Store) error {
		if !st.Users.Has(userID) {
			return domain.ErrUserNotFound
		}
		if st.Surveys.Has(userID) {
			return domain.ErrSurveyAlreadySubmitted
		}

		res.Survey = domain.SurveyAnswer{UserID: userID, Feedback: feedback, SubmittedAt: now}
		st.Surveys.Set(userID, res.Survey)

		c, ok := st.Completions.Get(userID)
		if !ok || !c.ApplyBonus(s.cfg.SurveyBonusPoints) {
			return nil
		}
		completion = c
		st.Completions.Set(userID, c)

		ranking, ok = st.Rankings.Get(userID)
		if !ok {
			ranking = domain.Ranking{UserID: userID, CorrectCount: c.CorrectCount}
		}
		ranking.Score = c.Score
		ranking.UpdatedAt = now
		st.Rankings.Set(userID, ranking)

		res.BonusApplied = true
		res.Score = c.Score
		return nil
	}, storage.FlushNow())
	if err != nil {
		return nil, storageErr(err)
	}

	s.mirrored("survey", s.mirror.SaveSurvey(ctx, res.Survey))
	if res.BonusApplied {
		s.mirrored("completion", s.mirror.SaveCompletion(ctx, completion))
		s.mirrored("ranking", s.mirror.SaveRanking(ctx, ranking))
	}
	s.logger.Info("survey submitted", "user_id", userID, "bonus_applied", res.BonusApplied)
	return res, nil
}

// SurveyStatus reports whether userID has answered the survey.
func (s *QuizService) SurveyStatus(ctx context.Context, userID int) (domain.SurveyStatus, error) {
	var ss domain.SurveyStatus
	err := s.engine.View(ctx, func(st *memory.Store) error {
		ss.Completed = st.Surveys.Has(userID)
		return nil
	})
	if err != nil {
		return domain.SurveyStatus{}, storageErr(err)
	}
	return ss, nil
}

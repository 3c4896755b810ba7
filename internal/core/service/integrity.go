package service

import (
	"context"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
)

// CheckIntegrity counts records that point at missing users or
// questions, and sessions past their expiry. Nothing is modified.
func CheckIntegrity(st *memory.Store, now time.Time) domain.IntegrityReport {
	var r domain.IntegrityReport

	numbers := make(map[int]bool, st.Questions.Len())
	for _, q := range st.Questions.All() {
		numbers[q.Number] = true
	}

	for _, a := range st.Answers.All() {
		if !st.Users.Has(a.UserID) {
			r.OrphanAnswers++
		}
		if !numbers[a.QuestionNumber] {
			r.UnknownQuestions++
		}
	}
	for id := range st.Completions.All() {
		if !st.Users.Has(id) {
			r.OrphanCompletions++
		}
	}
	for id := range st.Rankings.All() {
		if !st.Users.Has(id) {
			r.OrphanRankings++
		}
	}
	for id := range st.Surveys.All() {
		if !st.Users.Has(id) {
			r.OrphanSurveys++
		}
	}
	for _, sess := range st.Sessions.All() {
		if !st.Users.Has(sess.UserID) {
			r.OrphanSessions++
		}
		if sess.IsExpired(now) {
			r.ExpiredSessions++
		}
	}
	return r
}

// Integrity runs CheckIntegrity against the live store and logs what it
// finds.
func (s *QuizService) Integrity(ctx context.Context) (domain.IntegrityReport, error) {
	now := s.now()
	var r domain.IntegrityReport
	err := s.engine.View(ctx, func(st *memory.Store) error {
		r = CheckIntegrity(st, now)
		return nil
	})
	if err != nil {
		return domain.IntegrityReport{}, storageErr(err)
	}

	if r.Clean() {
		s.logger.Info("integrity check passed")
	} else {
		s.logger.Warn("integrity check found issues",
			"orphan_answers", r.OrphanAnswers,
			"orphan_completions", r.OrphanCompletions,
			"orphan_rankings", r.OrphanRankings,
			"orphan_surveys", r.OrphanSurveys,
			"orphan_sessions", r.OrphanSessions,
			"expired_sessions", r.ExpiredSessions,
			"unknown_questions", r.UnknownQuestions)
	}
	return r, nil
}

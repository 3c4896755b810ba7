package service

import (
	"context"
	"slices"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
)

// RankingOf orders the stored rankings and joins user details. Rankings
// whose user is gone are listed as Unknown.
func RankingOf(st *memory.Store) []domain.RankingEntry {
	rs := st.Rankings.Values()
	slices.SortFunc(rs, func(a, b domain.Ranking) int {
		switch {
		case a.RanksBefore(&b):
			return -1
		case b.RanksBefore(&a):
			return 1
		}
		return 0
	})

	out := make([]domain.RankingEntry, 0, len(rs))
	for i, r := range rs {
		e := domain.RankingEntry{
			Rank:         i + 1,
			UserID:       r.UserID,
			Nickname:     domain.UnknownNickname,
			AgeGroup:     domain.UnknownAgeGroup,
			Score:        r.Score,
			CorrectCount: r.CorrectCount,
		}
		if u, ok := st.Users.Get(r.UserID); ok {
			e.Nickname = u.Nickname
			e.AgeGroup = u.AgeGroup
		}
		out = append(out, e)
	}
	return out
}

// Ranking returns the current leaderboard. limit <= 0 returns everything.
func (s *QuizService) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	var out []domain.RankingEntry
	err := s.engine.View(ctx, func(st *memory.Store) error {
		out = RankingOf(st)
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

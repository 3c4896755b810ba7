package domain

import "time"

// Completion records a finished quiz. A user completes at most once.
type Completion struct {
	UserID         int       `json:"userId"`
	CompletedAt    time.Time `json:"completedAt"`
	Score          float64   `json:"score"`
	BaseScore      float64   `json:"baseScore"`
	BonusPoints    float64   `json:"bonusPoints"`
	CorrectCount   int       `json:"correctCount"`
	TotalQuestions int       `json:"totalQuestions"`
}

// ApplyBonus adds bonus points to a completion that has none yet.
// It reports whether anything changed.
func (c *Completion) ApplyBonus(points float64) bool {
	if c.BonusPoints > 0 || points <= 0 {
		return false
	}
	c.BonusPoints = points
	c.Score = c.BaseScore + points
	return true
}

// CompletionResult is returned from quiz submission.
type CompletionResult struct {
	Completion
	AlreadyCompleted bool     `json:"alreadyCompleted"`
	Answers          []Answer `json:"answers"`
}

// Ranking is the stored score used to order participants.
type Ranking struct {
	UserID       int       `json:"userId"`
	Score        float64   `json:"score"`
	CorrectCount int       `json:"correctCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RankingEntry is a ranking row joined with user details.
type RankingEntry struct {
	Rank         int     `json:"rank"`
	UserID       int     `json:"userId"`
	Nickname     string  `json:"nickname"`
	AgeGroup     string  `json:"age_group"`
	Score        float64 `json:"score"`
	CorrectCount int     `json:"correctCount"`
}

// RanksBefore reports whether r orders ahead of o: higher score first,
// then more correct answers, then lower user id for a stable order.
func (r *Ranking) RanksBefore(o *Ranking) bool {
	if r.Score != o.Score {
		return r.Score > o.Score
	}
	if r.CorrectCount != o.CorrectCount {
		return r.CorrectCount > o.CorrectCount
	}
	return r.UserID < o.UserID
}

// QuizStatus summarizes a user's progress.
type QuizStatus struct {
	IsCompleted    bool `json:"isCompleted"`
	AnsweredCount  int  `json:"answeredCount"`
	TotalQuestions int  `json:"totalQuestions"`
	Progress       int  `json:"progress"`
}

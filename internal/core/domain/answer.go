package domain

import (
	"strconv"
	"time"
)

// Answer is a user's current choice for one question. A later answer to
// the same question replaces the earlier one.
type Answer struct {
	UserID         int       `json:"userId"`
	QuestionNumber int       `json:"questionNumber,omitempty"`
	Choice         string    `json:"answer"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`

	// LegacyQuestionID is the field name used by older data files.
	LegacyQuestionID int `json:"questionId,omitempty"`
}

// Normalize folds the legacy questionId field into QuestionNumber.
func (a *Answer) Normalize() {
	if a.QuestionNumber == 0 && a.LegacyQuestionID != 0 {
		a.QuestionNumber = a.LegacyQuestionID
	}
	a.LegacyQuestionID = 0
}

// AnswerKey returns the storage key for a user's answer to a question.
func AnswerKey(userID, questionNumber int) string {
	return strconv.Itoa(userID) + "-" + strconv.Itoa(questionNumber)
}

// Progress describes how far a user is through the question set.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// NewProgress computes a rounded percentage; an empty set is 0%.
func NewProgress(completed, total int) Progress {
	p := Progress{Completed: completed, Total: total}
	if total > 0 {
		p.Percentage = int(float64(completed)*100/float64(total) + 0.5)
	}
	return p
}

// AnswerResult is returned after an answer is recorded. Explanation is
// always present.
type AnswerResult struct {
	Correct       bool     `json:"correct"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Progress      Progress `json:"progress"`
	AllCompleted  bool     `json:"allCompleted"`
}

package domain

import (
	"strings"
	"time"
)

// Choices lists the valid answer letters in display order.
var Choices = []string{"A", "B", "C", "D"}

// NormalizeChoice trims and upper-cases an answer letter.
func NormalizeChoice(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidChoice reports whether s is one of A-D.
func ValidChoice(s string) bool {
	switch s {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// Question is one multiple-choice question. ID is the storage key,
// Number is what clients answer against.
type Question struct {
	ID            int        `json:"id"`
	Number        int        `json:"question_number"`
	Text          string     `json:"question_text"`
	ChoiceA       string     `json:"choice_a"`
	ChoiceB       string     `json:"choice_b"`
	ChoiceC       string     `json:"choice_c"`
	ChoiceD       string     `json:"choice_d"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   string     `json:"explanation"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// PublicQuestion is served to participants; it omits the answer and explanation.
type PublicQuestion struct {
	ID      int    `json:"id"`
	Number  int    `json:"question_number"`
	Text    string `json:"question_text"`
	ChoiceA string `json:"choice_a"`
	ChoiceB string `json:"choice_b"`
	ChoiceC string `json:"choice_c"`
	ChoiceD string `json:"choice_d"`
}

// Public returns the participant-facing view.
func (q *Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:      q.ID,
		Number:  q.Number,
		Text:    q.Text,
		ChoiceA: q.ChoiceA,
		ChoiceB: q.ChoiceB,
		ChoiceC: q.ChoiceC,
		ChoiceD: q.ChoiceD,
	}
}

// Validate checks the question fields. Uniqueness of Number is checked
// by the service against the store.
func (q *Question) Validate() error {
	q.CorrectAnswer = NormalizeChoice(q.CorrectAnswer)
	if q.Number <= 0 {
		return ErrInvalidArgument.WithDetails("question_number must be positive")
	}
	if strings.TrimSpace(q.Text) == "" {
		return ErrMissingArgument.WithDetails("question_text is required")
	}
	for _, c := range []string{q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD} {
		if strings.TrimSpace(c) == "" {
			return ErrMissingArgument.WithDetails("all four choices are required")
		}
	}
	if !ValidChoice(q.CorrectAnswer) {
		return ErrInvalidChoice.WithDetails("correct_answer")
	}
	return nil
}

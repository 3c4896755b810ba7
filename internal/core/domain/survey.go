package domain

import "time"

// MaxFeedbackLength bounds the free-text survey answer (in runes).
const MaxFeedbackLength = 2000

// SurveyAnswer is a user's post-quiz feedback. One per user.
type SurveyAnswer struct {
	UserID      int       `json:"userId"`
	Feedback    string    `json:"feedback"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SurveyStatus reports whether the survey was submitted.
type SurveyStatus struct {
	Completed bool `json:"completed"`
}

package memory

import (
	"slices"

	"github.com/yndnr/quizrally-go/internal/core/domain"
)

// Table names as they appear in the snapshot file.
const (
	TableUsers       = "users"
	TableQuestions   = "questions"
	TableAnswers     = "userAnswers"
	TableSessions    = "quizSessions"
	TableRankings    = "rankings"
	TableSurveys     = "surveyAnswers"
	TableCompletions = "quizCompletions"
)

// TableNames lists every table in snapshot order.
var TableNames = []string{
	TableUsers,
	TableQuestions,
	TableAnswers,
	TableSessions,
	TableRankings,
	TableSurveys,
	TableCompletions,
}

// Store is the full in-memory table set.
type Store struct {
	Users       *Table[int, domain.User]
	Questions   *Table[int, domain.Question]
	Answers     *Table[string, domain.Answer]
	Sessions    *Table[string, domain.Session]
	Rankings    *Table[int, domain.Ranking]
	Surveys     *Table[int, domain.SurveyAnswer]
	Completions *Table[int, domain.Completion]

	onMutate func(table string)
}

// Option configures the Store.
type Option func(*Store)

// WithMutationHook sets the function called after every mutation.
func WithMutationHook(fn func(table string)) Option {
	return func(s *Store) {
		s.onMutate = fn
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}

	s.Users = newTable[int, domain.User](TableUsers, s.mutated)
	s.Questions = newTable[int, domain.Question](TableQuestions, s.mutated)
	s.Answers = newTable[string, domain.Answer](TableAnswers, s.mutated)
	s.Sessions = newTable[string, domain.Session](TableSessions, s.mutated)
	s.Rankings = newTable[int, domain.Ranking](TableRankings, s.mutated)
	s.Surveys = newTable[int, domain.SurveyAnswer](TableSurveys, s.mutated)
	s.Completions = newTable[int, domain.Completion](TableCompletions, s.mutated)
	return s
}

func (s *Store) mutated(table string) {
	if s.onMutate != nil {
		s.onMutate(table)
	}
}

// Reset empties every table without notifying the hook.
func (s *Store) Reset() {
	s.Users.Replace(nil)
	s.Questions.Replace(nil)
	s.Answers.Replace(nil)
	s.Sessions.Replace(nil)
	s.Rankings.Replace(nil)
	s.Surveys.Replace(nil)
	s.Completions.Replace(nil)
}

// Counts returns the number of records per table.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		TableUsers:       s.Users.Len(),
		TableQuestions:   s.Questions.Len(),
		TableAnswers:     s.Answers.Len(),
		TableSessions:    s.Sessions.Len(),
		TableRankings:    s.Rankings.Len(),
		TableSurveys:     s.Surveys.Len(),
		TableCompletions: s.Completions.Len(),
	}
}

// NextUserID returns one more than the highest user id (1 for an empty table).
func (s *Store) NextUserID() int {
	return nextID(s.Users.Keys())
}

// NextQuestionID returns one more than the highest question id.
func (s *Store) NextQuestionID() int {
	return nextID(s.Questions.Keys())
}

func nextID(keys []int) int {
	if len(keys) == 0 {
		return 1
	}
	return max(keys[len(keys)-1], 0) + 1
}

// UserByNickname finds a user by exact nickname.
func (s *Store) UserByNickname(nickname string) (domain.User, bool) {
	for _, u := range s.Users.All() {
		if u.Nickname == nickname {
			return u, true
		}
	}
	return domain.User{}, false
}

// QuestionByNumber finds a question by its question number.
func (s *Store) QuestionByNumber(number int) (domain.Question, bool) {
	for _, q := range s.Questions.All() {
		if q.Number == number {
			return q, true
		}
	}
	return domain.Question{}, false
}

// QuestionsByNumber returns all questions ordered by question number.
func (s *Store) QuestionsByNumber() []domain.Question {
	qs := s.Questions.Values()
	slices.SortStableFunc(qs, func(a, b domain.Question) int {
		return a.Number - b.Number
	})
	return qs
}

// AnswersOf returns a user's answers ordered by question number.
func (s *Store) AnswersOf(userID int) []domain.Answer {
	var out []domain.Answer
	for _, a := range s.Answers.All() {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Answer) int {
		return a.QuestionNumber - b.QuestionNumber
	})
	return out
}

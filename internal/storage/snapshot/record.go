package snapshot

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
)

// Pair is one [key, record] entry of a table.
type Pair[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// MarshalJSON encodes the pair as a two-element array.
func (p Pair[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Key, p.Value})
}

// UnmarshalJSON decodes a two-element array.
func (p *Pair[K, V]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("pair: want 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return fmt.Errorf("pair key: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(raw[1]), []byte("null")) {
		return fmt.Errorf("pair %v: null record", p.Key)
	}
	if err := json.Unmarshal(raw[1], &p.Value); err != nil {
		return fmt.Errorf("pair %v: %w", p.Key, err)
	}
	return nil
}

// Record is the serialized form of the whole store.
type Record struct {
	Users       []Pair[int, domain.User]         `json:"users"`
	Questions   []Pair[int, domain.Question]     `json:"questions"`
	Answers     []Pair[string, domain.Answer]    `json:"userAnswers"`
	Sessions    []Pair[string, domain.Session]   `json:"quizSessions"`
	Rankings    []Pair[int, domain.Ranking]      `json:"rankings"`
	Surveys     []Pair[int, domain.SurveyAnswer] `json:"surveyAnswers"`
	Completions []Pair[int, domain.Completion]   `json:"quizCompletions"`
	Timestamp   time.Time                        `json:"timestamp"`
}

func pairs[K cmp.Ordered, V any](t *memory.Table[K, V]) []Pair[K, V] {
	out := make([]Pair[K, V], 0, t.Len())
	for k, v := range t.All() {
		out = append(out, Pair[K, V]{Key: k, Value: v})
	}
	return out
}

func toMap[K cmp.Ordered, V any](ps []Pair[K, V]) map[K]V {
	m := make(map[K]V, len(ps))
	for _, p := range ps {
		m[p.Key] = p.Value
	}
	return m
}

// Capture copies the current store contents into a new record.
func Capture(s *memory.Store, now time.Time) *Record {
	return &Record{
		Users:       pairs(s.Users),
		Questions:   pairs(s.Questions),
		Answers:     pairs(s.Answers),
		Sessions:    pairs(s.Sessions),
		Rankings:    pairs(s.Rankings),
		Surveys:     pairs(s.Surveys),
		Completions: pairs(s.Completions),
		Timestamp:   now.UTC(),
	}
}

// Apply replaces the store contents with the record without notifying
// the store's mutation hook. Answers written by older versions carry
// questionId instead of questionNumber; they are normalized and re-keyed.
func (r *Record) Apply(s *memory.Store) {
	answers := make(map[string]domain.Answer, len(r.Answers))
	for _, p := range r.Answers {
		a := p.Value
		a.Normalize()
		key := p.Key
		if a.UserID != 0 && a.QuestionNumber != 0 {
			key = domain.AnswerKey(a.UserID, a.QuestionNumber)
		}
		answers[key] = a
	}

	s.Users.Replace(toMap(r.Users))
	s.Questions.Replace(toMap(r.Questions))
	s.Answers.Replace(answers)
	s.Sessions.Replace(toMap(r.Sessions))
	s.Rankings.Replace(toMap(r.Rankings))
	s.Surveys.Replace(toMap(r.Surveys))
	s.Completions.Replace(toMap(r.Completions))
}

// Counts returns the number of entries per table.
func (r *Record) Counts() map[string]int {
	return map[string]int{
		memory.TableUsers:       len(r.Users),
		memory.TableQuestions:   len(r.Questions),
		memory.TableAnswers:     len(r.Answers),
		memory.TableSessions:    len(r.Sessions),
		memory.TableRankings:    len(r.Rankings),
		memory.TableSurveys:     len(r.Surveys),
		memory.TableCompletions: len(r.Completions),
	}
}

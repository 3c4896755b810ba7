package mirror

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yndnr/quizrally-go/internal/core/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY,
	nickname      TEXT NOT NULL,
	real_name     TEXT NOT NULL DEFAULT '',
	age_group     TEXT NOT NULL DEFAULT '',
	gender        TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	is_admin      INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS questions (
	id              INTEGER PRIMARY KEY,
	question_number INTEGER NOT NULL,
	question_text   TEXT NOT NULL,
	choice_a        TEXT NOT NULL,
	choice_b        TEXT NOT NULL,
	choice_c        TEXT NOT NULL,
	choice_d        TEXT NOT NULL,
	correct_answer  TEXT NOT NULL,
	explanation     TEXT NOT NULL DEFAULT '',
	created_at      TEXT
);
CREATE TABLE IF NOT EXISTS user_answers (
	user_id         INTEGER NOT NULL,
	question_number INTEGER NOT NULL,
	answer          TEXT NOT NULL,
	is_correct      INTEGER NOT NULL,
	answered_at     TEXT NOT NULL,
	PRIMARY KEY (user_id, question_number)
);
CREATE TABLE IF NOT EXISTS quiz_completions (
	user_id         INTEGER PRIMARY KEY,
	score           REAL NOT NULL,
	base_score      REAL NOT NULL,
	bonus_points    REAL NOT NULL,
	correct_count   INTEGER NOT NULL,
	total_questions INTEGER NOT NULL,
	completed_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rankings (
	user_id       INTEGER PRIMARY KEY,
	score         REAL NOT NULL,
	correct_count INTEGER NOT NULL,
	updated_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS survey_answers (
	user_id      INTEGER PRIMARY KEY,
	feedback     TEXT NOT NULL,
	submitted_at TEXT NOT NULL
);
`

// SQLite mirrors records into relational tables.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("mirror: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("mirror: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("mirror: open sqlite: %w", err)
	}
	// Saves arrive from one worker; a single connection avoids lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("mirror: apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SaveUser implements Sink.
func (s *SQLite) SaveUser(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, nickname, real_name, age_group, gender, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			nickname = excluded.nickname,
			real_name = excluded.real_name,
			age_group = excluded.age_group,
			gender = excluded.gender,
			password_hash = excluded.password_hash,
			is_admin = excluded.is_admin`,
		u.ID, u.Nickname, u.RealName, u.AgeGroup, u.Gender, u.PasswordHash, boolInt(u.IsAdmin), ts(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("mirror: save user %d: %w", u.ID, err)
	}
	return nil
}

// SaveQuestion implements Sink.
func (s *SQLite) SaveQuestion(ctx context.Context, q domain.Question) error {
	var created any
	if q.CreatedAt != nil {
		created = ts(*q.CreatedAt)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO questions (id, question_number, question_text, choice_a, choice_b, choice_c, choice_d, correct_answer, explanation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question_number = excluded.question_number,
			question_text = excluded.question_text,
			choice_a = excluded.choice_a,
			choice_b = excluded.choice_b,
			choice_c = excluded.choice_c,
			choice_d = excluded.choice_d,
			correct_answer = excluded.correct_answer,
			explanation = excluded.explanation`,
		q.ID, q.Number, q.Text, q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD, q.CorrectAnswer, q.Explanation, created)
	if err != nil {
		return fmt.Errorf("mirror: save question %d: %w", q.ID, err)
	}
	return nil
}

// SaveAnswer implements Sink.
func (s *SQLite) SaveAnswer(ctx context.Context, a domain.Answer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_answers (user_id, question_number, answer, is_correct, answered_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, question_number) DO UPDATE SET
			answer = excluded.answer,
			is_correct = excluded.is_correct,
			answered_at = excluded.answered_at`,
		a.UserID, a.QuestionNumber, a.Choice, boolInt(a.IsCorrect), ts(a.AnsweredAt))
	if err != nil {
		return fmt.Errorf("mirror: save answer %d-%d: %w", a.UserID, a.QuestionNumber, err)
	}
	return nil
}

// SaveCompletion implements Sink.
func (s *SQLite) SaveCompletion(ctx context.Context, c domain.Completion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_completions (user_id, score, base_score, bonus_points, correct_count, total_questions, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			score = excluded.score,
			base_score = excluded.base_score,
			bonus_points = excluded.bonus_points,
			correct_count = excluded.correct_count,
			total_questions = excluded.total_questions,
			completed_at = excluded.completed_at`,
		c.UserID, c.Score, c.BaseScore, c.BonusPoints, c.CorrectCount, c.TotalQuestions, ts(c.CompletedAt))
	if err != nil {
		return fmt.Errorf("mirror: save completion %d: %w", c.UserID, err)
	}
	return nil
}

// SaveRanking implements Sink.
func (s *SQLite) SaveRanking(ctx context.Context, r domain.Ranking) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rankings (user_id, score, correct_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			score = excluded.score,
			correct_count = excluded.correct_count,
			updated_at = excluded.updated_at`,
		r.UserID, r.Score, r.CorrectCount, ts(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("mirror: save ranking %d: %w", r.UserID, err)
	}
	return nil
}

// SaveSurvey implements Sink.
func (s *SQLite) SaveSurvey(ctx context.Context, sv domain.SurveyAnswer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO survey_answers (user_id, feedback, submitted_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			feedback = excluded.feedback,
			submitted_at = excluded.submitted_at`,
		sv.UserID, sv.Feedback, ts(sv.SubmittedAt))
	if err != nil {
		return fmt.Errorf("mirror: save survey %d: %w", sv.UserID, err)
	}
	return nil
}

// Count returns the number of rows in table. Used by sync reports.
func (s *SQLite) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case "users", "questions", "user_answers", "quiz_completions", "rankings", "survey_answers":
	default:
		return 0, fmt.Errorf("mirror: unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close implements Sink.
func (s *SQLite) Close() error {
	return s.db.Close()
}

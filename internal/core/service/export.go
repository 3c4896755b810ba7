package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
)

// ExportKind names a CSV export.
type ExportKind string

// Export kinds.
const (
	ExportScores    ExportKind = "scores"
	ExportSurvey    ExportKind = "survey"
	ExportQuestions ExportKind = "questions"
	ExportFull      ExportKind = "full"
)

// ExportKinds lists the supported exports.
var ExportKinds = []ExportKind{ExportScores, ExportSurvey, ExportQuestions, ExportFull}

// ParseExportKind validates an export name.
func ParseExportKind(s string) (ExportKind, error) {
	for _, k := range ExportKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown export %q", s))
}

// FileName is the suggested download name.
func (k ExportKind) FileName() string {
	if k == ExportFull {
		return "full_data.csv"
	}
	return string(k) + ".csv"
}

// utf8BOM lets spreadsheet software detect the encoding.
const utf8BOM = "\ufeff"

const exportTimeLayout = "2006/1/2 15:04:05"

// notCompleted is shown for ranked users without a completion record.
const notCompleted = "未完了"

// WriteExport renders one CSV export of st to w.
func WriteExport(w io.Writer, kind ExportKind, st *memory.Store, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	var rows [][]string
	switch kind {
	case ExportScores:
		rows = scoreRows(st, loc)
	case ExportSurvey:
		rows = surveyRows(st, loc)
	case ExportQuestions:
		rows = questionRows(st)
	case ExportFull:
		rows = fullRows(st, loc)
	default:
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown export %q", kind))
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func completedAt(st *memory.Store, userID int, loc *time.Location) (domain.Completion, string) {
	c, ok := st.Completions.Get(userID)
	if !ok {
		return c, notCompleted
	}
	return c, c.CompletedAt.In(loc).Format(exportTimeLayout)
}

func questionTotal(st *memory.Store, c domain.Completion) int {
	if c.TotalQuestions > 0 {
		return c.TotalQuestions
	}
	return st.Questions.Len()
}

func scoreRows(st *memory.Store, loc *time.Location) [][]string {
	rows := [][]string{{"順位", "ニックネーム", "年齢層", "スコア", "正解数", "完了日時"}}
	for _, e := range RankingOf(st) {
		c, at := completedAt(st, e.UserID, loc)
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			e.Nickname,
			e.AgeGroup,
			formatScore(e.Score),
			fmt.Sprintf("%d/%d", e.CorrectCount, questionTotal(st, c)),
			at,
		})
	}
	return rows
}

func surveyRows(st *memory.Store, loc *time.Location) [][]string {
	rows := [][]string{{"ユーザーID", "ニックネーム", "感想", "アンケート回答日時"}}
	for id, sv := range st.Surveys.All() {
		nickname := domain.UnknownNickname
		if u, ok := st.Users.Get(id); ok {
			nickname = u.Nickname
		}
		rows = append(rows, []string{
			strconv.Itoa(id),
			nickname,
			sv.Feedback,
			sv.SubmittedAt.In(loc).Format(exportTimeLayout),
		})
	}
	return rows
}

func questionRows(st *memory.Store) [][]string {
	type tally struct{ answered, correct int }
	stats := make(map[int]*tally)
	for _, a := range st.Answers.All() {
		t := stats[a.QuestionNumber]
		if t == nil {
			t = &tally{}
			stats[a.QuestionNumber] = t
		}
		t.answered++
		if a.IsCorrect {
			t.correct++
		}
	}

	rows := [][]string{{"問題番号", "問題文", "正解率", "選択肢A", "選択肢B", "選択肢C", "選択肢D"}}
	for _, q := range st.QuestionsByNumber() {
		rate := 0
		if t := stats[q.Number]; t != nil && t.answered > 0 {
			rate = domain.NewProgress(t.correct, t.answered).Percentage
		}
		rows = append(rows, []string{
			strconv.Itoa(q.Number),
			q.Text,
			strconv.Itoa(rate) + "%",
			q.ChoiceA,
			q.ChoiceB,
			q.ChoiceC,
			q.ChoiceD,
		})
	}
	return rows
}

// fullRows extends the score export with the score breakdown and the
// survey answer of each ranked user.
func fullRows(st *memory.Store, loc *time.Location) [][]string {
	rows := [][]string{{"順位", "ユーザーID", "ニックネーム", "年齢層", "スコア", "基本スコア", "ボーナス", "正解数", "完了日時", "感想"}}
	for _, e := range RankingOf(st) {
		c, at := completedAt(st, e.UserID, loc)
		feedback := ""
		if sv, ok := st.Surveys.Get(e.UserID); ok {
			feedback = sv.Feedback
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			strconv.Itoa(e.UserID),
			e.Nickname,
			e.AgeGroup,
			formatScore(e.Score),
			formatScore(c.BaseScore),
			strconv.FormatFloat(c.BonusPoints, 'f', -1, 64),
			fmt.Sprintf("%d/%d", e.CorrectCount, questionTotal(st, c)),
			at,
			feedback,
		})
	}
	return rows
}

// Export renders a CSV export of the live store.
func (s *QuizService) Export(ctx context.Context, kind ExportKind) ([]byte, error) {
	var buf bytes.Buffer
	err := s.engine.View(ctx, func(st *memory.Store) error {
		return WriteExport(&buf, kind, st, time.Local)
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return buf.Bytes(), nil
}

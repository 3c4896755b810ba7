package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/infra/clock"
	"github.com/yndnr/quizrally-go/internal/server/httpserver/handler"
	"github.com/yndnr/quizrally-go/internal/storage"
	"github.com/yndnr/quizrally-go/internal/telemetry/logger"
)

func TestMain(m *testing.M) {
	// The badger mirror links glog, whose flush daemon runs for the life
	// of the process.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/golang/glog.(*loggingT).flushDaemon"),
	)
}

type apiFixture struct {
	router http.Handler
	dir    string
}

func newAPIFixture(t *testing.T, mutate func(*RouterConfig)) *apiFixture {
	t.Helper()
	dir := t.TempDir()
	clk := clock.NewManual(time.Date(2025, 8, 10, 9, 0, 0, 0, time.UTC))

	ecfg := storage.DefaultConfig(dir)
	ecfg.Clock = clk
	ecfg.Logger = logger.Discard()
	engine, err := storage.New(ecfg)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { _ = engine.Close(context.Background()) })

	seed, err := service.NewSeeder(service.DefaultSeedConfig(), clk.Now())
	if err != nil {
		t.Fatalf("NewSeeder() error = %v", err)
	}
	if _, err := engine.Recover(context.Background(), seed); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	svc := service.NewQuizService(engine, service.WithClock(clk), service.WithLogger(logger.Discard()))
	cfg := &RouterConfig{Service: svc, Logger: logger.Discard()}
	if mutate != nil {
		mutate(cfg)
	}
	return &apiFixture{router: NewRouter(cfg), dir: dir}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) login(t *testing.T, nickname, password string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Nickname: nickname, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d body = %s", nickname, rec.Code, rec.Body.String())
	}
	var res domain.LoginResult
	decodeData(t, rec, &res)
	return res.Token
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Code string          `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	if env.Code != "OK" {
		t.Fatalf("envelope code = %q, want OK (body %s)", env.Code, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if got := errorCode(t, rec); got != code {
		t.Errorf("code = %q, want %q", got, code)
	}
}

func TestRouter_Health(t *testing.T) {
	f := newAPIFixture(t, nil)

	for _, path := range []string{"/health", "/ready"} {
		rec := f.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d", path, rec.Code)
		}
		var data map[string]string
		decodeData(t, rec, &data)
		if data["status"] == "" {
			t.Errorf("GET %s: missing status", path)
		}
	}

	expectError(t, f.do(t, http.MethodGet, "/nope", "", nil), http.StatusNotFound, "QR-SYS-4040")
}

func TestRouter_Metrics(t *testing.T) {
	f := newAPIFixture(t, func(c *RouterConfig) {
		c.Metrics = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("quizrally_up 1\n"))
		})
	})
	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "quizrally_up") {
		t.Errorf("GET /metrics: status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_AuthFlow(t *testing.T) {
	f := newAPIFixture(t, nil)

	expectError(t, f.do(t, http.MethodPost, "/api/auth/login", "", handler.LoginRequest{Nickname: "test", Password: "wrong"}),
		http.StatusUnauthorized, "QR-AUTH-4011")
	expectError(t, f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"nickname": "x", "password": "secret"}),
		http.StatusForbidden, "QR-USER-4030")
	expectError(t, f.do(t, http.MethodGet, "/api/quiz/questions", "", nil),
		http.StatusUnauthorized, "QR-AUTH-4010")

	token := f.login(t, "test", "test123")
	if !strings.HasPrefix(token, "qrs_") {
		t.Errorf("token = %q, want qrs_ prefix", token)
	}

	rec := f.do(t, http.MethodGet, "/api/quiz/questions", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("questions: status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "correct_answer") || strings.Contains(rec.Body.String(), "explanation") {
		t.Error("participant question list leaks answers")
	}
	var qs []domain.PublicQuestion
	decodeData(t, rec, &qs)
	if len(qs) != 10 {
		t.Errorf("questions = %d, want 10", len(qs))
	}

	if rec := f.do(t, http.MethodPost, "/api/auth/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	expectError(t, f.do(t, http.MethodGet, "/api/quiz/questions", token, nil),
		http.StatusUnauthorized, "QR-AUTH-4010")
}

func TestRouter_QuizFlow(t *testing.T) {
	f := newAPIFixture(t, nil)
	token := f.login(t, "aaa", "aaa123")

	rec := f.do(t, http.MethodPost, "/api/quiz/answer", token, map[string]any{"questionNumber": 1, "answer": "a"})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var res domain.AnswerResult
	decodeData(t, rec, &res)
	if !res.Correct || res.CorrectAnswer != "A" || res.Explanation == "" {
		t.Errorf("answer result = %+v", res)
	}
	if res.Progress.Completed != 1 || res.Progress.Total != 10 || res.AllCompleted {
		t.Errorf("progress = %+v allCompleted = %v", res.Progress, res.AllCompleted)
	}

	rec = f.do(t, http.MethodPost, "/api/quiz/save-answer", token, map[string]any{"questionNumber": 2, "answer": " c "})
	var saved handler.SavedAnswerResponse
	decodeData(t, rec, &saved)
	if saved.Answer != "C" || saved.QuestionNumber != 2 || saved.CorrectAnswer != "B" || saved.Correct {
		t.Errorf("saved answer = %+v", saved)
	}

	expectError(t, f.do(t, http.MethodPost, "/api/quiz/answer", token, map[string]any{"questionNumber": 3, "answer": "E"}),
		http.StatusBadRequest, "QR-ARG-4002")
	expectError(t, f.do(t, http.MethodPost, "/api/quiz/answer", token, map[string]any{"questionNumber": 99, "answer": "A"}),
		http.StatusNotFound, "QR-QUIZ-4040")
	expectError(t, f.do(t, http.MethodPost, "/api/quiz/submit", token, nil),
		http.StatusConflict, "QR-QUIZ-4091")

	var answers handler.AnswersResponse
	decodeData(t, f.do(t, http.MethodGet, "/api/quiz/answers", token, nil), &answers)
	if answers.Total != 2 || answers.Answers[0].QuestionNumber != 1 {
		t.Errorf("answers = %+v", answers)
	}

	for num := 3; num <= 10; num++ {
		rec := f.do(t, http.MethodPost, "/api/quiz/answer", token, map[string]any{"questionNumber": num, "answer": "A"})
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %d: status = %d", num, rec.Code)
		}
	}

	var done domain.CompletionResult
	decodeData(t, f.do(t, http.MethodPost, "/api/quiz/submit", token, nil), &done)
	if done.AlreadyCompleted || done.TotalQuestions != 10 {
		t.Errorf("completion = %+v", done)
	}
	decodeData(t, f.do(t, http.MethodPost, "/api/quiz/submit", token, nil), &done)
	if !done.AlreadyCompleted {
		t.Error("second submit should report alreadyCompleted")
	}

	var status domain.QuizStatus
	decodeData(t, f.do(t, http.MethodGet, "/api/quiz/status", token, nil), &status)
	if !status.IsCompleted || status.Progress != 100 {
		t.Errorf("status = %+v", status)
	}
}

func TestRouter_StatusOfOtherUser(t *testing.T) {
	f := newAPIFixture(t, nil)
	participant := f.login(t, "aaa", "aaa123")
	admin := f.login(t, "admin", "admin123")

	if rec := f.do(t, http.MethodGet, "/api/quiz/status/3", participant, nil); rec.Code != http.StatusOK {
		t.Errorf("own status: status = %d", rec.Code)
	}
	expectError(t, f.do(t, http.MethodGet, "/api/quiz/status/2", participant, nil),
		http.StatusForbidden, "QR-AUTH-4030")
	expectError(t, f.do(t, http.MethodGet, "/api/quiz/status/abc", participant, nil),
		http.StatusBadRequest, "QR-ARG-4000")

	var status domain.QuizStatus
	decodeData(t, f.do(t, http.MethodGet, "/api/quiz/status/2", admin, nil), &status)
	if !status.IsCompleted {
		t.Errorf("seeded demo user status = %+v, want completed", status)
	}
}

func TestRouter_SurveyStatusOfOtherUser(t *testing.T) {
	f := newAPIFixture(t, nil)
	demo := f.login(t, "test", "test123")
	participant := f.login(t, "aaa", "aaa123")
	admin := f.login(t, "admin", "admin123")

	if rec := f.do(t, http.MethodPost, "/api/survey/submit", demo, map[string]string{"feedback": "ok"}); rec.Code != http.StatusCreated {
		t.Fatalf("survey: status = %d body = %s", rec.Code, rec.Body.String())
	}

	var own domain.SurveyStatus
	decodeData(t, f.do(t, http.MethodGet, "/api/survey/status/3", participant, nil), &own)
	if own.Completed {
		t.Error("participant survey should not be completed")
	}
	expectError(t, f.do(t, http.MethodGet, "/api/survey/status/2", participant, nil),
		http.StatusForbidden, "QR-AUTH-4030")
	expectError(t, f.do(t, http.MethodGet, "/api/survey/status/x", participant, nil),
		http.StatusBadRequest, "QR-ARG-4000")

	var other domain.SurveyStatus
	decodeData(t, f.do(t, http.MethodGet, "/api/survey/status/2", admin, nil), &other)
	if !other.Completed {
		t.Error("admin should see the demo user's completed survey")
	}
}

func TestRouter_SurveyAndRanking(t *testing.T) {
	f := newAPIFixture(t, nil)
	token := f.login(t, "test", "test123")

	rec := f.do(t, http.MethodPost, "/api/survey/submit", token, map[string]string{"feedback": "楽しかった"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("survey: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var sres service.SurveyResult
	decodeData(t, rec, &sres)
	if !sres.BonusApplied {
		t.Error("bonus should apply to the already completed demo quiz")
	}
	expectError(t, f.do(t, http.MethodPost, "/api/survey/submit", token, map[string]string{"feedback": "again"}),
		http.StatusConflict, "QR-SURV-4090")

	var ss domain.SurveyStatus
	decodeData(t, f.do(t, http.MethodGet, "/api/survey/status", token, nil), &ss)
	if !ss.Completed {
		t.Error("survey status should be completed")
	}

	var ranking handler.RankingResponse
	decodeData(t, f.do(t, http.MethodGet, "/api/ranking?limit=5", "", nil), &ranking)
	if len(ranking.Entries) != 1 {
		t.Fatalf("ranking entries = %d, want 1", len(ranking.Entries))
	}
	top := ranking.Entries[0]
	if top.Rank != 1 || top.Nickname != "test" || top.Score != sres.Score {
		t.Errorf("top entry = %+v, survey score = %v", top, sres.Score)
	}
	expectError(t, f.do(t, http.MethodGet, "/api/ranking?limit=-1", "", nil),
		http.StatusBadRequest, "QR-ARG-4000")
}

func TestRouter_Admin(t *testing.T) {
	f := newAPIFixture(t, nil)
	participant := f.login(t, "aaa", "aaa123")
	admin := f.login(t, "admin", "admin123")

	expectError(t, f.do(t, http.MethodGet, "/api/admin/users", participant, nil),
		http.StatusForbidden, "QR-AUTH-4030")

	var users handler.UsersResponse
	decodeData(t, f.do(t, http.MethodGet, "/api/admin/users", admin, nil), &users)
	if len(users.Users) != 3 {
		t.Errorf("users = %d, want 3", len(users.Users))
	}
	if strings.Contains(f.do(t, http.MethodGet, "/api/admin/users", admin, nil).Body.String(), "argon2") {
		t.Error("user list leaks password hashes")
	}

	newUser := map[string]any{"nickname": "guest01", "password": "pw1234", "age_group": "adult"}
	rec := f.do(t, http.MethodPost, "/api/admin/users", admin, newUser)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var created domain.UserView
	decodeData(t, rec, &created)
	if created.ID != 4 {
		t.Errorf("created id = %d, want 4", created.ID)
	}
	expectError(t, f.do(t, http.MethodPost, "/api/admin/users", admin, newUser),
		http.StatusConflict, "QR-USER-4090")
	f.login(t, "guest01", "pw1234")

	q := map[string]any{
		"question_number": 11, "question_text": "追加問題",
		"choice_a": "1", "choice_b": "2", "choice_c": "3", "choice_d": "4",
		"correct_answer": "d", "explanation": "4です",
	}
	if rec := f.do(t, http.MethodPost, "/api/admin/questions", admin, q); rec.Code != http.StatusCreated {
		t.Fatalf("add question: status = %d body = %s", rec.Code, rec.Body.String())
	}
	expectError(t, f.do(t, http.MethodPost, "/api/admin/questions", admin, q),
		http.StatusConflict, "QR-QUIZ-4090")

	var integrity struct {
		Clean bool `json:"clean"`
	}
	decodeData(t, f.do(t, http.MethodGet, "/api/admin/integrity", admin, nil), &integrity)
	if !integrity.Clean {
		t.Error("seeded store should be clean")
	}

	var status map[string]json.RawMessage
	decodeData(t, f.do(t, http.MethodGet, "/api/admin/status", admin, nil), &status)
	for _, key := range []string{"build", "storage"} {
		if _, ok := status[key]; !ok {
			t.Errorf("status missing %q", key)
		}
	}

	if rec := f.do(t, http.MethodPost, "/api/admin/flush", admin, nil); rec.Code != http.StatusOK {
		t.Fatalf("flush: status = %d", rec.Code)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "database.json")); err != nil {
		t.Errorf("snapshot file after flush: %v", err)
	}
}

func TestRouter_Export(t *testing.T) {
	f := newAPIFixture(t, nil)
	admin := f.login(t, "admin", "admin123")

	rec := f.do(t, http.MethodGet, "/api/admin/export/scores", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status = %d body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "scores.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "\ufeff") {
		t.Error("export should start with a UTF-8 BOM")
	}

	if cd := f.do(t, http.MethodGet, "/api/admin/export/full", admin, nil).Header().Get("Content-Disposition"); !strings.Contains(cd, "full_data.csv") {
		t.Errorf("full export Content-Disposition = %q", cd)
	}
	expectError(t, f.do(t, http.MethodGet, "/api/admin/export/everything", admin, nil),
		http.StatusBadRequest, "QR-ARG-4000")
}

func TestRouter_StaticFiles(t *testing.T) {
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>quiz</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := newAPIFixture(t, func(c *RouterConfig) { c.StaticDir = static })

	if body := f.do(t, http.MethodGet, "/app.js", "", nil).Body.String(); body != "console.log(1)" {
		t.Errorf("GET /app.js = %q", body)
	}
	if body := f.do(t, http.MethodGet, "/ranking", "", nil).Body.String(); !strings.Contains(body, "quiz") {
		t.Errorf("client route fallback = %q", body)
	}
	expectError(t, f.do(t, http.MethodGet, "/api/unknown", "", nil), http.StatusNotFound, "QR-SYS-4040")
	if rec := f.do(t, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("GET /health with static dir: status = %d", rec.Code)
	}
}

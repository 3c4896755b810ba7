package httpserver

import (
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Service implements the quiz operations.
	Service *service.QuizService

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics serves GET /metrics when set.
	Metrics http.Handler

	// Observer receives per-request metrics. Optional.
	Observer RequestObserver

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// RateLimit is the per-IP rate limit in requests per second. 0 disables it.
	RateLimit float64
	RateBurst int

	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix

	// StaticDir is served for paths outside /api when set.
	StaticDir string
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Middleware order: RequestID -> RealIP -> Audit -> Recover -> CORS -> RateLimit -> route.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	h := handler.New(cfg.Service, log)

	r := chi.NewRouter()
	r.Use(
		RequestID(log),
		RealIP(cfg.TrustedProxies),
		Audit(cfg.Observer),
		Recover(),
		CORS(cfg.CORSAllowedOrigins),
		RateLimit(cfg.RateLimit, cfg.RateBurst),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, domain.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, domain.ErrBadRequest.WithDetails("method not allowed"))
	})

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/ranking", h.Ranking)

		r.Group(func(r chi.Router) {
			r.Use(Auth(cfg.Service))

			r.Get("/quiz/questions", h.Questions)
			r.Post("/quiz/answer", h.Answer)
			r.Post("/quiz/save-answer", h.SaveAnswer)
			r.Get("/quiz/answers", h.Answers)
			r.Post("/quiz/submit", h.Submit)
			r.Get("/quiz/status", h.Status)
			r.Get("/quiz/status/{userID}", h.Status)

			r.Post("/survey/submit", h.SubmitSurvey)
			r.Get("/survey/status", h.SurveyStatus)
			r.Get("/survey/status/{userID}", h.SurveyStatus)

			r.Route("/admin", func(r chi.Router) {
				r.Use(AdminAuth())

				r.Post("/users", h.CreateUser)
				r.Get("/users", h.ListUsers)
				r.Post("/questions", h.AddQuestion)
				r.Get("/integrity", h.Integrity)
				r.Get("/status", h.SystemStatus)
				r.Post("/flush", h.Flush)
				r.Get("/export/{kind}", h.Export)
			})
		})
	})

	if cfg.StaticDir != "" {
		r.Handle("/*", staticFiles(cfg.StaticDir))
	}

	return r
}

// staticFiles serves dir, falling back to index.html for unknown paths
// so client-side routes load the app.
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			handler.WriteError(w, r, domain.ErrNotFound)
			return
		}
		clean := filepath.FromSlash(filepath.Clean("/" + r.URL.Path))
		if _, err := os.Stat(filepath.Join(dir, clean)); err != nil {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})
}

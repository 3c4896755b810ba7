package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/infra/buildinfo"
)

// CreateUser handles POST /api/admin/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.NewUserInput
	if err := decode(r, &in); err != nil {
		WriteError(w, r, err)
		return
	}
	user, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusCreated, user)
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, UsersResponse{Users: users})
}

// AddQuestion handles POST /api/admin/questions.
func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := decode(r, &q); err != nil {
		WriteError(w, r, err)
		return
	}
	created, err := h.svc.AddQuestion(r.Context(), q)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusCreated, created)
}

// Integrity handles GET /api/admin/integrity.
func (h *Handler) Integrity(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Integrity(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, map[string]any{
		"clean":  report.Clean(),
		"report": report,
	})
}

// SystemStatus handles GET /api/admin/status.
func (h *Handler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, StatusResponse{Build: buildinfo.Get(), SystemStatus: st})
}

// Flush handles POST /api/admin/flush.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Flush(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.logger.Info("snapshot flushed on request", "path", info.Path, "size", info.Size)
	WriteJSON(w, r, http.StatusOK, FlushResponse{Info: info})
}

// Export handles GET /api/admin/export/{kind} and streams a CSV file.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	kind, err := service.ParseExportKind(chi.URLParam(r, "kind"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	data, err := h.svc.Export(r.Context(), kind)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+kind.FileName()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/prepcoach/internal/coach"
	appI18n "github.com/pavelanni/prepcoach/internal/i18n"
	"github.com/pavelanni/prepcoach/internal/model"
	"github.com/pavelanni/prepcoach/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	coach  *coach.Coach
	config model.CoachConfig
}

// New creates a new Handler.
func New(s *store.Store, c *coach.Coach, cfg model.CoachConfig) *Handler {
	return &Handler{store: s, coach: c, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/logout", h.handleLogout)
		r.Post("/api/session/start", h.handleStartSession)
		r.Post("/api/session/submit", h.handleSubmitSolution)
		r.Get("/api/plan", h.handleStudyPlan)
		r.Get("/api/progress", h.handleProgress)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/api/admin/users", h.handleListUsers)
			r.Post("/api/admin/users", h.handleCreateUser)
			r.Post("/api/admin/users/{userID}/toggle", h.handleToggleUser)
			r.Post("/api/admin/learners/{learnerID}/reset", h.handleResetProgress)
			r.Get("/api/admin/export", h.handleExport)
		})
	})
}

type startSessionRequest struct {
	SkillLevel model.SkillLevel `json:"skill_level"`
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, errors.Join(coach.ErrInvalidInput, err))
		return
	}

	result, err := h.coach.StartSession(r.Context(), user.LearnerID(), req.SkillLevel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type submitSolutionRequest struct {
	ProblemID string `json:"problem_id"`
	Code      string `json:"code"`
	Language  string `json:"language"`
}

func (h *Handler) handleSubmitSolution(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	var req submitSolutionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, errors.Join(coach.ErrInvalidInput, err))
		return
	}

	result, err := h.coach.SubmitSolution(r.Context(), user.LearnerID(), req.ProblemID, req.Code, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleStudyPlan(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	plan, err := h.coach.GetStudyPlan(r.Context(), user.LearnerID())
	if err != nil {
		writeError(w, err)
		return
	}

	// Render suggestion rules to localized strings.
	suggestions := make([]string, 0, len(plan.Suggestions))
	for _, s := range plan.Suggestions {
		suggestions = append(suggestions, appI18n.Td(r.Context(), s.ID, s.Data))
	}

	writeJSON(w, http.StatusOK, model.StudyPlan{
		Summary:          plan.Summary,
		RecommendedTopic: plan.RecommendedTopic,
		Suggestions:      suggestions,
	})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	summary, err := h.store.GetSummary(r.Context(), user.LearnerID())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the coach error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, coach.ErrInvalidInput), errors.Is(err, store.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, coach.ErrGenerationTimeout), errors.Is(err, coach.ErrEvaluationTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, coach.ErrGenerationFailed), errors.Is(err, coach.ErrEvaluationFailed):
		status = http.StatusBadGateway
	case errors.Is(err, coach.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// Package api exposes student sessions over a JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/orbit/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Handler serves the student routes.
type Handler struct {
	engine *service.Engine
	logger *slog.Logger
}

// NewHandler creates a Handler over engine. A nil logger uses slog.Default().
func NewHandler(engine *service.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

// NewRouter returns the full router with global middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(chiMiddleware.Heartbeat("/health"))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the student routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/students/{studentID}", func(r chi.Router) {
		r.Get("/dashboard", h.GetDashboard)
		r.Post("/refresh", h.Refresh)
		r.Delete("/session", h.SignOut)

		r.Post("/tasks/{taskID}/status", h.SetTaskStatus)
		r.Post("/lessons/complete", h.CompleteLesson)
		r.Post("/celebrations/dismiss", h.DismissCelebration)
		r.Post("/nudges/{nudgeID}/dismiss", h.DismissNudge)
		r.Post("/nudges/{nudgeID}/act", h.ActOnNudge)

		r.Post("/tutor/messages", h.SendTutorMessage)
		r.Delete("/tutor/sessions/{sessionID}", h.CloseTutor)
		r.Post("/tutor/explainer/dismiss", h.DismissExplainer)

		r.Get("/study-mode", h.GetStudyMode)
		r.Put("/study-mode", h.PutStudyMode)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.PutProfile)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api_encode_failed", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*service.StudentSession, bool) {
	s, err := h.engine.Open(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return s, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		Error(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "api_request_failed", "path", r.URL.Path, "error", err)
	}
	Error(w, status, err.Error())
}

func statusFor(err error) int {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

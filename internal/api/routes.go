package api

import (
	"net/http"
	"time"

	"github.com/alexanderramin/orbit/internal/content"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/guardrail"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/go-chi/chi/v5"
)

// GetDashboard renders the dashboard. Rendering consumes any pending flash.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := s.Render(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, view)
}

// Refresh refetches the dashboard record.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Refresh(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SignOut closes the session and wipes the student's state.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.SignOut(r.Context(), chi.URLParam(r, "studentID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type taskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// SetTaskStatus toggles a micro-task to the requested status or back to pending.
func (h *Handler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req taskStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	taskID := chi.URLParam(r, "taskID")
	status, err := s.ToggleTask(r.Context(), taskID, req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"taskId": taskID, "status": status})
}

// CompleteLesson reports a finished lesson and returns the published flash.
func (h *Handler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	var req content.LessonResult
	if !decodeBody(w, r, &req) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	f, err := s.CompleteLesson(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusAccepted, f)
}

// DismissCelebration dismisses the head of the celebration queue.
func (h *Handler) DismissCelebration(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	m, dismissed := s.DismissCelebration(r.Context())
	if !dismissed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	JSON(w, http.StatusOK, m)
}

// DismissNudge suppresses a nudge.
func (h *Handler) DismissNudge(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.DismissNudge(r.Context(), chi.URLParam(r, "nudgeID"))
	w.WriteHeader(http.StatusNoContent)
}

// ActOnNudge suppresses the current nudge and returns its navigation target.
func (h *Handler) ActOnNudge(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	target, err := s.ActOnNudge(r.Context(), chi.URLParam(r, "nudgeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"target": target})
}

type tutorMessageRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
	Scaffold  string `json:"scaffold"`
	LessonRef string `json:"lessonRef"`
}

type tutorMessageResponse struct {
	SessionID  string                   `json:"sessionId"`
	Text       string                   `json:"text,omitempty"`
	Blocked    bool                     `json:"blocked"`
	Category   domain.GuardrailCategory `json:"category"`
	Reminder   string                   `json:"reminder,omitempty"`
	Explainer  string                   `json:"explainer,omitempty"`
	Failure    guardrail.FailureKind    `json:"failure,omitempty"`
	Fallback   bool                     `json:"fallback,omitempty"`
	Canned     bool                     `json:"canned,omitempty"`
	Reflection string                   `json:"reflection,omitempty"`
	Plan       string                   `json:"plan,omitempty"`
	Remaining  *int                     `json:"remaining,omitempty"`
}

// SendTutorMessage runs one tutor turn.
func (h *Handler) SendTutorMessage(w http.ResponseWriter, r *http.Request) {
	var req tutorMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := s.Ask(r.Context(), service.AskRequest{
		SessionID: req.SessionID,
		Text:      req.Text,
		Scaffold:  domain.ParseScaffold(req.Scaffold),
		LessonRef: req.LessonRef,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rep := res.Reply
	JSON(w, http.StatusOK, tutorMessageResponse{
		SessionID:  res.SessionID,
		Text:       rep.Text,
		Blocked:    rep.Blocked,
		Category:   rep.Category,
		Reminder:   rep.Reminder,
		Explainer:  rep.Explainer,
		Failure:    rep.Failure,
		Fallback:   rep.Fallback,
		Canned:     rep.Canned,
		Reflection: rep.Reflection,
		Plan:       rep.Plan,
		Remaining:  rep.Remaining,
	})
}

// CloseTutor closes a tutor conversation.
func (h *Handler) CloseTutor(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.CloseTutor(chi.URLParam(r, "sessionID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DismissExplainer turns the full guardrail explainer off for the student.
func (h *Handler) DismissExplainer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.DismissExplainer(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type studyModeRequest struct {
	Enabled bool `json:"enabled"`
}

type studyModeResponse struct {
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func studyModeBody(expiresAt time.Time, active bool) studyModeResponse {
	resp := studyModeResponse{Active: active}
	if active {
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// GetStudyMode reports elevated study mode.
func (h *Handler) GetStudyMode(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, studyModeBody(s.StudyMode(r.Context())))
}

// PutStudyMode turns elevated study mode on or off.
func (h *Handler) PutStudyMode(w http.ResponseWriter, r *http.Request) {
	var req studyModeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, studyModeBody(s.SetStudyMode(r.Context(), req.Enabled)))
}

type profileBody struct {
	WeeklyIntensity domain.Intensity `json:"weeklyIntensity"`
	Intent          domain.Intent    `json:"intent"`
	LessonOnly      bool             `json:"lessonOnly"`
}

func toProfileBody(p domain.StudentProfile) profileBody {
	return profileBody{WeeklyIntensity: p.WeeklyIntensity, Intent: p.Intent, LessonOnly: p.LessonOnly}
}

// GetProfile returns the student's pacing profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, toProfileBody(s.Profile()))
}

// PutProfile replaces the student's pacing profile. Unknown values are normalized.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req profileBody
	if !decodeBody(w, r, &req) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	err := s.UpdateProfile(r.Context(), domain.StudentProfile{
		WeeklyIntensity: req.WeeklyIntensity,
		Intent:          req.Intent,
		LessonOnly:      req.LessonOnly,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, toProfileBody(s.Profile()))
}

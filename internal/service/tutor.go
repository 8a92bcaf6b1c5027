package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/tutor"
)

// AskRequest is one tutor turn. An empty or unknown SessionID starts a new
// conversation.
type AskRequest struct {
	SessionID string
	Text      string
	Scaffold  domain.Scaffold
	LessonRef string
}

// AskResult carries the reply and the conversation it belongs to.
type AskResult struct {
	SessionID string
	Reply     tutor.Reply
}

// OpenTutor starts a conversation, optionally in the context of a lesson.
func (s *StudentSession) OpenTutor(ctx context.Context, lessonRef string) (*tutor.Session, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}
	t := s.newTutor()
	s.track(ctx, "tutor_opened", map[string]any{"session_id": t.ID(), "lesson_ref": lessonRef})
	return t, nil
}

// Tutor returns an open conversation.
func (s *StudentSession) Tutor(id string) (*tutor.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tutors[id]
	return t, ok
}

// CloseTutor closes a conversation. A reply still in flight is recorded in
// its transcript but the conversation can no longer be looked up.
func (s *StudentSession) CloseTutor(id string) error {
	s.mu.Lock()
	t, ok := s.tutors[id]
	delete(s.tutors, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTutorSessionNotFound, id)
	}
	t.Close()
	return nil
}

// Ask sends one message to a conversation, opening one when needed.
func (s *StudentSession) Ask(ctx context.Context, req AskRequest) (res AskResult, err error) {
	startedAt := s.deps.Now()
	fields := map[string]any{"scaffold": string(req.Scaffold), "lesson_ref": req.LessonRef}
	defer func() { s.observe(ctx, "tutor-ask", startedAt, err, fields) }()

	if s.isClosed() {
		return AskResult{}, ErrSessionClosed
	}
	t, ok := s.Tutor(req.SessionID)
	if !ok {
		t = s.newTutor()
	}

	msg := tutor.Message{Text: req.Text, Scaffold: req.Scaffold}
	if ref := strings.TrimSpace(req.LessonRef); ref != "" {
		lesson, found := s.lesson(ref)
		if !found {
			lesson = contract.LessonMeta{Ref: ref, Title: ref}
		}
		msg.Lesson = &lesson
	}

	reply, err := t.Send(ctx, msg)
	if err != nil {
		return AskResult{SessionID: t.ID()}, fmt.Errorf("tutor turn: %w", err)
	}
	fields["blocked"] = reply.Blocked
	fields["failure"] = string(reply.Failure)
	return AskResult{SessionID: t.ID(), Reply: reply}, nil
}

// DismissExplainer stops the full guardrail explainer from showing again.
func (s *StudentSession) DismissExplainer(ctx context.Context) {
	s.throttle.DismissExplainer(ctx)
}

func (s *StudentSession) newTutor() *tutor.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := tutor.NewSession(tutor.Config{
		StudentID:    s.id,
		Persona:      s.persona,
		Profile:      s.profile,
		StudyMode:    s.studyMode.Active,
		Client:       s.deps.LLM,
		Throttle:     s.throttle,
		Catalog:      s.catalog,
		Bus:          s.bus,
		Tracker:      s.deps.Tracker,
		ReflectAfter: s.deps.ReflectAfter,
		Now:          s.deps.Now,
	})
	s.tutors[t.ID()] = t
	return t
}

func (s *StudentSession) onOpenTutor(msg bus.OpenTutorMessage) {
	if msg.StudentID != s.id || s.isClosed() {
		return
	}
	var lesson *contract.LessonMeta
	if msg.LessonRef != "" {
		l, ok := s.lesson(msg.LessonRef)
		if !ok {
			l = contract.LessonMeta{Ref: msg.LessonRef, Title: msg.LessonRef}
		}
		lesson = &l
	}
	if lesson != nil || msg.Subject != "" || msg.Concept != "" {
		if lesson == nil {
			lesson = &contract.LessonMeta{}
		}
		lesson.Subject = domain.CoalesceStr(lesson.Subject, msg.Subject)
		lesson.Concept = domain.CoalesceStr(lesson.Concept, msg.Concept)
	}

	t := s.newTutor()
	s.mu.Lock()
	s.handoff = &TutorHandoff{SessionID: t.ID(), Prompt: msg.Prompt, Lesson: lesson}
	s.mu.Unlock()
}

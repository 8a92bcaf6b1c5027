// Package service orchestrates the engagement components for one signed-in
// student at a time: plan tracking, adaptive flashes, celebrations, nudges,
// and tutor conversations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/content"
	"github.com/alexanderramin/orbit/internal/db"
	"github.com/alexanderramin/orbit/internal/guardrail"
	"github.com/alexanderramin/orbit/internal/llm"
	"github.com/alexanderramin/orbit/internal/plan"
	"github.com/alexanderramin/orbit/internal/repository"
	"github.com/alexanderramin/orbit/internal/store"
	"github.com/alexanderramin/orbit/internal/telemetry"
	"github.com/alexanderramin/orbit/internal/tutor"
)

// Deps are the collaborators shared by every student session.
type Deps struct {
	Store     store.Store
	Tx        db.TxRunner // runs the sign-out wipe; nil removes keys one by one
	Content   content.Source
	Recompute content.Recomputer // nil uses content.LocalRecomputer
	Profiles  repository.StudentProfileRepo
	LLM       llm.LLMClient // nil answers every tutor turn with the fallback responder
	Tracker   telemetry.Tracker
	Logger    *slog.Logger
	Now       func() time.Time

	RolloverInterval  time.Duration
	ReflectAfter      time.Duration
	GuardrailCooldown time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Store == nil {
		d.Store = store.NewMemoryStore()
	}
	if d.Tracker == nil {
		d.Tracker = telemetry.Noop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.RolloverInterval <= 0 {
		d.RolloverInterval = plan.DefaultRolloverInterval
	}
	if d.ReflectAfter <= 0 {
		d.ReflectAfter = tutor.DefaultReflectAfter
	}
	if d.GuardrailCooldown <= 0 {
		d.GuardrailCooldown = guardrail.DefaultCooldown
	}
	return d
}

// Engine opens and tracks student sessions. Sessions share one message bus.
type Engine struct {
	deps     Deps
	observer UseCaseObserver
	bus      *bus.Bus

	mu       sync.Mutex
	sessions map[string]*StudentSession
}

// NewEngine creates an Engine.
func NewEngine(deps Deps, observers ...UseCaseObserver) *Engine {
	return &Engine{
		deps:     deps.withDefaults(),
		observer: useCaseObserverOrNoop(observers),
		bus:      bus.New(),
		sessions: make(map[string]*StudentSession),
	}
}

// Bus returns the bus shared by all sessions.
func (e *Engine) Bus() *bus.Bus { return e.bus }

// Open returns the live session for studentID, creating it on first use.
func (e *Engine) Open(ctx context.Context, studentID string) (*StudentSession, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrStudentIDRequired
	}

	e.mu.Lock()
	if s, ok := e.sessions[studentID]; ok {
		e.mu.Unlock()
		return s, nil
	}
	s := newStudentSession(ctx, studentID, e.deps, e.bus, e.observer)
	s.release = func() { e.forget(studentID, s) }
	e.sessions[studentID] = s
	e.mu.Unlock()

	if _, err := s.Refresh(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("opening session for %s: %w", studentID, err)
	}
	return s, nil
}

// SignOut closes the student's session, if any, and wipes their state.
func (e *Engine) SignOut(ctx context.Context, studentID string) error {
	e.mu.Lock()
	s, ok := e.sessions[studentID]
	e.mu.Unlock()
	if ok {
		return s.SignOut(ctx)
	}
	return wipe(ctx, e.deps, studentID)
}

// Close closes every open session.
func (e *Engine) Close() {
	e.mu.Lock()
	open := make([]*StudentSession, 0, len(e.sessions))
	for _, s := range e.sessions {
		open = append(open, s)
	}
	e.mu.Unlock()
	for _, s := range open {
		s.Close()
	}
}

// OpenCount reports how many sessions are live.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) forget(studentID string, s *StudentSession) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessions[studentID] == s {
		delete(e.sessions, studentID)
	}
}

func wipe(ctx context.Context, deps Deps, studentID string) error {
	if deps.Tx != nil {
		return store.WipeStudent(ctx, deps.Tx, studentID)
	}
	for _, purpose := range store.StudentPurposes {
		deps.Store.Remove(ctx, store.Key(purpose, studentID))
	}
	return nil
}

// Package tutor runs a single tutoring conversation: guardrail screening,
// instruction assembly, the generation call, and failure fallback.
package tutor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/guardrail"
	"github.com/alexanderramin/orbit/internal/llm"
	"github.com/alexanderramin/orbit/internal/telemetry"
	"github.com/google/uuid"
)

// HistoryWindow is how many trailing turns are sent with each call.
const HistoryWindow = 6

// DefaultReflectAfter is when a long session prompts a reflection.
const DefaultReflectAfter = 20 * time.Minute

// Message is one outgoing student message.
type Message struct {
	Text     string
	Scaffold domain.Scaffold
	Lesson   *contract.LessonMeta
}

// Reply is the outcome of one Send.
type Reply struct {
	Text string

	// Guardrail outcome. A blocked message is never sent or recorded.
	Blocked   bool
	Category  domain.GuardrailCategory
	Reminder  string
	Explainer string

	// Failure is set when generation failed. Fallback marks a local
	// rule-based reply; Canned marks a curated explanation.
	Failure  guardrail.FailureKind
	Fallback bool
	Canned   bool

	// Reflection holds the reflection prompt when it fired on this turn.
	Reflection string

	Plan      string
	Remaining *int
}

// Config wires a Session to its collaborators.
type Config struct {
	StudentID string
	Persona   contract.PersonaMeta
	Profile   domain.StudentProfile
	StudyMode func(context.Context) bool

	Client   llm.LLMClient // nil always falls back
	Throttle *guardrail.Throttle
	Catalog  *Catalog
	Bus      *bus.Bus
	Tracker  telemetry.Tracker

	ReflectAfter time.Duration
	Now          func() time.Time
}

// Session is one conversation. Counters and transcript live only as long
// as the session.
type Session struct {
	id  string
	cfg Config

	mu         sync.Mutex
	transcript []domain.ConversationTurn
	reflection guardrail.Reflection
	typing     bool
	closed     bool
	timer      *time.Timer
}

// NewSession starts a conversation and its long-session reflection timer.
func NewSession(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Tracker == nil {
		cfg.Tracker = telemetry.Noop{}
	}
	if cfg.Bus == nil {
		cfg.Bus = bus.New()
	}
	if cfg.ReflectAfter <= 0 {
		cfg.ReflectAfter = DefaultReflectAfter
	}
	if cfg.Persona.Name == "" {
		cfg.Persona = contract.DefaultPersona()
	}
	cfg.Profile = cfg.Profile.Normalize()

	s := &Session{id: uuid.NewString(), cfg: cfg}
	s.timer = time.AfterFunc(cfg.ReflectAfter, s.longSession)
	return s
}

// ID returns the conversation id.
func (s *Session) ID() string { return s.id }

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ConversationTurn{}, s.transcript...)
}

// Typing reports whether a generation call is in flight for an open chat surface.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Counters returns the reflection counters.
func (s *Session) Counters() guardrail.Reflection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reflection
}

// Close clears typing state and stops the reflection timer. An in-flight
// generation call is not cancelled; its reply is still recorded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.typing = false
	s.timer.Stop()
}

// Send screens and answers one student message.
func (s *Session) Send(ctx context.Context, msg Message) (Reply, error) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Reply{}, ErrSessionClosed
	}
	s.mu.Unlock()

	if s.cfg.Throttle != nil {
		d := s.cfg.Throttle.Check(ctx, text)
		if d.Blocked {
			s.track(ctx, "tutor_guardrail_triggered", map[string]any{
				"category":  string(d.Category),
				"explainer": d.ShowExplainer,
			})
			return Reply{
				Blocked:   true,
				Category:  d.Category,
				Reminder:  d.Reminder,
				Explainer: d.Explainer,
			}, nil
		}
	}

	s.mu.Lock()
	s.appendTurn(domain.RoleUser, text)
	reason, fired := s.reflection.ObserveUser(text)
	s.mu.Unlock()

	reply := Reply{Category: domain.GuardrailNone}
	if fired {
		reply.Reflection = s.publishReflection(ctx, reason)
	}

	if msg.Scaffold == domain.ScaffoldAnotherWay && msg.Lesson != nil {
		if canned, ok := s.cfg.Catalog.Lookup(msg.Lesson.Subject, msg.Lesson.Concept); ok {
			reply.Text = canned
			reply.Canned = true
			s.finish(ctx, &reply, msg.Scaffold)
			return reply, nil
		}
	}

	s.generate(ctx, msg, &reply)
	s.finish(ctx, &reply, msg.Scaffold)
	return reply, nil
}

func (s *Session) generate(ctx context.Context, msg Message, reply *Reply) {
	if s.cfg.Client == nil {
		reply.Failure = guardrail.FailureUnknown
		reply.Fallback = true
		reply.Text = guardrail.FallbackReply(msg.Text)
		return
	}

	studyMode := false
	if s.cfg.StudyMode != nil {
		studyMode = s.cfg.StudyMode(ctx)
	}
	instructions := guardrail.AssembleInstructions(guardrail.PromptContext{
		Persona:   s.cfg.Persona,
		Lesson:    msg.Lesson,
		Profile:   s.cfg.Profile,
		StudyMode: studyMode,
		Scaffold:  msg.Scaffold,
	})

	task := llm.TaskTutor
	if msg.Scaffold != domain.ScaffoldNone {
		task = llm.TaskScaffold
	}

	s.mu.Lock()
	window := s.window()
	if !s.closed {
		s.typing = true
	}
	s.mu.Unlock()

	resp, err := s.cfg.Client.Chat(ctx, llm.ChatRequest{
		Task:         task,
		Instructions: instructions,
		Messages:     window,
	})

	s.mu.Lock()
	s.typing = false
	s.mu.Unlock()

	if err == nil {
		reply.Text = resp.Text
		reply.Plan = resp.Plan
		reply.Remaining = resp.Remaining
		return
	}

	failure := guardrail.ClassifyFailure(err)
	reply.Failure = failure.Kind
	s.track(ctx, "tutor_generation_failed", map[string]any{"kind": string(failure.Kind)})
	if failure.Kind == guardrail.FailureUnknown {
		reply.Fallback = true
		reply.Text = guardrail.FallbackReply(msg.Text)
		return
	}
	reply.Text = failure.Message
}

// finish records the assistant turn and updates the hint counter. Quota and
// safety replies are not hint responses.
func (s *Session) finish(ctx context.Context, reply *Reply, mode domain.Scaffold) {
	s.mu.Lock()
	s.appendTurn(domain.RoleAssistant, reply.Text)
	var reason string
	var fired bool
	if reply.Failure == "" || reply.Failure == guardrail.FailureUnknown {
		reason, fired = s.reflection.ObserveResponse(mode)
	}
	s.mu.Unlock()

	if fired {
		reply.Reflection = s.publishReflection(ctx, reason)
	}
	s.track(ctx, "tutor_message_sent", map[string]any{
		"scaffold": string(mode),
		"fallback": reply.Fallback,
		"canned":   reply.Canned,
	})
}

func (s *Session) longSession() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	reason, fired := s.reflection.Force(bus.ReasonLongSession)
	s.mu.Unlock()
	if fired {
		s.publishReflection(context.Background(), reason)
	}
}

func (s *Session) publishReflection(ctx context.Context, reason string) string {
	s.cfg.Bus.Reflection.Publish(bus.ReflectionMessage{
		StudentID: s.cfg.StudentID,
		SessionID: s.id,
		Reason:    reason,
	})
	s.track(ctx, "tutor_reflection_prompted", map[string]any{"reason": reason})
	return guardrail.ReflectionPrompt(reason)
}

func (s *Session) appendTurn(role, content string) {
	s.transcript = append(s.transcript, domain.ConversationTurn{Role: role, Content: content, At: s.cfg.Now()})
}

// window returns the last HistoryWindow turns as chat messages.
func (s *Session) window() []llm.Message {
	turns := s.transcript
	if len(turns) > HistoryWindow {
		turns = turns[len(turns)-HistoryWindow:]
	}
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == domain.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: t.Content})
	}
	return out
}

func (s *Session) track(ctx context.Context, name string, props map[string]any) {
	props["student_id"] = s.cfg.StudentID
	props["session_id"] = s.id
	s.cfg.Tracker.Track(ctx, name, props)
}

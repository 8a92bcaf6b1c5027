package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/celebrate"
	"github.com/alexanderramin/orbit/internal/content"
	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/flash"
	"github.com/alexanderramin/orbit/internal/guardrail"
	"github.com/alexanderramin/orbit/internal/nudge"
	"github.com/alexanderramin/orbit/internal/plan"
	"github.com/alexanderramin/orbit/internal/repository"
	"github.com/alexanderramin/orbit/internal/studymode"
	"github.com/alexanderramin/orbit/internal/tutor"
)

// StudentSession is the lifecycle object for one signed-in student. It is
// created by Engine.Open and torn down by Close or SignOut; the persona,
// catalog, and dashboard caches live exactly as long as the session.
type StudentSession struct {
	id       string
	deps     Deps
	observer UseCaseObserver
	bus      *bus.Bus
	release  func()

	tracker      *plan.Tracker
	celebrations *celebrate.Deduplicator
	nudges       *nudge.Generator
	relay        *flash.Relay
	studyMode    *studymode.Mode
	throttle     *guardrail.Throttle
	catalog      *tutor.Catalog

	stopRollover func()
	unsubscribe  []func()

	mu             sync.Mutex
	closed         bool
	dashboard      *contract.Dashboard
	persona        contract.PersonaMeta
	profile        domain.StudentProfile
	lastFlash      *domain.AdaptiveFlash
	lessonAccuracy *float64
	nudge          *domain.Nudge
	navigation     *bus.NavigateMessage
	reflection     *bus.ReflectionMessage
	handoff        *TutorHandoff
	tutors         map[string]*tutor.Session
}

func newStudentSession(ctx context.Context, id string, deps Deps, b *bus.Bus, observer UseCaseObserver) *StudentSession {
	s := &StudentSession{
		id:           id,
		deps:         deps,
		observer:     observer,
		bus:          b,
		release:      func() {},
		tracker:      plan.NewTracker(deps.Store, id, deps.Now),
		celebrations: celebrate.NewDeduplicator(deps.Store, id, deps.Now),
		nudges:       nudge.NewGenerator(deps.Store, id, b),
		relay:        flash.NewRelay(deps.Store),
		studyMode:    studymode.New(deps.Store, id, deps.Now),
		throttle:     guardrail.NewThrottle(deps.Store, id, deps.GuardrailCooldown, deps.Now),
		catalog:      tutor.NewCatalog(nil),
		persona:      contract.DefaultPersona(),
		profile:      domain.DefaultStudentProfile(id),
		tutors:       make(map[string]*tutor.Session),
	}

	s.unsubscribe = append(s.unsubscribe,
		b.Navigate.Subscribe(s.onNavigate),
		b.Reflection.Subscribe(s.onReflection),
		b.OpenTutor.Subscribe(s.onOpenTutor),
	)
	s.stopRollover = s.tracker.StartRolloverWatcher(context.WithoutCancel(ctx), deps.RolloverInterval, s.onRollover)
	return s
}

// ID returns the student id.
func (s *StudentSession) ID() string { return s.id }

// Close stops background work and open tutor conversations. It is safe to
// call more than once.
func (s *StudentSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	tutors := s.tutors
	s.tutors = map[string]*tutor.Session{}
	s.mu.Unlock()

	s.stopRollover()
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	for _, t := range tutors {
		t.Close()
	}
	s.release()
}

// SignOut closes the session and deletes every persisted record for the student.
func (s *StudentSession) SignOut(ctx context.Context) (err error) {
	startedAt := s.deps.Now()
	defer func() { s.observe(ctx, "sign-out", startedAt, err, nil) }()

	s.Close()
	if err = wipe(ctx, s.deps, s.id); err != nil {
		return fmt.Errorf("signing out %s: %w", s.id, err)
	}
	s.track(ctx, "student_signed_out", nil)
	return nil
}

// Refresh fetches the dashboard record and seeds today's micro-plan. A
// failed fetch degrades to an empty dashboard; a plan already seeded today
// is left untouched.
func (s *StudentSession) Refresh(ctx context.Context) (dash *contract.Dashboard, err error) {
	startedAt := s.deps.Now()
	fields := map[string]any{"student_id": s.id}
	defer func() { s.observe(ctx, "refresh", startedAt, err, fields) }()

	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	dash = content.FetchOrEmpty(ctx, s.deps.Content, s.id, s.deps.Logger)
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	profile := dash.Profile
	if s.deps.Profiles != nil {
		stored, perr := s.deps.Profiles.Get(ctx, s.id)
		switch {
		case perr == nil:
			profile = *stored
		case !errors.Is(perr, repository.ErrNotFound):
			s.deps.Logger.WarnContext(ctx, "profile_load_failed", "student_id", s.id, "error", perr)
		}
	}
	s.catalog.Replace(dash.Explanations)

	s.mu.Lock()
	s.dashboard = dash
	s.persona = dash.Persona
	s.profile = profile.Normalize()
	s.mu.Unlock()

	tasks := plan.BuildMicroTasks(dash.Plan, dash.SubjectMastery)
	fields["task_count"] = len(tasks)
	fields["seeded"] = s.tracker.Seed(ctx, tasks)
	return dash, nil
}

// ToggleTask applies the toggle semantics of plan.Tracker.SetTaskStatus and
// returns the resulting status.
func (s *StudentSession) ToggleTask(ctx context.Context, taskID string, status domain.TaskStatus) (result domain.TaskStatus, err error) {
	startedAt := s.deps.Now()
	fields := map[string]any{"task_id": taskID, "requested": string(status)}
	defer func() { s.observe(ctx, "toggle-task", startedAt, err, fields) }()

	if s.isClosed() {
		return "", ErrSessionClosed
	}
	result, err = s.tracker.SetTaskStatus(ctx, taskID, status)
	if err != nil {
		return "", err
	}
	fields["status"] = string(result)
	s.track(ctx, "micro_task_status_changed", map[string]any{"task_id": taskID, "status": string(result)})
	return result, nil
}

// CompleteLesson reports a finished lesson, publishes the resulting flash
// for the next render, and marks any micro-task linked to the lesson done.
// A failing recompute call falls back to the local recomputer.
func (s *StudentSession) CompleteLesson(ctx context.Context, res content.LessonResult) (f domain.AdaptiveFlash, err error) {
	startedAt := s.deps.Now()
	fields := map[string]any{"lesson_ref": res.LessonRef}
	defer func() { s.observe(ctx, "complete-lesson", startedAt, err, fields) }()

	if res.LessonRef == "" {
		return domain.AdaptiveFlash{}, ErrLessonRefRequired
	}
	if s.isClosed() {
		return domain.AdaptiveFlash{}, ErrSessionClosed
	}
	if res.Title == "" {
		if lesson, ok := s.lesson(res.LessonRef); ok {
			res.Title = lesson.Title
		}
	}

	local := content.LocalRecomputer{Now: s.deps.Now}
	var rec content.Recomputer = local
	if s.deps.Recompute != nil {
		rec = s.deps.Recompute
	}
	f, rerr := rec.Recompute(ctx, s.id, res)
	if rerr != nil {
		s.deps.Logger.WarnContext(ctx, "path_recompute_failed", "student_id", s.id, "lesson_ref", res.LessonRef, "error", rerr)
		f, _ = local.Recompute(ctx, s.id, res)
		fields["fallback"] = true
	}
	s.relay.Publish(ctx, s.id, f)

	s.mu.Lock()
	if res.Accuracy != nil {
		acc := *res.Accuracy
		s.lessonAccuracy = &acc
	}
	s.mu.Unlock()

	state := s.tracker.Load(ctx)
	for _, t := range s.tracker.Tasks(ctx) {
		if t.LessonRef == res.LessonRef && state.Status(t.ID) != domain.TaskDone {
			if _, terr := s.tracker.SetTaskStatus(ctx, t.ID, domain.TaskDone); terr != nil {
				s.deps.Logger.WarnContext(ctx, "lesson_task_mark_failed", "task_id", t.ID, "error", terr)
			}
		}
	}

	fields["reason"] = f.NextReason
	s.track(ctx, "lesson_completed", map[string]any{"lesson_ref": res.LessonRef, "reason": f.NextReason})
	return f, nil
}

// Render assembles the dashboard view. It consumes the pending adaptive
// flash, if any; the consumed flash is cached for the rest of the session
// so re-renders keep showing its nudge until it is dismissed or acted on.
func (s *StudentSession) Render(ctx context.Context) (view *DashboardView, err error) {
	startedAt := s.deps.Now()
	fields := map[string]any{"student_id": s.id}
	defer func() { s.observe(ctx, "render", startedAt, err, fields) }()

	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	dash, day, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	var consumed *domain.AdaptiveFlash
	if f, ok := s.relay.Consume(ctx, s.id); ok {
		consumed = &f
		s.track(ctx, "adaptive_flash_consumed", map[string]any{"event_type": f.EventType})
	}

	s.mu.Lock()
	if consumed != nil {
		s.lastFlash = consumed
	}
	last := s.lastFlash
	accuracy := s.lessonAccuracy
	if accuracy == nil {
		accuracy = dash.Stats.RecentAccuracy
	}
	s.mu.Unlock()

	var current *domain.Nudge
	if last != nil {
		if n, ok := s.nudges.Generate(ctx, *last, accuracy); ok {
			current = &n
		}
	}

	tasks, done := s.taskViews(ctx)
	streak := s.tracker.Streak(ctx)
	queue := s.evaluateCelebrations(ctx, dash, streak)

	view = &DashboardView{
		StudentID:    s.id,
		Day:          day,
		Tasks:        tasks,
		Done:         done,
		Streak:       streak,
		History:      s.tracker.History(ctx),
		Stats:        dash.Stats,
		Badges:       dash.Badges,
		Celebrations: queue,
		Flash:        consumed,
		StudyMode:    s.studyMode.Active(ctx),
	}
	s.mu.Lock()
	s.nudge = current
	view.Nudge = current
	view.Navigation, s.navigation = s.navigation, nil
	if s.reflection != nil {
		view.Reflection = guardrail.ReflectionPrompt(s.reflection.Reason)
		s.reflection = nil
	}
	view.Tutor, s.handoff = s.handoff, nil
	s.mu.Unlock()

	fields["tasks"] = len(view.Tasks)
	fields["celebrations"] = len(queue)
	fields["nudge"] = current != nil
	return view, nil
}

// Plan returns today's tasks without consuming the adaptive flash.
func (s *StudentSession) Plan(ctx context.Context) (day string, tasks []TaskView, err error) {
	if s.isClosed() {
		return "", nil, ErrSessionClosed
	}
	if _, day, err = s.current(ctx); err != nil {
		return "", nil, err
	}
	tasks, _ = s.taskViews(ctx)
	return day, tasks, nil
}

// current returns the cached dashboard, refreshing it when missing or when
// the day rolled over.
func (s *StudentSession) current(ctx context.Context) (*contract.Dashboard, string, error) {
	s.mu.Lock()
	dash := s.dashboard
	s.mu.Unlock()

	var err error
	if dash == nil {
		if dash, err = s.Refresh(ctx); err != nil {
			return nil, "", err
		}
	}
	day, rolled := s.tracker.CheckRollover(ctx)
	if rolled {
		if dash, err = s.Refresh(ctx); err != nil {
			return nil, "", err
		}
	}
	return dash, day, nil
}

func (s *StudentSession) taskViews(ctx context.Context) ([]TaskView, int) {
	state := s.tracker.Load(ctx)
	tasks := s.tracker.Tasks(ctx)
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, TaskView{MicroTask: t, Status: state.Status(t.ID)})
	}
	return views, state.DoneCount()
}

// Celebrations evaluates and returns the celebration queue, head first,
// without consuming the adaptive flash.
func (s *StudentSession) Celebrations(ctx context.Context) ([]domain.CelebrationMoment, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}
	dash, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return s.evaluateCelebrations(ctx, dash, s.tracker.Streak(ctx)), nil
}

func (s *StudentSession) evaluateCelebrations(ctx context.Context, dash *contract.Dashboard, streak int) []domain.CelebrationMoment {
	return s.celebrations.Evaluate(ctx, domain.AchievementSnapshot{
		Level:                dash.Stats.Level,
		StreakDays:           streak,
		AvgAccuracy:          dash.Stats.AvgAccuracy,
		ModulesMasteredCount: dash.Stats.ModulesMastered,
	}, dash.ServerCelebrations())
}

// DismissCelebration removes the head of the celebration queue and marks it seen.
func (s *StudentSession) DismissCelebration(ctx context.Context) (domain.CelebrationMoment, bool) {
	m, ok := s.celebrations.Dismiss(ctx)
	if ok {
		s.track(ctx, "celebration_dismissed", map[string]any{"celebration_id": m.ID, "kind": string(m.Kind)})
	}
	return m, ok
}

// DismissNudge suppresses id permanently, whether or not it is the current nudge.
func (s *StudentSession) DismissNudge(ctx context.Context, id string) {
	s.nudges.Dismiss(ctx, id)
	s.mu.Lock()
	if s.nudge != nil && s.nudge.ID == id {
		s.nudge = nil
	}
	s.mu.Unlock()
	s.track(ctx, "nudge_dismissed", map[string]any{"nudge_id": id})
}

// ActOnNudge suppresses the current nudge and routes to its target, which is
// returned. Acting on a try-again nudge also opens the tutor on the weak spot.
func (s *StudentSession) ActOnNudge(ctx context.Context, id string) (target string, err error) {
	startedAt := s.deps.Now()
	fields := map[string]any{"nudge_id": id}
	defer func() { s.observe(ctx, "act-on-nudge", startedAt, err, fields) }()

	s.mu.Lock()
	n := s.nudge
	s.mu.Unlock()
	if n == nil || n.ID != id {
		return "", fmt.Errorf("%w: %s", nudge.ErrUnknownNudge, id)
	}

	target = s.nudges.Act(ctx, *n)
	s.mu.Lock()
	s.nudge = nil
	s.mu.Unlock()

	if n.Type == domain.NudgeTryAgain {
		s.bus.OpenTutor.Publish(bus.OpenTutorMessage{
			StudentID: s.id,
			Concept:   n.Detail,
			Prompt:    fmt.Sprintf("Can you help me practice %s?", n.Detail),
		})
	}
	fields["target"] = target
	s.track(ctx, "nudge_acted", map[string]any{"nudge_id": id, "type": string(n.Type), "target": target})
	return target, nil
}

// SetStudyMode turns elevated study mode on for seven days, or off.
func (s *StudentSession) SetStudyMode(ctx context.Context, enabled bool) (expiresAt time.Time, active bool) {
	s.studyMode.Set(ctx, enabled)
	s.track(ctx, "study_mode_changed", map[string]any{"enabled": enabled})
	return s.studyMode.ExpiresAt(ctx)
}

// StudyMode reports whether elevated study mode is active and when it expires.
func (s *StudentSession) StudyMode(ctx context.Context) (expiresAt time.Time, active bool) {
	return s.studyMode.ExpiresAt(ctx)
}

// Profile returns the cached profile.
func (s *StudentSession) Profile() domain.StudentProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Persona returns the tutor persona from the last refresh.
func (s *StudentSession) Persona() contract.PersonaMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// UpdateProfile stores p for this student. Tutor conversations opened after
// the update use the new pacing; open ones keep theirs.
func (s *StudentSession) UpdateProfile(ctx context.Context, p domain.StudentProfile) (err error) {
	startedAt := s.deps.Now()
	defer func() { s.observe(ctx, "update-profile", startedAt, err, nil) }()

	if s.deps.Profiles == nil {
		return ErrProfilesUnavailable
	}
	p.StudentID = s.id
	p = p.Normalize()
	if err = s.deps.Profiles.Upsert(ctx, &p); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return nil
}

func (s *StudentSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *StudentSession) lesson(ref string) (contract.LessonMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dashboard == nil {
		return contract.LessonMeta{}, false
	}
	return s.dashboard.Lesson(ref)
}

func (s *StudentSession) onRollover(ctx context.Context, day string) {
	s.deps.Logger.InfoContext(ctx, "plan_rolled_over", "student_id", s.id, "day", day)
	s.track(ctx, "plan_rolled_over", map[string]any{"day": day})
	if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrSessionClosed) && ctx.Err() == nil {
		s.deps.Logger.WarnContext(ctx, "rollover_refresh_failed", "student_id", s.id, "error", err)
	}
}

func (s *StudentSession) onNavigate(msg bus.NavigateMessage) {
	if msg.StudentID != s.id {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigation = &msg
}

func (s *StudentSession) onReflection(msg bus.ReflectionMessage) {
	if msg.StudentID != s.id {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reflection = &msg
}

func (s *StudentSession) track(ctx context.Context, name string, props map[string]any) {
	if props == nil {
		props = map[string]any{}
	}
	props["student_id"] = s.id
	s.deps.Tracker.Track(ctx, name, props)
}

func (s *StudentSession) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  s.deps.Now().Sub(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

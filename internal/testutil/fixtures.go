package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
)

// TaskOption customizes a fixture MicroTask.
type TaskOption func(*domain.MicroTask)

func WithKind(k domain.TaskKind) TaskOption {
	return func(m *domain.MicroTask) { m.Kind = k }
}

func WithLesson(ref string) TaskOption {
	return func(m *domain.MicroTask) { m.LessonRef = ref }
}

// NewTestTask builds a MicroTask with sensible defaults.
func NewTestTask(id string, opts ...TaskOption) domain.MicroTask {
	t := domain.MicroTask{
		ID:      id,
		Label:   fmt.Sprintf("Task %s", id),
		Minutes: 10,
		Kind:    domain.TaskNew,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewTestTasks builds n tasks with ids t1..tn.
func NewTestTasks(n int) []domain.MicroTask {
	tasks := make([]domain.MicroTask, 0, n)
	for i := 1; i <= n; i++ {
		tasks = append(tasks, NewTestTask(fmt.Sprintf("t%d", i)))
	}
	return tasks
}

// FlashOption customizes a fixture AdaptiveFlash.
type FlashOption func(*domain.AdaptiveFlash)

func WithReason(reason string) FlashOption {
	return func(f *domain.AdaptiveFlash) { f.NextReason = reason }
}

func WithMisconceptions(codes ...string) FlashOption {
	return func(f *domain.AdaptiveFlash) { f.Misconceptions = codes }
}

func WithNextTitle(title string) FlashOption {
	return func(f *domain.AdaptiveFlash) { f.NextTitle = title }
}

// NewLessonFlash builds a lesson-completion flash created at at.
func NewLessonFlash(at time.Time, opts ...FlashOption) domain.AdaptiveFlash {
	f := domain.AdaptiveFlash{
		EventType:      domain.EventLessonCompleted,
		CreatedAt:      at,
		Misconceptions: []string{},
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

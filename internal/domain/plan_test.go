package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMicroPlanState_AllDone(t *testing.T) {
	s := NewMicroPlanState("2025-03-15")
	assert.False(t, s.AllDone(), "zero-task day is not complete")

	s.TaskIDs = []string{"a", "b"}
	s.Statuses["a"] = TaskDone
	assert.False(t, s.AllDone())
	assert.Equal(t, 1, s.DoneCount())

	s.Statuses["b"] = TaskSkipped
	assert.False(t, s.AllDone(), "skipped is not done")

	s.Statuses["b"] = TaskDone
	assert.True(t, s.AllDone())
}

func TestMicroPlanState_StatusDefaultsToPending(t *testing.T) {
	s := MicroPlanState{Day: "2025-03-15"}
	assert.Equal(t, TaskPending, s.Status("missing"))
}

func TestParseTaskKind(t *testing.T) {
	assert.Equal(t, TaskReview, ParseTaskKind("review"))
	assert.Equal(t, TaskSpaced, ParseTaskKind("spaced_review"))
	assert.Equal(t, TaskNew, ParseTaskKind("lecture"))
	assert.Equal(t, TaskNew, ParseTaskKind(""))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2025-03-01", AddDays("2025-02-28", 1))
	assert.Equal(t, "2024-12-31", AddDays("2025-01-01", -1))
	assert.Equal(t, "garbage", AddDays("garbage", 3))
}

func TestStudentProfile_Normalize(t *testing.T) {
	p := StudentProfile{StudentID: "s1", WeeklyIntensity: "extreme", Intent: "nap"}.Normalize()
	assert.Equal(t, IntensitySteady, p.WeeklyIntensity)
	assert.Equal(t, IntentKeepPace, p.Intent)

	p = StudentProfile{WeeklyIntensity: IntensityIntense, Intent: IntentGetAhead}.Normalize()
	assert.Equal(t, IntensityIntense, p.WeeklyIntensity)
	assert.Equal(t, IntentGetAhead, p.Intent)
}

func TestFlash_IsLessonCompletion(t *testing.T) {
	assert.True(t, AdaptiveFlash{EventType: EventLessonCompleted}.IsLessonCompletion())
	assert.True(t, AdaptiveFlash{EventType: "lesson_complete"}.IsLessonCompletion())
	assert.False(t, AdaptiveFlash{EventType: EventPathRecomputed}.IsLessonCompletion())
}

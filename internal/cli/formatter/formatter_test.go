package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/guardrail"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/alexanderramin/orbit/internal/tutor"
	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name        string
		done, total int
		want        string
	}{
		{"empty plan", 0, 0, "0/0"},
		{"halfway", 2, 4, "2/4"},
		{"complete", 3, 3, "3/3"},
		{"over total clamps", 5, 3, "3/3"},
		{"negative clamps", -1, 3, "0/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgress(tt.done, tt.total, 8)
			assert.Contains(t, got, tt.want)
			assert.Contains(t, got, "[")
		})
	}
}

func TestRenderProgressBlocks(t *testing.T) {
	got := RenderProgress(1, 4, 8)
	assert.Equal(t, 2, strings.Count(got, filledBlock))
	assert.Equal(t, 6, strings.Count(got, emptyBlock))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "1h", FormatMinutes(60))
	assert.Equal(t, "1h 30m", FormatMinutes(90))
}

func TestHumanTimestampFrom(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", HumanTimestampFrom(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", HumanTimestampFrom(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", HumanTimestampFrom(now.Add(-3*time.Hour), now))
	assert.Equal(t, "Mar 8, 2026", HumanTimestampFrom(now.Add(-48*time.Hour), now))
	assert.Equal(t, "in 20m", HumanTimestampFrom(now.Add(20*time.Minute), now))
}

func TestStreakStrip_TrimsToWindow(t *testing.T) {
	history := []domain.StreakDay{
		{Date: "2026-03-07", Completed: true},
		{Date: "2026-03-08", Completed: false},
		{Date: "2026-03-09", Completed: true},
	}
	got := StreakStrip(history, 2)
	assert.Equal(t, 1, strings.Count(got, "■"))
	assert.Equal(t, 1, strings.Count(got, "□"))
}

func TestFormatPlan(t *testing.T) {
	tasks := []service.TaskView{
		{MicroTask: domain.MicroTask{ID: "t1", Label: "Fractions warm-up", Minutes: 8, SubjectHint: "math"}, Status: domain.TaskDone},
		{MicroTask: domain.MicroTask{ID: "t2", Label: "Read chapter 3", Minutes: 12, Kind: domain.TaskReview}, Status: domain.TaskPending},
	}
	out := FormatPlan("2026-03-10", tasks, 1)
	assert.Contains(t, out, "TODAY'S PLAN")
	assert.Contains(t, out, "1. ✔ Fractions warm-up")
	assert.Contains(t, out, "2. ○ Read chapter 3")
	assert.Contains(t, out, "Math")
	assert.Contains(t, out, "review")
	assert.Contains(t, out, "1/2")
}

func TestFormatPlan_Empty(t *testing.T) {
	out := FormatPlan("2026-03-10", nil, 0)
	assert.Contains(t, out, "Nothing planned")
}

func TestFormatDashboard(t *testing.T) {
	acc := 82.0
	v := &service.DashboardView{
		Day:    "2026-03-10",
		Streak: 3,
		History: []domain.StreakDay{
			{Date: "2026-03-08", Completed: true},
			{Date: "2026-03-09", Completed: true},
		},
		Stats:        contract.Stats{Level: 2, XP: 340, AvgAccuracy: &acc, ModulesMastered: 1},
		Badges:       []contract.Badge{{ID: "b1", Name: "First steps", New: true}},
		StudyMode:    true,
		Flash:        &domain.AdaptiveFlash{NextTitle: "Comparing fractions", NextReason: "stretch"},
		Nudge:        &domain.Nudge{ID: "nudge-1-recap-fractions", Type: domain.NudgeRecap, Title: "Quick recap", Body: "Review fractions"},
		Celebrations: []domain.CelebrationMoment{{ID: "level-2", Title: "Level 2!", Description: "You levelled up"}, {ID: "badge-b1", Title: "Badge"}},
		Reflection:   "Take a breath",
		Navigation:   &bus.NavigateMessage{Target: "/learning-path"},
		Tutor:        &service.TutorHandoff{SessionID: "s1", Prompt: "Can you help me practice fractions?"},
	}

	out := FormatDashboard(v)
	for _, want := range []string{
		"3 day streak", "Level 2", "XP 340", "82%", "First steps (new)",
		"Study mode on", "Comparing fractions", "(stretch)",
		"Quick recap", "nudge-1-recap-fractions",
		"Level 2!", "+1 more", "Take a breath", "/learning-path",
		"Can you help me practice fractions?",
	} {
		assert.Contains(t, out, want)
	}
}

func TestFormatReply(t *testing.T) {
	remaining := 4

	t.Run("normal", func(t *testing.T) {
		out := FormatReply("Nova", tutor.Reply{Text: "Try splitting the pizza.", Remaining: &remaining})
		assert.Contains(t, out, "Nova: Try splitting the pizza.")
		assert.Contains(t, out, "4 messages left today")
	})

	t.Run("blocked with explainer", func(t *testing.T) {
		out := FormatReply("", tutor.Reply{Blocked: true, Reminder: "Keep personal info private.", Explainer: "Sharing details is risky."})
		assert.Contains(t, out, "Keep personal info private.")
		assert.Contains(t, out, "Sharing details is risky.")
		assert.NotContains(t, out, "Tutor:")
	})

	t.Run("fallback", func(t *testing.T) {
		out := FormatReply("", tutor.Reply{Text: "Let's break it down.", Fallback: true, Failure: guardrail.FailureUnknown})
		assert.Contains(t, out, "Tutor: Let's break it down.")
		assert.Contains(t, out, "offline reply")
	})

	t.Run("reflection", func(t *testing.T) {
		out := FormatReply("", tutor.Reply{Text: "ok", Reflection: "What part feels confusing?"})
		assert.Contains(t, out, "What part feels confusing?")
	})
}

func TestFormatProfile(t *testing.T) {
	out := FormatProfile(domain.StudentProfile{
		StudentID:       "ada",
		WeeklyIntensity: domain.IntensityIntense,
		Intent:          domain.IntentGetAhead,
		LessonOnly:      true,
	})
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "Intense")
	assert.Contains(t, out, "Get ahead")
	assert.Contains(t, out, "on")
}

func TestFormatStudyMode(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Contains(t, FormatStudyMode(time.Time{}, false, now), "off")
	assert.Contains(t, FormatStudyMode(now.Add(45*time.Minute), true, now), "ends in 45m")
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "thinking")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	s.Stop()
	assert.Contains(t, buf.String(), "thinking")
	assert.True(t, strings.HasSuffix(buf.String(), "\r\033[K"))
}

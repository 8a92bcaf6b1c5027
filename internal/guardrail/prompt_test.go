package guardrail

import (
	"strings"
	"testing"

	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fractionsLesson() *contract.LessonMeta {
	return &contract.LessonMeta{Ref: "frac-2", Title: "Adding Fractions", Subject: "math", Concept: "common denominators"}
}

func TestAssembleInstructions_LayerOrder(t *testing.T) {
	persona := contract.DefaultPersona()
	persona.Constraints = []string{"Use metric units."}

	out := AssembleInstructions(PromptContext{
		Persona:   persona,
		Lesson:    fractionsLesson(),
		Profile:   domain.StudentProfile{WeeklyIntensity: domain.IntensityLight, Intent: domain.IntentCatchUp, LessonOnly: true},
		StudyMode: true,
		Scaffold:  domain.ScaffoldHint,
	})

	markers := []string{
		`inside the lesson "Adding Fractions"`,
		"Rules:",
		"Tone: warm, encouraging, and concise.",
		"- Use metric units.",
		`Only discuss the lesson "Adding Fractions"`,
		"light week",
		"revisit prerequisites",
		"Focused study mode is on",
		"exactly one short hint",
		"[Math · common denominators]",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(out, m)
		require.GreaterOrEqual(t, idx, 0, "missing %q", m)
		assert.Greater(t, idx, last, "%q out of order", m)
		last = idx
	}
}

func TestAssembleInstructions_NoLessonNoScaffold(t *testing.T) {
	out := AssembleInstructions(PromptContext{Profile: domain.DefaultStudentProfile("stu-1")})

	assert.True(t, strings.HasPrefix(out, "You are Orbit, a patient study coach for a school-age student."))
	assert.NotContains(t, out, "Only discuss")
	assert.NotContains(t, out, "hint")
	assert.Contains(t, out, "steady pace")
	assert.Contains(t, out, "like [Math · Fractions]")
}

func TestAssembleInstructions_Scaffolds(t *testing.T) {
	breakDown := AssembleInstructions(PromptContext{Scaffold: domain.ScaffoldBreakDown})
	assert.Contains(t, breakDown, "numbered steps")

	plain := AssembleInstructions(PromptContext{Scaffold: domain.ScaffoldAnotherWay})
	assert.Contains(t, plain, "new example or picture")
}

func TestAssembleInstructions_LessonOnlyWithoutLesson(t *testing.T) {
	out := AssembleInstructions(PromptContext{Profile: domain.StudentProfile{LessonOnly: true}})
	assert.Contains(t, out, "current plan")
}

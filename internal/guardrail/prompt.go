package guardrail

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
)

// PromptContext carries everything that shapes the instruction bundle.
type PromptContext struct {
	Persona   contract.PersonaMeta
	Lesson    *contract.LessonMeta
	Profile   domain.StudentProfile
	StudyMode bool
	Scaffold  domain.Scaffold
}

// coreRules are appended to every instruction bundle.
var coreRules = []string{
	"Never ask for or repeat personal information such as names of schools, addresses, phone numbers, or emails.",
	"Do not give answers to tests, quizzes, or graded work; guide the student to reason it out.",
	"Check understanding with a short question before moving on.",
	"If the student seems upset or unsafe, encourage them to talk to a trusted adult.",
}

// AssembleInstructions joins the instruction layers in fixed order: role,
// core rules, persona tone, lesson-only restriction, pacing, scaffold mode,
// and the opening tag.
func AssembleInstructions(pc PromptContext) string {
	persona := pc.Persona
	if persona.Name == "" {
		persona = contract.DefaultPersona()
	}

	layers := []string{
		roleLayer(persona, pc.Lesson),
		"Rules:\n- " + strings.Join(coreRules, "\n- "),
		personaLayer(persona),
		lessonOnlyLayer(pc.Profile, pc.Lesson),
		pacingLayer(pc.Profile, pc.StudyMode),
		scaffoldLayer(pc.Scaffold),
		tagLayer(pc.Lesson),
	}

	out := make([]string, 0, len(layers))
	for _, l := range layers {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n\n")
}

func roleLayer(p contract.PersonaMeta, lesson *contract.LessonMeta) string {
	if lesson == nil {
		return fmt.Sprintf("You are %s, %s for a school-age student.", p.Name, p.Role)
	}
	focus := lesson.Title
	if lesson.Concept != "" {
		focus = fmt.Sprintf("%s (%s)", lesson.Title, lesson.Concept)
	}
	return fmt.Sprintf("You are %s, %s helping a school-age student inside the lesson %q. Keep the conversation anchored to %s.",
		p.Name, p.Role, lesson.Title, focus)
}

func personaLayer(p contract.PersonaMeta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tone: %s.", p.Tone)
	for _, c := range p.Constraints {
		if c = strings.TrimSpace(c); c != "" {
			fmt.Fprintf(&b, "\n- %s", c)
		}
	}
	return b.String()
}

func lessonOnlyLayer(profile domain.StudentProfile, lesson *contract.LessonMeta) string {
	if !profile.LessonOnly {
		return ""
	}
	if lesson == nil {
		return "Only discuss schoolwork from the student's current plan. Politely decline anything else."
	}
	return fmt.Sprintf("Only discuss the lesson %q. Politely decline other topics and steer back to it.", lesson.Title)
}

func pacingLayer(profile domain.StudentProfile, studyMode bool) string {
	var parts []string
	switch profile.WeeklyIntensity {
	case domain.IntensityLight:
		parts = append(parts, "Keep replies short and low pressure; the student is on a light week.")
	case domain.IntensityIntense:
		parts = append(parts, "The student wants an intense week: offer a follow-up challenge after each explanation.")
	default:
		parts = append(parts, "Keep a steady pace with one idea per reply.")
	}
	switch profile.Intent {
	case domain.IntentCatchUp:
		parts = append(parts, "They are catching up, so revisit prerequisites before new material.")
	case domain.IntentGetAhead:
		parts = append(parts, "They want to get ahead, so connect ideas to what comes next.")
	case domain.IntentExplore:
		parts = append(parts, "They are exploring, so welcome curiosity and side questions that stay educational.")
	}
	if studyMode {
		parts = append(parts, "Focused study mode is on: skip small talk and stay on task.")
	}
	return strings.Join(parts, " ")
}

func scaffoldLayer(s domain.Scaffold) string {
	switch s {
	case domain.ScaffoldHint:
		return "Give exactly one short hint. Do not solve the problem."
	case domain.ScaffoldBreakDown:
		return "Break the problem into short numbered steps and stop before the final answer."
	case domain.ScaffoldAnotherWay:
		return "Explain the idea a different way than before, using a new example or picture."
	default:
		return ""
	}
}

func tagLayer(lesson *contract.LessonMeta) string {
	if lesson != nil && lesson.Subject != "" {
		concept := domain.CoalesceStr(lesson.Concept, lesson.Title)
		return fmt.Sprintf("Begin your reply with the label [%s · %s].", titleCase(lesson.Subject), concept)
	}
	return "Begin your reply with a short label in square brackets naming the subject and concept, like [Math · Fractions]."
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

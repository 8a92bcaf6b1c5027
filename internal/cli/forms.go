package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// orbitHuhTheme returns a huh theme matching the formatter palette.
func orbitHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// Nudge picker choices.
const (
	nudgeAct     = "act"
	nudgeDismiss = "dismiss"
	nudgeLater   = "later"
)

func nudgeActionForm(n domain.Nudge, choice *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(n.Title).
				Description(n.Body).
				Options(
					huh.NewOption(actLabel(n.Type), nudgeAct),
					huh.NewOption("Dismiss", nudgeDismiss),
					huh.NewOption("Later", nudgeLater),
				).
				Value(choice),
		),
	).WithTheme(orbitHuhTheme()).WithShowHelp(false)
}

func actLabel(t domain.NudgeType) string {
	switch t {
	case domain.NudgeTryAgain:
		return "Practice with the tutor"
	case domain.NudgeQuickCheck:
		return "Take the quick check"
	default:
		return "Open the recap"
	}
}

func confirmForm(title string, value *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(value),
		),
	).WithTheme(orbitHuhTheme()).WithShowHelp(false)
}

// profileForm edits intensity, intent, and the lesson-only switch in place.
func profileForm(p *profileInput) *huh.Form {
	intensities := []huh.Option[string]{}
	for _, i := range []domain.Intensity{domain.IntensityLight, domain.IntensitySteady, domain.IntensityIntense} {
		intensities = append(intensities, huh.NewOption(formatter.IntensityLabel(i), string(i)))
	}
	intents := []huh.Option[string]{}
	for _, i := range []domain.Intent{domain.IntentCatchUp, domain.IntentKeepPace, domain.IntentGetAhead, domain.IntentExplore} {
		intents = append(intents, huh.NewOption(formatter.IntentLabel(i), string(i)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Weekly intensity").
				Options(intensities...).
				Value(&p.intensity),
			huh.NewSelect[string]().
				Title("What are you aiming for?").
				Options(intents...).
				Value(&p.intent),
			huh.NewConfirm().
				Title("Keep the tutor on the current lesson?").
				Value(&p.lessonOnly),
		),
	).WithTheme(orbitHuhTheme()).WithShowHelp(false)
}

// profileInput is the string-typed form state for a StudentProfile.
type profileInput struct {
	intensity  string
	intent     string
	lessonOnly bool
}

func newProfileInput(p domain.StudentProfile) *profileInput {
	return &profileInput{
		intensity:  string(p.WeeklyIntensity),
		intent:     string(p.Intent),
		lessonOnly: p.LessonOnly,
	}
}

var errInvalidProfileValue = errors.New("invalid profile value")

// apply validates the input and writes it onto p.
func (in *profileInput) apply(p *domain.StudentProfile) error {
	intensity := domain.Intensity(strings.ToLower(strings.TrimSpace(in.intensity)))
	if !domain.ValidIntensities[intensity] {
		return fmt.Errorf("%w: intensity %q (light, steady, intense)", errInvalidProfileValue, in.intensity)
	}
	intent := domain.Intent(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(in.intent)), "-", "_"))
	if !domain.ValidIntents[intent] {
		return fmt.Errorf("%w: intent %q (catch_up, keep_pace, get_ahead, explore)", errInvalidProfileValue, in.intent)
	}
	p.WeeklyIntensity = intensity
	p.Intent = intent
	p.LessonOnly = in.lessonOnly
	return nil
}

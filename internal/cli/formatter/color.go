package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// TaskStatusIcon returns the checkbox glyph for a micro-task status.
func TaskStatusIcon(status domain.TaskStatus) string {
	switch status {
	case domain.TaskDone:
		return StyleGreen.Render("✔")
	case domain.TaskSkipped:
		return StyleDim.Render("⊘")
	default:
		return StyleBlue.Render("○")
	}
}

// TaskKindBadge returns a short colored label for the task kind.
func TaskKindBadge(kind domain.TaskKind) string {
	switch kind {
	case domain.TaskReview:
		return StyleYellow.Render("review")
	case domain.TaskSpaced:
		return StylePurple.Render("spaced")
	default:
		return StyleBlue.Render("new")
	}
}

// NudgeStyle colors a nudge title by its type.
func NudgeStyle(typ domain.NudgeType) lipgloss.Style {
	switch typ {
	case domain.NudgeTryAgain:
		return StyleYellow
	case domain.NudgeQuickCheck:
		return StyleBlue
	default:
		return StyleGreen
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len([]rune(upper)))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

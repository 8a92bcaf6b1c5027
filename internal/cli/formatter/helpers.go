package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// HumanTimestampFrom returns a relative timestamp such as "5m ago".
func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return "in " + FormatDuration(-diff)
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// FormatDuration renders d rounded to minutes, e.g. "1h 5m" or "20m".
func FormatDuration(d time.Duration) string {
	return FormatMinutes(int(d.Round(time.Minute).Minutes()))
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatPercent renders an optional 0-100 accuracy value.
func FormatPercent(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.0f%%", *v)
}

// SubjectBadge returns a capitalized, purple-styled subject label.
func SubjectBadge(s string) string {
	if s == "" {
		return ""
	}
	return StylePurple.Render(strings.ToUpper(s[:1]) + s[1:])
}

// StreakStrip renders the trailing days of the streak history as filled and
// empty squares, oldest first.
func StreakStrip(history []domain.StreakDay, days int) string {
	if len(history) > days {
		history = history[len(history)-days:]
	}
	var b strings.Builder
	for _, d := range history {
		if d.Completed {
			b.WriteString(StyleGreen.Render("■"))
		} else {
			b.WriteString(StyleDim.Render("□"))
		}
	}
	return b.String()
}

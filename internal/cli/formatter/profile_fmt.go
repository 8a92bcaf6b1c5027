package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
)

var intensityLabels = map[domain.Intensity]string{
	domain.IntensityLight:   "Light",
	domain.IntensitySteady:  "Steady",
	domain.IntensityIntense: "Intense",
}

var intentLabels = map[domain.Intent]string{
	domain.IntentCatchUp:  "Catch up",
	domain.IntentKeepPace: "Keep pace",
	domain.IntentGetAhead: "Get ahead",
	domain.IntentExplore:  "Explore",
}

// IntensityLabel returns the display name of a weekly intensity.
func IntensityLabel(i domain.Intensity) string {
	if l, ok := intensityLabels[i]; ok {
		return l
	}
	return string(i)
}

// IntentLabel returns the display name of a learning intent.
func IntentLabel(i domain.Intent) string {
	if l, ok := intentLabels[i]; ok {
		return l
	}
	return string(i)
}

// FormatProfile renders the student's pacing preferences.
func FormatProfile(p domain.StudentProfile) string {
	var b strings.Builder
	b.WriteString(Header("Profile") + "\n")
	b.WriteString(fmt.Sprintf("  %-12s %s\n", Dim("Student"), p.StudentID))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", Dim("Intensity"), IntensityLabel(p.WeeklyIntensity)))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", Dim("Intent"), IntentLabel(p.Intent)))
	lessonOnly := "off"
	if p.LessonOnly {
		lessonOnly = StyleGreen.Render("on")
	}
	b.WriteString(fmt.Sprintf("  %-12s %s\n", Dim("Lesson only"), lessonOnly))
	return b.String()
}

// FormatStudyMode renders whether study mode is on and how long it has left.
func FormatStudyMode(expiresAt time.Time, active bool, now time.Time) string {
	if !active {
		return Dim("Study mode is off.")
	}
	return StylePurple.Render("● Study mode on") + Dim(fmt.Sprintf(" (ends in %s)", FormatDuration(expiresAt.Sub(now))))
}

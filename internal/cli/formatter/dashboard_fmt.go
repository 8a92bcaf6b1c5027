package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/service"
)

// streakStripDays is how many trailing days the dashboard strip shows.
const streakStripDays = 14

// FormatPlan renders today's micro-tasks as a numbered checklist.
func FormatPlan(day string, tasks []service.TaskView, done int) string {
	var b strings.Builder
	b.WriteString(Header("Today's plan") + "  " + Dim(day) + "\n")

	if len(tasks) == 0 {
		b.WriteString(Dim("  Nothing planned for today.") + "\n")
		return b.String()
	}

	for i, t := range tasks {
		label := t.Label
		if t.Status == domain.TaskDone || t.Status == domain.TaskSkipped {
			label = Dim(label)
		} else {
			label = StyleFg.Render(label)
		}
		line := fmt.Sprintf("  %2d. %s %s  %s  %s",
			i+1, TaskStatusIcon(t.Status), label, Dim(FormatMinutes(t.Minutes)), TaskKindBadge(t.Kind))
		if t.SubjectHint != "" {
			line += "  " + SubjectBadge(t.SubjectHint)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n  " + RenderProgress(done, len(tasks), 20) + "\n")
	return b.String()
}

// FormatDashboard renders one dashboard pass.
func FormatDashboard(v *service.DashboardView) string {
	var b strings.Builder

	b.WriteString(FormatPlan(v.Day, v.Tasks, v.Done))
	b.WriteString("\n")

	streak := fmt.Sprintf("%d day streak", v.Streak)
	if v.Streak > 0 {
		streak = StyleYellow.Render(streak)
	} else {
		streak = Dim(streak)
	}
	b.WriteString("  " + streak)
	if len(v.History) > 0 {
		b.WriteString("  " + StreakStrip(v.History, streakStripDays))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  %s %d  %s %d  %s %s  %s %d\n",
		Dim("Level"), v.Stats.Level,
		Dim("XP"), v.Stats.XP,
		Dim("Accuracy"), FormatPercent(v.Stats.AvgAccuracy),
		Dim("Mastered"), v.Stats.ModulesMastered,
	))

	if len(v.Badges) > 0 {
		names := make([]string, 0, len(v.Badges))
		for _, badge := range v.Badges {
			name := badge.Name
			if name == "" {
				name = badge.ID
			}
			if badge.New {
				name = StyleGreen.Render(name + " (new)")
			}
			names = append(names, name)
		}
		b.WriteString("  " + Dim("Badges") + " " + strings.Join(names, ", ") + "\n")
	}

	if v.StudyMode {
		b.WriteString("  " + StylePurple.Render("● Study mode on") + "\n")
	}

	if v.Flash != nil && v.Flash.NextTitle != "" {
		next := "  " + Dim("Next up:") + " " + Bold(v.Flash.NextTitle)
		if v.Flash.NextReason != "" {
			next += " " + Dim("("+v.Flash.NextReason+")")
		}
		b.WriteString(next + "\n")
	}

	if v.Nudge != nil {
		b.WriteString("\n" + FormatNudge(*v.Nudge) + "\n")
	}

	if len(v.Celebrations) > 0 {
		b.WriteString("\n" + FormatCelebration(v.Celebrations[0], len(v.Celebrations)-1) + "\n")
	}

	if v.Reflection != "" {
		b.WriteString("\n  " + StylePurple.Render("✦ "+v.Reflection) + "\n")
	}
	if v.Navigation != nil {
		b.WriteString("\n  " + Dim("→ Open") + " " + v.Navigation.Target + "\n")
	}
	if v.Tutor != nil {
		b.WriteString("\n  " + Dim("Tutor ready:") + " " + v.Tutor.Prompt + "\n")
	}

	return b.String()
}

// FormatNudge renders a nudge card.
func FormatNudge(n domain.Nudge) string {
	title := NudgeStyle(n.Type).Bold(true).Render(n.Title)
	body := title + "\n" + n.Body + "\n\n" + Dim(n.ID)
	return RenderBox("", body)
}

// FormatCelebration renders the head of the celebration queue.
func FormatCelebration(m domain.CelebrationMoment, more int) string {
	body := StyleYellow.Bold(true).Render("★ "+m.Title) + "\n" + m.Description
	if m.Prompt != "" {
		body += "\n\n" + Dim(m.Prompt)
	}
	if more > 0 {
		body += "\n\n" + Dim(fmt.Sprintf("+%d more", more))
	}
	return RenderBox("", body)
}

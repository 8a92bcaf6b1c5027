package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/orbit/internal/guardrail"
	"github.com/alexanderramin/orbit/internal/tutor"
)

// FormatUserTurn renders the student's side of a chat line.
func FormatUserTurn(text string) string {
	return Dim("You: ") + text
}

// FormatReply renders one tutor reply, including guardrail notices.
func FormatReply(persona string, r tutor.Reply) string {
	if persona == "" {
		persona = "Tutor"
	}
	var b strings.Builder

	if r.Blocked {
		b.WriteString(StyleRed.Render("✖ " + r.Reminder))
		if r.Explainer != "" {
			b.WriteString("\n" + RenderBox("Why can't I send that?", r.Explainer))
		}
		return b.String()
	}

	text := r.Text
	if r.Failure == guardrail.FailureQuota || r.Failure == guardrail.FailureSafety {
		text = StyleYellow.Render(text)
	}
	b.WriteString(StylePurple.Bold(true).Render(persona+": ") + text)

	var tags []string
	switch {
	case r.Canned:
		tags = append(tags, "from the study guide")
	case r.Fallback:
		tags = append(tags, "offline reply")
	}
	if r.Remaining != nil {
		tags = append(tags, fmt.Sprintf("%d messages left today", *r.Remaining))
	}
	if len(tags) > 0 {
		b.WriteString("\n" + Dim("  ("+strings.Join(tags, ", ")+")"))
	}

	if r.Reflection != "" {
		b.WriteString("\n" + StylePurple.Render("✦ "+r.Reflection))
	}
	return b.String()
}

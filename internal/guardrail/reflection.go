package guardrail

import (
	"regexp"

	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/domain"
)

// Reflection thresholds.
const (
	ConfusionThreshold = 2
	HintThreshold      = 3
)

var distressPattern = regexp.MustCompile(`(?i)\b(?:confus(?:ed|ing)|stuck|lost)\b|\b(?:don['’]?t|do\s+not|didn['’]?t|can['’]?t|cannot|still\s+don['’]?t)\s+(?:really\s+)?(?:get|understand)\s+(?:it|this)\b`)

// Reflection tracks per-conversation counters that trigger a one-time
// reflection prompt. It is not persisted; a new conversation starts fresh.
// Not safe for concurrent use.
type Reflection struct {
	HintMessages   int
	ConfusionCount int
	Prompted       bool
}

// ObserveUser counts distress language in a user message and reports
// whether the reflection prompt should fire now.
func (r *Reflection) ObserveUser(text string) (string, bool) {
	if distressPattern.MatchString(text) {
		r.ConfusionCount++
	}
	return r.check()
}

// ObserveResponse counts responses generated under a scaffold mode.
func (r *Reflection) ObserveResponse(mode domain.Scaffold) (string, bool) {
	if mode != domain.ScaffoldNone {
		r.HintMessages++
	}
	return r.check()
}

// Force fires the prompt for reason if it has not fired yet, for example
// when a long-session timer elapses.
func (r *Reflection) Force(reason string) (string, bool) {
	if r.Prompted {
		return "", false
	}
	r.Prompted = true
	return reason, true
}

func (r *Reflection) check() (string, bool) {
	if r.Prompted {
		return "", false
	}
	switch {
	case r.ConfusionCount >= ConfusionThreshold:
		r.Prompted = true
		return bus.ReasonConfusion, true
	case r.HintMessages >= HintThreshold:
		r.Prompted = true
		return bus.ReasonHints, true
	}
	return "", false
}

// ReflectionPrompt is the text shown when the reflection fires.
func ReflectionPrompt(reason string) string {
	switch reason {
	case bus.ReasonConfusion:
		return "This one is tricky. What part feels most confusing right now? Putting it into words often helps."
	case bus.ReasonHints:
		return "You've used a few hints. Can you explain the next step in your own words before we go on?"
	default:
		return "You've been working for a while. Take a breath: what's one thing you learned so far?"
	}
}

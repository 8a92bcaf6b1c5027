// Package guardrail screens outgoing tutor messages, throttles safety
// dialogs, and assembles the layered instructions for the generation call.
// Detection is best-effort pattern matching, not a security boundary.
package guardrail

import (
	"regexp"

	"github.com/alexanderramin/orbit/internal/domain"
)

var (
	// US-style ten digit numbers with optional country code and separators,
	// or seven digit local numbers.
	phonePattern  = regexp.MustCompile(`(?:\+\d{1,3}[\s.-]?)?\(?\b\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b|\b\d{3}[\s.-]?\d{4}\b`)
	handlePattern = regexp.MustCompile(`(?:^|[\s(])@[A-Za-z0-9_.]{2,}`)
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+`)
	piiKeywords   = regexp.MustCompile(`(?i)\b(?:address|phone(?:\s*number)?|e-?mail|where\s+i\s+live|my\s+number)\b`)

	cheatingKeywords = regexp.MustCompile(`(?i)\b(?:cheat\w*|test\s+answers?|answer\s+key|answers\s+to\s+(?:the|my)\s+(?:test|quiz|exam))\b`)
)

// Classify returns the policy category of an outgoing message. Identifying
// information is checked before cheating intent.
func Classify(text string) domain.GuardrailCategory {
	if phonePattern.MatchString(text) || handlePattern.MatchString(text) ||
		emailPattern.MatchString(text) || piiKeywords.MatchString(text) {
		return domain.GuardrailPII
	}
	if cheatingKeywords.MatchString(text) {
		return domain.GuardrailCheating
	}
	return domain.GuardrailNone
}

// Reminder is the inline safety note shown on every violating message.
func Reminder(c domain.GuardrailCategory) string {
	switch c {
	case domain.GuardrailPII:
		return "Let's keep personal details like phone numbers, emails, handles, and addresses out of the chat."
	case domain.GuardrailCheating:
		return "I can't give test answers, but I can help you understand the material so you can solve it yourself."
	default:
		return ""
	}
}

// Explainer is the fuller dialog text, shown at most once per cooldown.
func Explainer(c domain.GuardrailCategory) string {
	switch c {
	case domain.GuardrailPII:
		return "Your tutor is here for schoolwork. Sharing contact details or where you live can put you at risk, " +
			"so the message was not sent. Try asking about the lesson instead."
	case domain.GuardrailCheating:
		return "Getting answers for a test or quiz skips the learning and breaks your school's rules. " +
			"Ask for a hint or a worked example on a similar problem instead."
	default:
		return ""
	}
}

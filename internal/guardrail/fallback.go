package guardrail

import "strings"

type fallbackRule struct {
	keywords []string
	reply    string
}

// fallbackRules are checked in order; the first rule with a matching
// keyword answers.
var fallbackRules = []fallbackRule{
	{[]string{"fraction", "numerator", "denominator"}, "With fractions, start by checking the denominators. If they differ, find a common one before adding or subtracting."},
	{[]string{"equation", "solve for", "variable"}, "Try undoing the operations around the variable one step at a time, doing the same thing to both sides."},
	{[]string{"essay", "paragraph", "write"}, "Start with one sentence that states your main idea, then add two details that support it."},
	{[]string{"reading", "passage", "story", "chapter"}, "Look back at the passage and find one sentence that supports your answer. What does it tell you?"},
	{[]string{"confused", "stuck", "don't get"}, "That's okay, getting stuck is part of learning. Which step is the first one that feels unclear?"},
	{[]string{"hello", " hi ", " hey"}, "Hi! I'm having trouble reaching the tutor service right now, but I can still help. What are you working on?"},
}

const fallbackDefault = "I can't reach the tutor service right now. Try re-reading the last example in your lesson, and ask me again in a moment."

// FallbackReply returns a local rule-based response so the chat never
// appears broken when generation fails.
func FallbackReply(userText string) string {
	text := " " + strings.ToLower(userText) + " "
	for _, r := range fallbackRules {
		for _, k := range r.keywords {
			if strings.Contains(text, k) {
				return r.reply
			}
		}
	}
	return fallbackDefault
}

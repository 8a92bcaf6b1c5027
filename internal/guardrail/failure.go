package guardrail

import (
	"errors"
	"strings"

	"github.com/alexanderramin/orbit/internal/llm"
)

// FailureKind classifies a failed generation call.
type FailureKind string

const (
	FailureQuota   FailureKind = "quota_exceeded"
	FailureSafety  FailureKind = "safety_refusal"
	FailureUnknown FailureKind = "unknown"
)

const (
	defaultQuotaMessage  = "You've reached your plan's tutor message limit for now. It resets soon."
	defaultSafetyMessage = "I can't help with that request. Let's get back to your lesson."
)

// Failure is a classified generation error. Message is what the student
// sees verbatim for quota and safety failures and is empty for unknown ones.
type Failure struct {
	Kind    FailureKind
	Message string
}

// ClassifyFailure maps a generation error onto a FailureKind. Typed
// provider errors are checked first, then the error text.
func ClassifyFailure(err error) Failure {
	if err == nil {
		return Failure{Kind: FailureUnknown}
	}

	var pe *llm.ProviderError
	providerMsg := ""
	if errors.As(err, &pe) {
		providerMsg = pe.Message
	}

	switch {
	case errors.Is(err, llm.ErrQuotaExceeded):
		return Failure{Kind: FailureQuota, Message: orDefault(providerMsg, defaultQuotaMessage)}
	case errors.Is(err, llm.ErrSafetyRefusal):
		return Failure{Kind: FailureSafety, Message: orDefault(providerMsg, defaultSafetyMessage)}
	}

	text := strings.ToLower(err.Error())
	switch {
	case containsAny(text, "quota", "rate limit", "message limit", "plan limit", "upgrade your plan"):
		return Failure{Kind: FailureQuota, Message: orDefault(providerMsg, defaultQuotaMessage)}
	case containsAny(text, "safety", "content policy", "refused", "refusal"):
		return Failure{Kind: FailureSafety, Message: orDefault(providerMsg, defaultSafetyMessage)}
	}
	return Failure{Kind: FailureUnknown}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

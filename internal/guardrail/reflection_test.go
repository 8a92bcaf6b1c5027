package guardrail

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/llm"
	"github.com/stretchr/testify/assert"
)

func TestReflection_ConfusionFiresOnce(t *testing.T) {
	var r Reflection

	_, fired := r.ObserveUser("I'm so confused")
	assert.False(t, fired)
	_, fired = r.ObserveUser("what is a denominator?")
	assert.False(t, fired)

	reason, fired := r.ObserveUser("I still don't get it")
	assert.True(t, fired)
	assert.Equal(t, bus.ReasonConfusion, reason)
	assert.Equal(t, 2, r.ConfusionCount)

	_, fired = r.ObserveUser("stuck again")
	assert.False(t, fired, "never twice in one session")
	_, fired = r.Force(bus.ReasonLongSession)
	assert.False(t, fired)
}

func TestReflection_CurlyApostrophe(t *testing.T) {
	var r Reflection

	_, fired := r.ObserveUser("I don’t get it")
	assert.False(t, fired)
	reason, fired := r.ObserveUser("I still can’t understand this")
	assert.True(t, fired)
	assert.Equal(t, bus.ReasonConfusion, reason)
	assert.Equal(t, 2, r.ConfusionCount)
}

func TestReflection_HintsFire(t *testing.T) {
	var r Reflection

	r.ObserveResponse(domain.ScaffoldHint)
	r.ObserveResponse(domain.ScaffoldNone)
	r.ObserveResponse(domain.ScaffoldBreakDown)
	reason, fired := r.ObserveResponse(domain.ScaffoldAnotherWay)
	assert.True(t, fired)
	assert.Equal(t, bus.ReasonHints, reason)
	assert.Equal(t, 3, r.HintMessages)
}

func TestReflection_Force(t *testing.T) {
	var r Reflection
	reason, fired := r.Force(bus.ReasonLongSession)
	assert.True(t, fired)
	assert.Equal(t, bus.ReasonLongSession, reason)

	r.ConfusionCount = 5
	_, fired = r.ObserveUser("confused")
	assert.False(t, fired)
}

func TestReflectionPrompt(t *testing.T) {
	assert.Contains(t, ReflectionPrompt(bus.ReasonConfusion), "confusing")
	assert.Contains(t, ReflectionPrompt(bus.ReasonHints), "hints")
	assert.Contains(t, ReflectionPrompt(bus.ReasonLongSession), "a while")
}

func TestClassifyFailure(t *testing.T) {
	quota := &llm.ProviderError{Status: 429, Message: "Daily limit reached on the Free plan.", Kind: llm.ErrQuotaExceeded}
	safety := &llm.ProviderError{Status: 200, Kind: llm.ErrSafetyRefusal}

	tests := []struct {
		name    string
		err     error
		kind    FailureKind
		message string
	}{
		{"typed quota keeps provider text", quota, FailureQuota, "Daily limit reached on the Free plan."},
		{"wrapped quota", fmt.Errorf("tutor: %w", quota), FailureQuota, "Daily limit reached on the Free plan."},
		{"typed safety default text", safety, FailureSafety, defaultSafetyMessage},
		{"quota by message", errors.New("upstream: quota exhausted"), FailureQuota, defaultQuotaMessage},
		{"safety by message", errors.New("response blocked by content policy"), FailureSafety, defaultSafetyMessage},
		{"timeout", llm.ErrTimeout, FailureUnknown, ""},
		{"nil", nil, FailureUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFailure(tt.err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestFallbackReply(t *testing.T) {
	assert.Contains(t, FallbackReply("how do I add fractions?"), "denominators")
	assert.Contains(t, FallbackReply("Solve for x: 2x + 3 = 7"), "both sides")
	assert.Contains(t, FallbackReply("hi there"), "What are you working on?")
	assert.Contains(t, FallbackReply("hello, I'm stuck on fractions"), "denominators", "topic rules win over greetings")
	assert.Equal(t, fallbackDefault, FallbackReply("tell me about volcanoes"))
}

package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrOllamaUnavailable indicates the Ollama server is unreachable.
	ErrOllamaUnavailable = errors.New("ollama server unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrQuotaExceeded indicates the student's plan has no messages left.
	ErrQuotaExceeded = errors.New("message quota exceeded")

	// ErrSafetyRefusal indicates the provider refused to answer on safety grounds.
	ErrSafetyRefusal = errors.New("provider safety refusal")
)

// ProviderError carries a non-success response from the provider. Message
// is the provider's human-readable explanation, suitable for showing as-is.
type ProviderError struct {
	Status  int
	Message string
	Kind    error // ErrQuotaExceeded, ErrSafetyRefusal, or nil
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.Status)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Kind }

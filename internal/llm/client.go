package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest holds the parameters for a chat generation call.
type ChatRequest struct {
	Task         TaskType
	Instructions string
	Messages     []Message
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// ChatResponse holds the result of a chat generation call. Plan and
// Remaining echo the provider's quota headers when present.
type ChatResponse struct {
	Text      string
	Model     string
	LatencyMs int64
	Plan      string
	Remaining *int
}

// LLMClient provides access to a language model for chat generation.
type LLMClient interface {
	// Chat sends instructions plus conversation turns and returns the reply.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Available checks whether the Ollama server is reachable.
	Available(ctx context.Context) bool
}

// ollamaClient implements LLMClient using the Ollama HTTP API.
type ollamaClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewOllamaClient creates an LLMClient that talks to an Ollama instance.
func NewOllamaClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &ollamaClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// ollamaChatRequest is the JSON body sent to POST /api/chat.
type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaChatResponse is the JSON body returned by POST /api/chat (non-streaming).
type ollamaChatResponse struct {
	Model      string  `json:"model"`
	Message    Message `json:"message"`
	DoneReason string  `json:"done_reason,omitempty"`
}

type ollamaErrorBody struct {
	Error string `json:"error"`
}

type chatResult struct {
	body      ollamaChatResponse
	plan      string
	remaining *int
}

func (c *ollamaClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	taskCfg := c.cfg.Tasks[req.Task]
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	messages := make([]Message, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.Instructions})
	}
	messages = append(messages, req.Messages...)

	body := ollamaChatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: temp,
			NumPredict:  maxTok,
		},
	}

	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond
	attempts := 1 + c.cfg.MaxRetries

	var lastErr error
	made := 0
	for i := 0; i < attempts; i++ {
		made++
		res, err := c.attempt(ctx, timeout, body)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(LLMCallEvent{
				Task:      req.Task,
				Model:     c.cfg.Model,
				LatencyMs: latency,
				Attempts:  made,
				Success:   true,
			})
			return &ChatResponse{
				Text:      res.body.Message.Content,
				Model:     res.body.Model,
				LatencyMs: latency,
				Plan:      res.plan,
				Remaining: res.remaining,
			}, nil
		}
		lastErr = err

		// Quota and safety answers are final; a cancelled caller stops retries.
		if errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrSafetyRefusal) || ctx.Err() != nil {
			break
		}
	}

	finalErr := classify(ctx, lastErr)
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  made,
		Success:   false,
		ErrorCode: errorCode(finalErr),
	})
	return nil, finalErr
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrSafetyRefusal):
		return err
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil:
		return ErrTimeout
	case isConnectionError(err):
		return ErrOllamaUnavailable
	default:
		return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
	}
}

// attempt runs one request under its own timeout so a slow first try can
// still be retried.
func (c *ollamaClient) attempt(ctx context.Context, timeout time.Duration, body ollamaChatRequest) (*chatResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.cfg.Endpoint + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, providerError(httpResp.StatusCode, respBody)
	}

	var resp ollamaChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if resp.DoneReason == "safety" || resp.DoneReason == "content_filter" {
		return nil, &ProviderError{
			Status:  httpResp.StatusCode,
			Message: strings.TrimSpace(resp.Message.Content),
			Kind:    ErrSafetyRefusal,
		}
	}

	res := &chatResult{body: resp, plan: httpResp.Header.Get("X-Plan")}
	if v := httpResp.Header.Get("X-Remaining-Messages"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			res.remaining = &n
		}
	}
	return res, nil
}

func providerError(status int, body []byte) *ProviderError {
	msg := strings.TrimSpace(string(body))
	var eb ollamaErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		msg = eb.Error
	}

	pe := &ProviderError{Status: status, Message: msg}
	switch status {
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		pe.Kind = ErrQuotaExceeded
	case http.StatusUnavailableForLegalReasons:
		pe.Kind = ErrSafetyRefusal
	}
	return pe
}

func (c *ollamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := c.cfg.Endpoint + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrOllamaUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrQuotaExceeded):
		return "QUOTA"
	case errors.Is(err, ErrSafetyRefusal):
		return "SAFETY"
	default:
		return "UNKNOWN"
	}
}

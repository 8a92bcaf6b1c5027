package llm

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogObserver_FailureLogsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	obs := NewSlogObserver(logger)

	obs.OnCallComplete(LLMCallEvent{Task: TaskTutor, Model: "llama3.2", Attempts: 1, Success: true})
	assert.Zero(t, buf.Len(), "successful calls log at debug")

	obs.OnCallComplete(LLMCallEvent{Task: TaskTutor, Model: "llama3.2", Attempts: 2, ErrorCode: "QUOTA"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "llm_call", line["msg"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "tutor", line["task"])
	assert.Equal(t, "QUOTA", line["error_code"])
}

func TestLogObserver_Format(t *testing.T) {
	var buf bytes.Buffer
	NewLogObserver(&buf).OnCallComplete(LLMCallEvent{Task: TaskScaffold, Model: "m", Attempts: 1, ErrorCode: "TIMEOUT"})

	assert.Contains(t, buf.String(), "task=scaffold")
	assert.Contains(t, buf.String(), "status=err:TIMEOUT")
}

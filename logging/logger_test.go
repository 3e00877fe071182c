package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*CrewLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf})
	return l, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestCrewLogger_KeyValueArgsBecomeAttrs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)

	l.Info("task routed", "task_id", "t1", "confidence", 0.9)

	entry := decodeEntry(t, buf)
	assert.Equal(t, "task routed", entry["msg"])
	assert.Equal(t, "t1", entry["task_id"])
	assert.InDelta(t, 0.9, entry["confidence"], 1e-9)
	assert.NotContains(t, buf.String(), "%!")
}

func TestCrewLogger_ContextualAttrsAttached(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)

	l.WithComponent("orchestrator").WithSession("s1", "t1").Debug("task routed", "primary_agent", "risk_agent")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "orchestrator", entry["component"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "t1", entry["task_id"])
	assert.Equal(t, "risk_agent", entry["primary_agent"])
}

func TestCrewLogger_DanglingKeyIsPreserved(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.Warn("odd args", "orphan")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "orphan", entry["!BADKEY"])
}

func TestCrewLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)

	l.Info("below threshold", "key", "value")

	assert.Zero(t, buf.Len())
}

func TestCrewLogger_ErrorWithStack(t *testing.T) {
	l, buf := newBufferLogger(LogLevelError)

	l.ErrorWithStack(errors.New("boom"), "agent failed", "agent", "risk_agent")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "agent failed", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "risk_agent", entry["agent"])
	assert.NotEmpty(t, entry["stack_trace"])
}

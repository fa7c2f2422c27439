package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestRunLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	logger.Info("test.message", "key", "value", "count", 3)

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test.message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, 3.0, entry["count"])
}

func TestRunLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "json", Output: &buf})

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "kept")
}

func TestRunLogger_WithComponentAndRun(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	scoped := logger.WithComponent("runner").WithRun("sess-1", "run-1")
	scoped.Info("scoped.message")

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "runner", entry["component"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, "run-1", entry["run_id"])

	// the original logger stays unscoped
	buf.Reset()
	logger.Info("plain")
	entry = map[string]any{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasComponent := entry["component"]
	assert.False(t, hasComponent)
}

func TestRunLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "text", Output: &buf})
	logger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestRunLogger_LogToolCall(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	logger.LogToolCall("calculator", 5*time.Millisecond, true, nil)
	assert.Contains(t, buf.String(), "Tool execution completed")
	assert.Contains(t, buf.String(), "calculator")

	buf.Reset()
	logger.LogToolCall("calculator", 5*time.Millisecond, false, errors.New("bad input"))
	assert.Contains(t, buf.String(), "Tool execution failed")
	assert.Contains(t, buf.String(), "bad input")
}

func TestRunLogger_LogModelCall(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	logger.LogModelCall("gpt-4o", 120, 80*time.Millisecond, true, nil)
	assert.Contains(t, buf.String(), "Model call completed")
	assert.Contains(t, buf.String(), "gpt-4o")
}

func TestNoOpLogger(t *testing.T) {
	// must not panic and satisfies the interface
	var l Logger = NoOpLogger{}
	l.Debug("a")
	l.Info("b", "k", "v")
	l.Warn("c")
	l.Error("d")
}

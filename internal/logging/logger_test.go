// internal/logging/logger_test.go
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	logger := GetLogger("test")
	require.NotNil(t, logger)
}

func TestLogOutput(t *testing.T) {
	var buf bytes.Buffer
	InitLogging(LevelDebug, &buf)
	t.Cleanup(func() { SetDefaultLogger(GetNoopLogger()) })

	logger := GetLogger("test_component")
	logger.Info("test message", "key1", "value1", "key2", 123)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry), "log line should be JSON")

	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "test_component", logEntry["component"])
	assert.Equal(t, "value1", logEntry["key1"])
	assert.EqualValues(t, 123, logEntry["key2"])
}

func TestWithFieldChains(t *testing.T) {
	var buf bytes.Buffer
	InitLogging(LevelInfo, &buf)
	t.Cleanup(func() { SetDefaultLogger(GetNoopLogger()) })

	GetLogger("fetch").WithField("project_id", 42).WithContext(context.Background()).Warn("Sub-resource failed.")

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "fetch", logEntry["component"])
	assert.EqualValues(t, 42, logEntry["project_id"])
	assert.Equal(t, "WARN", logEntry["level"])
}

func TestIsDebugEnabled(t *testing.T) {
	SetLevel(LevelInfo)
	assert.False(t, IsDebugEnabled(), "IsDebugEnabled should return false when level is INFO")

	SetLevel(LevelDebug)
	assert.True(t, IsDebugEnabled(), "IsDebugEnabled should return true when level is DEBUG")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestNoopLoggerIsSafe(t *testing.T) {
	l := GetNoopLogger()
	l.Debug("ignored")
	assert.Same(t, l, l.WithField("a", 1))
}

func TestSetDefaultLoggerIgnoresNil(t *testing.T) {
	var buf bytes.Buffer
	InitLogging(LevelInfo, &buf)
	t.Cleanup(func() { SetDefaultLogger(GetNoopLogger()) })

	SetDefaultLogger(nil)
	GetLogger("auth").Info("Token loaded.")
	assert.Contains(t, buf.String(), `"component":"auth"`)

	SetDefaultLogger(GetNoopLogger())
	buf.Reset()
	GetLogger("auth").Info("Token loaded.")
	assert.Empty(t, buf.String())
	assert.Same(t, GetNoopLogger(), GetNoopLogger().WithField("k", 1))
}

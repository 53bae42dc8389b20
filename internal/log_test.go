package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		"WARNING": LogLevelWarn,
		"":        LogLevelInfo,
		"INFO":    LogLevelInfo,
		" debug ": LogLevelDebug,
		"TRACE":   LogLevelTrace,
		"chatty":  LogLevelInfo,
	}

	for input, expected := range tests {
		assert.Equal(t, expected, ParseLogLevel(input), "input %q", input)
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	l := NewNopLogger()
	l.Error("%s", "dropped")
	l.Info("dropped")
	l.With("component", "test").Warn("dropped")
	assert.Equal(t, LogLevelError, l.GetLevel())
}

func TestNewLoggerKeepsLevel(t *testing.T) {
	l := NewLogger(LogLevelDebug)
	defer l.Sync()
	assert.Equal(t, LogLevelDebug, l.GetLevel())
	assert.Equal(t, LogLevelDebug, l.With("run_id", "x").GetLevel())
}

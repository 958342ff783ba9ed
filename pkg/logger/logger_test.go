package logger

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(context.Background(), expected)

		actual := FromContext(ctx)

		require.NotNil(t, actual)
		assert.Equal(t, expected, actual)
	})

	t.Run("Should return a default logger when none is stored", func(t *testing.T) {
		log := FromContext(context.Background())

		require.NotNil(t, log)
		log.Info("still works")
	})

	t.Run("Should return a default logger for a wrong-typed value", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerCtxKey, "not a logger")

		log := FromContext(ctx)

		require.NotNil(t, log)
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	t.Run("Should map every level, defaulting unknowns to info", func(t *testing.T) {
		testCases := []struct {
			level    LogLevel
			expected int
		}{
			{DebugLevel, -4},
			{InfoLevel, 0},
			{WarnLevel, 4},
			{ErrorLevel, 8},
			{DisabledLevel, 1000},
			{LogLevel("unknown"), 0},
		}
		for _, tc := range testCases {
			assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
		}
	})
}

func TestLoggerLevels(t *testing.T) {
	t.Run("Should filter below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: WarnLevel, Output: &buf, TimeFormat: "15:04:05"})

		log.Debug("debug message")
		log.Info("info message")
		log.Warn("warn message")
		log.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("Should emit nothing when disabled", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: DisabledLevel, Output: &buf, TimeFormat: "15:04:05"})

		log.Error("error message")

		assert.Empty(t, buf.String())
	})
}

func TestLogger_With(t *testing.T) {
	t.Run("Should carry context fields into output", func(t *testing.T) {
		var buf bytes.Buffer
		base := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})

		base.With("component", "scheduler").Info("pass finished")

		output := buf.String()
		assert.Contains(t, output, "component")
		assert.Contains(t, output, "scheduler")
		assert.Contains(t, output, "pass finished")
	})
}

func TestConfigDefaults(t *testing.T) {
	t.Run("Should provide stdout defaults", func(t *testing.T) {
		cfg := DefaultConfig()

		assert.Equal(t, InfoLevel, cfg.Level)
		assert.Equal(t, os.Stdout, cfg.Output)
		assert.False(t, cfg.JSON)
	})

	t.Run("Should discard everything in tests", func(t *testing.T) {
		cfg := TestConfig()

		assert.Equal(t, DisabledLevel, cfg.Level)
		assert.Equal(t, io.Discard, cfg.Output)
	})
}

func TestIsTestEnvironment(t *testing.T) {
	t.Run("Should detect go test", func(t *testing.T) {
		assert.True(t, IsTestEnvironment())
	})
}

package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/phrazzld/paramstore/internal/config"
	"github.com/phrazzld/paramstore/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
		warnSeen  bool
	}{
		{"debug", true, true, true},
		{"INFO", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, &buf)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Same(t, l, slog.Default())

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tc.debugSeen, bytes.Contains([]byte(out), []byte("debug message")))
			assert.Equal(t, tc.infoSeen, bytes.Contains([]byte(out), []byte("info message")))
			assert.Equal(t, tc.warnSeen, bytes.Contains([]byte(out), []byte("warn message")))
		})
	}
}

func TestSetupWritesJSON(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info"}, &buf)
	require.NoError(t, err)

	l.Info("parameter updated", slog.String("slug", "MAX_USERS"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "parameter updated", entry["msg"])
	assert.Equal(t, "MAX_USERS", entry["slug"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"", slog.LevelInfo, true},
		{" Warning ", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tc := range tests {
		got, ok := logger.ParseLevel(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestContextHelpers(t *testing.T) {
	l, buf := logger.NewTestLogger(t)
	fallback := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))

	ctx := logger.WithLogger(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
	assert.Same(t, l, logger.FromContextOrDefault(ctx, fallback))

	ctx = logger.WithTraceID(ctx, "req-42")
	logger.FromContext(ctx).Warn("slow query")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0][logger.TraceIDKey])
	assert.Equal(t, []string{"slow query"}, buf.Messages("WARN"))
	assert.Empty(t, buf.Messages("ERROR"))
	logger.AssertLogContains(t, buf, "slow query")
}

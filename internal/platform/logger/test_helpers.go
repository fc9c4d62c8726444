package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer is a concurrency-safe buffer that captures JSON log output.
type TestLogBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write implements io.Writer.
func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the captured output.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards the captured output.
func (b *TestLogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Entries parses every captured line as a JSON record.
func (b *TestLogBuffer) Entries() ([]map[string]any, error) {
	lines := strings.Split(b.String(), "\n")
	entries := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Messages returns the msg field of every record at level (e.g. "WARN").
// An empty level matches every record.
func (b *TestLogBuffer) Messages(level string) []string {
	entries, err := b.Entries()
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if level != "" && e[slog.LevelKey] != level {
			continue
		}
		if msg, ok := e[slog.MessageKey].(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

// NewTestLogger returns a debug-level JSON logger writing to a fresh buffer.
func NewTestLogger(t *testing.T) (*slog.Logger, *TestLogBuffer) {
	t.Helper()
	buf := &TestLogBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// NewTestContext returns a context carrying a capturing logger.
func NewTestContext(t *testing.T) (context.Context, *TestLogBuffer) {
	t.Helper()
	l, buf := NewTestLogger(t)
	return WithLogger(context.Background(), l), buf
}

// AssertLogContains fails the test unless the captured output contains content.
func AssertLogContains(t *testing.T, buf *TestLogBuffer, content string) {
	t.Helper()
	if logs := buf.String(); !strings.Contains(logs, content) {
		t.Errorf("expected log to contain %q\nlogs:\n%s", content, logs)
	}
}

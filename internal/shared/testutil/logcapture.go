package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord represents a captured log record for testing
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler captures log records for testing. Handlers derived with
// WithAttrs share the parent's records.
type CaptureHandler struct {
	store *logStore
	attrs []slog.Attr
	group string
	t     *testing.T
}

// NewTestLogger creates a logger with a capturing handler
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{store: &logStore{}, t: t}
	return slog.New(h), h
}

// Enabled implements slog.Handler
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

// WithGroup implements slog.Handler
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	next := *h
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}

// Records returns a copy of the captured records
func (h *CaptureHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	out := make([]LogRecord, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// Find returns the records at level whose message contains message
func (h *CaptureHandler) Find(level slog.Level, message string) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			out = append(out, r)
		}
	}
	return out
}

// AssertLogContains checks that a record at level contains message
func AssertLogContains(t *testing.T, h *CaptureHandler, level slog.Level, message string) {
	t.Helper()
	if len(h.Find(level, message)) > 0 {
		return
	}
	t.Errorf("expected log message not found at level %s: %q", level, message)
	for _, r := range h.Records() {
		t.Logf("  - [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
}

// AssertNoErrors checks that no error-level logs were recorded
func AssertNoErrors(t *testing.T, h *CaptureHandler) {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level >= slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerWritesSubjectAndFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger = NewComponentLogger(logger, "downloads")
	logger.Info("download started",
		String(FieldTaskID, "task-1"),
		String(FieldJobKind, "download"),
		String(FieldURL, "https://example.com/watch?v=abc"),
	)

	out := buf.String()
	for _, want := range []string{"INFO", "[downloads]", "download task-1", "download started", "url: https://example.com/watch?v=abc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	ctx := WithTaskID(context.Background(), "task-9")
	ctx = WithJobKind(ctx, "listing")
	ctx = WithRequestID(ctx, "req-abc")

	WithContext(ctx, logger).Info("page reconciled")

	out := buf.String()
	for _, want := range []string{"task-9", "listing", "req-abc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}

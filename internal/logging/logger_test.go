package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"shaggydog/internal/services"
)

func newBufferLogger(t *testing.T, format string) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(buf, levelVar)
	default:
		handler = newConsoleHandler(buf, levelVar)
	}
	return slog.New(handler), buf
}

func TestConsoleHandlerHoistsComponent(t *testing.T) {
	logger, buf := newBufferLogger(t, "console")
	logger.With(String(FieldComponent, "runner")).Info("job started", String("breed", "Golden Retriever"))

	line := buf.String()
	if !strings.Contains(line, "INFO runner: job started") {
		t.Fatalf("expected component-prefixed message, got %q", line)
	}
	if !strings.Contains(line, `breed="Golden Retriever"`) {
		t.Fatalf("expected quoted attr, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as key-value, got %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(buf, levelVar))

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Fatalf("info line leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "should be kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logger, buf := newBufferLogger(t, "console")
	ctx := services.WithUserID(context.Background(), 42)
	ctx = services.WithJobID(ctx, "job-abc")

	WithContext(ctx, logger).Info("progress updated")

	line := buf.String()
	if !strings.Contains(line, "user_id=42") {
		t.Fatalf("expected user_id field, got %q", line)
	}
	if !strings.Contains(line, "job_id=job-abc") {
		t.Fatalf("expected job_id field, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must report disabled at every level.
	logger.Error("discarded")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}

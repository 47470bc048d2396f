package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	WithComponent(logger, "pipeline").Info("stage started", Int("segment", 2))

	out := buf.String()
	if !strings.Contains(out, "[pipeline]") {
		t.Fatalf("expected component header, got %q", out)
	}
	if !strings.Contains(out, "stage started") {
		t.Fatalf("expected message, got %q", out)
	}
	if !strings.Contains(out, "- segment: 2") {
		t.Fatalf("expected indented field, got %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info should be suppressed at warn level, got %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn should be emitted, got %q", out)
	}
}

func TestNewJSONFormat(t *testing.T) {
	logger, err := New(Options{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestJSONHandlerOutputShape(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: lvl}))

	logger.Info("render complete", String(FieldStage, "rendering"), Int(FieldSegment, 1))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if payload["msg"] != "render complete" {
		t.Fatalf("msg = %v", payload["msg"])
	}
	if payload[FieldStage] != "rendering" {
		t.Fatalf("stage = %v", payload[FieldStage])
	}
}

func TestWithContextFallsBack(t *testing.T) {
	if WithContext(context.Background(), nil) == nil {
		t.Fatal("expected nop logger fallback")
	}

	logger := NewNop()
	ctx := ContextWithLogger(context.Background(), logger)
	if WithContext(ctx, nil) != logger {
		t.Fatal("expected logger from context")
	}
}

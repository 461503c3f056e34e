package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTerminalHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := NewTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)

	ts := time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "task created", 0)
	r.AddAttrs(slog.String("task_id", "t-1"))

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	want := "10:30:45.123 INF task created task_id=t-1\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTerminalHandler_Levels(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false))
			logger.Log(context.Background(), tt.level, "msg")
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestTerminalHandler_ColourCodes(t *testing.T) {
	var plain, coloured bytes.Buffer
	slog.New(NewTerminalHandler(&plain, nil, false)).Warn("careful")
	slog.New(NewTerminalHandler(&coloured, nil, true)).Warn("careful")

	if strings.Contains(plain.String(), "\033[") {
		t.Errorf("expected no escape codes, got: %q", plain.String())
	}
	if !strings.Contains(coloured.String(), ansiYellow+"WRN"+ansiReset) {
		t.Errorf("expected yellow level, got: %q", coloured.String())
	}
}

func TestTerminalHandler_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}, false))

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got: %s", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn output, got: %s", buf.String())
	}
}

func TestTerminalHandler_DefaultLevel(t *testing.T) {
	h := NewTerminalHandler(&bytes.Buffer{}, nil, false)

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled by default")
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be enabled by default")
	}
}

func TestTerminalHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewTerminalHandler(&buf, nil, false)).
		With("component", "store").
		WithGroup("http").
		With("method", "POST")

	logger.Info("request", "status", 201)

	out := buf.String()
	for _, want := range []string{"component=store", "http.method=POST", "http.status=201"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
}

func TestTerminalHandler_GroupAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewTerminalHandler(&buf, nil, false))

	logger.Info("saved", slog.Group("task", slog.String("id", "t-1"), slog.Bool("finished", true)))

	out := buf.String()
	if !strings.Contains(out, "task.id=t-1") || !strings.Contains(out, "task.finished=true") {
		t.Errorf("expected flattened group, got: %s", out)
	}
}

func TestTerminalHandler_QuotesStringsWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewTerminalHandler(&buf, nil, false)).Info("created", "name", "buy milk")

	if !strings.Contains(buf.String(), `name="buy milk"`) {
		t.Errorf("expected quoted value, got: %s", buf.String())
	}
}

func TestTerminalHandler_EmptyGroup(t *testing.T) {
	h := NewTerminalHandler(&bytes.Buffer{}, nil, false)

	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

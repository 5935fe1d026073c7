package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { Configure("info") })

	Info("upload.complete", map[string]any{
		"session_id": "abc",
		"status":     200,
		"err":        errors.New("boom"),
	})

	entries := logs.FilterMessage("upload.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["session_id"] != "abc" {
		t.Fatalf("unexpected session_id: %v", fields["session_id"])
	}
	if fields["err"] != "boom" {
		t.Fatalf("unexpected err field: %v", fields["err"])
	}
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { Configure("info") })

	Debug("debug.line", nil)
	Info("info.line", nil)
	Warn("warn.line", nil)
	Error("error.line", nil)

	if got := logs.Len(); got != 2 {
		t.Fatalf("expected 2 entries at warn+, got %d", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{in: "debug", want: zapcore.DebugLevel},
		{in: " WARN ", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "", want: zapcore.InfoLevel},
		{in: "nonsense", want: zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for value, want := range cases {
		if got := ParseLevel(value); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestScoped(t *testing.T) {
	t.Run("prefers the context logger", func(t *testing.T) {
		var fromCtx, fallback bytes.Buffer
		ctx := ContextWithLogger(context.Background(), New(&fromCtx, slog.LevelInfo))

		Scoped(ctx, New(&fallback, slog.LevelInfo), "service", "BackupService", "Push", "site", "clinic").Info("pushed")

		if fallback.Len() != 0 {
			t.Fatalf("fallback logger should be unused, got %s", fallback.String())
		}
		var entry map[string]any
		if err := json.Unmarshal(fromCtx.Bytes(), &entry); err != nil {
			t.Fatalf("decode log: %v", err)
		}
		if entry["service"] != "BackupService" || entry["operation"] != "Push" || entry["site"] != "clinic" {
			t.Fatalf("unexpected attributes %v", entry)
		}
	})

	t.Run("falls back and omits an empty operation", func(t *testing.T) {
		var buf bytes.Buffer
		Scoped(context.Background(), New(&buf, slog.LevelInfo), "handler", "CalendarHandler", "").Info("ok")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("decode log: %v", err)
		}
		if entry["handler"] != "CalendarHandler" {
			t.Fatalf("unexpected attributes %v", entry)
		}
		if _, ok := entry["operation"]; ok {
			t.Fatalf("operation should be omitted, got %v", entry)
		}
	})

	t.Run("nil context and logger are tolerated", func(t *testing.T) {
		if ContextWithLogger(nil, nil) != nil {
			t.Fatal("expected nil context back")
		}
		if FromContext(nil) != nil {
			t.Fatal("expected no logger")
		}
	})
}

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerFormatsMessages(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "info", Output: &buf})

	l.Debug("hidden %d", 1)
	l.With("chat", "tg:1").Info("drafted %s", "Q42")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("record %q is not one JSON object: %v", buf.String(), err)
	}
	if rec["msg"] != "drafted Q42" || rec["chat"] != "tg:1" || rec["level"] != "INFO" {
		t.Fatalf("record = %v", rec)
	}
}

func TestGetLoggerLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelDebug,
	}
	for in, want := range tests {
		if got := getLoggerLevel(in); got != want {
			t.Fatalf("getLoggerLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want LogMode
	}{
		{"dev", ModeDev},
		{"", ModeDev},
		{"unknown", ModeDev},
		{"prod", ModeProd},
		{"PROD", ModeProd},
		{"ModeProd", ModeProd},
		{" production ", ModeProd},
		{"silence", ModeSilence},
		{"ModeSilence", ModeSilence},
		{"off", ModeSilence},
	}
	for _, tc := range tests {
		if got := ParseMode(tc.in); got != tc.want {
			t.Fatalf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewAsyncReady(t *testing.T) {
	log, ah := NewAsync(8, ModeSilence)
	if log == nil || !ah.Ready() {
		t.Fatalf("async handler not ready")
	}
	log.Info("dropped into discard")
}

func TestRedact(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: Redact}))
	log.Info("login", "email", "ivan@example.com", "password", "hunter22", "CVV", "123")
	out := buf.String()
	if strings.Contains(out, "hunter22") || strings.Contains(out, `"123"`) {
		t.Fatalf("secret leaked: %s", out)
	}
	if !strings.Contains(out, "ivan@example.com") || strings.Count(out, Redacted) != 2 {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestAsyncCloseDrains(t *testing.T) {
	var buf bytes.Buffer
	ah := NewAsyncHandler(slog.NewTextHandler(&buf, nil), 16)
	log := slog.New(ah).With("game", 2001)
	for i := 0; i < 10; i++ {
		log.Info("spin", "n", i)
	}
	ah.Close()
	if got := strings.Count(buf.String(), "msg=spin"); got != 10 {
		t.Fatalf("drained %d lines, dropped %d", got, ah.Dropped())
	}
	log.Info("after close")
	if ah.Dropped() != 1 {
		t.Fatalf("dropped = %d", ah.Dropped())
	}
}

package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"ERROR":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestReplace_RoutesPackageFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Replace(zap.New(core))
	t.Cleanup(func() { Replace(zap.NewNop()) })

	Debug("hidden")
	Info("request", "status", 200)
	Error("boom", "error", "x")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "request" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	if got := entries[0].ContextMap()["status"]; got != int64(200) {
		t.Errorf("expected status=200, got %v", got)
	}
}

func TestNewLogrus_FollowsLogFormat(t *testing.T) {
	tests := []struct {
		level, format string
		wantLevel     logrus.Level
		wantText      bool
	}{
		{"INFO", "json", logrus.InfoLevel, false},
		{"debug", "console", logrus.DebugLevel, true},
		{"WARNING", "CONSOLE", logrus.WarnLevel, true},
		{"ERROR", "", logrus.ErrorLevel, false},
	}
	for _, tt := range tests {
		l := NewLogrus(tt.level, tt.format)
		if l.GetLevel() != tt.wantLevel {
			t.Errorf("%s/%s: level %v, want %v", tt.level, tt.format, l.GetLevel(), tt.wantLevel)
		}
		_, isText := l.Formatter.(*logrus.TextFormatter)
		if isText != tt.wantText {
			t.Errorf("%s/%s: text formatter=%v, want %v", tt.level, tt.format, isText, tt.wantText)
		}
	}
}

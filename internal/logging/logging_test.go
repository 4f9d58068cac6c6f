package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	logger, err := New(Config{Level: "debug", Format: FormatConsole})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug enabled")
	}

	logger, err = New(Config{})
	if err != nil {
		t.Fatalf("new default: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) || !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info default level")
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{Level: "loud"}).Validate(); err == nil {
		t.Fatalf("expected level error")
	}
	if err := (Config{Format: "xml"}).Validate(); err == nil {
		t.Fatalf("expected format error")
	}
	if err := (Config{Level: "warn", Format: "JSON"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected New to reject bad level")
	}
}

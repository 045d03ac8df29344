package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	logger := New(DefaultConfig())
	if logger.Component() != ComponentApp {
		t.Fatalf("component = %q, want %q", logger.Component(), ComponentApp)
	}
}

func TestWithComponent(t *testing.T) {
	logger := New(DefaultConfig()).WithComponent(ComponentRate)
	if logger.Component() != ComponentRate {
		t.Fatalf("component = %q, want %q", logger.Component(), ComponentRate)
	}
}

func TestComponentAttachedToEveryLine(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentStore,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.Info("persisted", FieldCount, 3)
	out := buf.String()
	if !strings.Contains(out, "component=store") {
		t.Fatalf("component missing from output: %s", out)
	}
	if !strings.Contains(out, "count=3") {
		t.Fatalf("field missing from output: %s", out)
	}
}

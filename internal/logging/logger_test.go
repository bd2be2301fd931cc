package logging

import (
	"context"
	"strings"
	"testing"

	"packwright/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewDefaultsToConsole(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithPhase(ctx, "analysis")
	ctx = services.WithTask(ctx, "trend_research")

	fields := ContextFields(ctx)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	joined := strings.Join(keys, ",")
	for _, want := range []string{FieldRunID, FieldPhase, FieldTask} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing context field %s in %s", want, joined)
		}
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("should not panic")
}

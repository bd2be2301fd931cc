package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("disk full")
	err := Wrap(ErrTransient, "organizing", "move document", "Failed to place document", base)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "analysis", "fan-out", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should default to transient: %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(Wrap(ErrValidation, "preflight", "classify", "no transcript", nil)) {
		t.Fatal("validation errors must not be retryable")
	}
	if !IsRetryable(Wrap(ErrTransient, "docstore", "list", "timeout", nil)) {
		t.Fatal("transient errors must be retryable")
	}
}

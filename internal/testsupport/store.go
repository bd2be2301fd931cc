package testsupport

import (
	"context"
	"testing"

	"packwright/internal/config"
	"packwright/internal/run"
)

// MustOpenStore opens a run.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *run.Store {
	t.Helper()

	store, err := run.Open(cfg)
	if err != nil {
		t.Fatalf("run.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun creates a pending run for tests using the provided store.
func NewRun(t testing.TB, store *run.Store, folderRef, folderName string) *run.Run {
	t.Helper()

	r, err := store.NewRun(context.Background(), folderRef, folderName)
	if err != nil {
		t.Fatalf("store.NewRun: %v", err)
	}
	return r
}

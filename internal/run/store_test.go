package run_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"packwright/internal/run"
	"packwright/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	r, err := store.NewRun(ctx, "Episode 42 - Jane Doe", "Episode 42 - Jane Doe")
	if err != nil {
		t.Fatalf("NewRun failed: %v", err)
	}
	if r.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}
	if r.Status != run.StatusPending {
		t.Fatalf("expected pending status, got %s", r.Status)
	}
	if r.Revision != 1 {
		t.Fatalf("expected initial revision 1, got %d", r.Revision)
	}

	fetched, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.FolderRef != "Episode 42 - Jane Doe" {
		t.Fatalf("unexpected fetched run: %#v", fetched)
	}
}

func TestGetByIDMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.GetByID(context.Background(), "no-such-run"); !errors.Is(err, run.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFolderExclusivity(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewRun(t, store, "Episode 7", "Episode 7")

	if _, err := store.NewRun(ctx, "Episode 7", "Episode 7"); !errors.Is(err, run.ErrActiveRunExists) {
		t.Fatalf("expected ErrActiveRunExists, got %v", err)
	}

	active, err := store.GetActiveByFolder(ctx, "Episode 7")
	if err != nil {
		t.Fatalf("GetActiveByFolder failed: %v", err)
	}
	if active == nil || active.ID != first.ID {
		t.Fatalf("expected first run to hold the folder, got %#v", active)
	}

	// A terminal run releases the slot.
	first.Status = run.StatusCancelled
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	second, err := store.NewRun(ctx, "Episode 7", "Episode 7")
	if err != nil {
		t.Fatalf("NewRun after cancel failed: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a fresh run after the folder was released")
	}
}

func TestUpdateRejectsBackwardTransition(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	r := testsupport.NewRun(t, store, "Episode 8", "Episode 8")
	r.Status = run.StatusClassified
	if err := store.Update(ctx, r); err != nil {
		t.Fatalf("Update forward failed: %v", err)
	}

	r.Status = run.StatusPending
	if err := store.Update(ctx, r); !errors.Is(err, run.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateDetectsRevisionConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	r := testsupport.NewRun(t, store, "Episode 9", "Episode 9")

	stale, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	r.Status = run.StatusClassifying
	if err := store.Update(ctx, r); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}

	stale.Status = run.StatusClassifying
	if err := store.Update(ctx, stale); !errors.Is(err, run.ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict, got %v", err)
	}
}

func TestUpdatePersistsState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	r := testsupport.NewRun(t, store, "Episode 10", "Episode 10")

	state, err := r.State()
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	state.Classification = &run.Classification{
		Kind:           run.ClassificationNew,
		MarkerName:     "Jane Doe Transcript.txt",
		MarkerLocation: "root",
	}
	if err := r.SetState(state); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	r.Status = run.StatusClassified
	if err := store.Update(ctx, r); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	got, err := fetched.State()
	if err != nil {
		t.Fatalf("fetched State failed: %v", err)
	}
	if got.Classification == nil || got.Classification.Kind != run.ClassificationNew {
		t.Fatalf("classification not persisted: %#v", got.Classification)
	}
	if got.Classification.MarkerLocation != "root" {
		t.Fatalf("unexpected marker location: %q", got.Classification.MarkerLocation)
	}
}

func TestNextForStatusesSkipsSuspended(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	parked := testsupport.NewRun(t, store, "Episode 11", "Episode 11")
	parked.Status = run.StatusAwaitingTitle
	if err := store.Update(ctx, parked); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	ready := testsupport.NewRun(t, store, "Episode 12", "Episode 12")

	next, err := store.NextForStatuses(ctx, run.StatusPending, run.StatusClassified, run.StatusDiscovered)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != ready.ID {
		t.Fatalf("expected the pending run, got %#v", next)
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cases := []struct {
		folder   string
		inFlight run.Status
		expected run.Status
	}{
		{"Episode A", run.StatusClassifying, run.StatusPending},
		{"Episode B", run.StatusAnalyzing, run.StatusDiscovered},
		{"Episode C", run.StatusOrganizing, run.StatusAuthored},
	}

	var ids []string
	stale := time.Now().UTC().Add(-time.Hour)
	for _, tc := range cases {
		r := testsupport.NewRun(t, store, tc.folder, tc.folder)
		r.Status = tc.inFlight
		r.LastHeartbeat = &stale
		if err := store.Update(ctx, r); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, r.ID)
	}

	// A live heartbeat must not be reclaimed.
	live := testsupport.NewRun(t, store, "Episode D", "Episode D")
	now := time.Now().UTC()
	live.Status = run.StatusAnalyzing
	live.LastHeartbeat = &now
	if err := store.Update(ctx, live); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reclaimed, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if reclaimed != int64(len(cases)) {
		t.Fatalf("expected %d reclaimed, got %d", len(cases), reclaimed)
	}

	for i, tc := range cases {
		got, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Status != tc.expected {
			t.Fatalf("%s: expected %s, got %s", tc.folder, tc.expected, got.Status)
		}
		if got.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.folder)
		}
	}

	untouched, err := store.GetByID(ctx, live.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != run.StatusAnalyzing {
		t.Fatalf("live run should not be reclaimed, got %s", untouched.Status)
	}
}

func TestResetProcessingRollsBackEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	r := testsupport.NewRun(t, store, "Episode E", "Episode E")
	r.Status = run.StatusDelivering
	if err := store.Update(ctx, r); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	parked := testsupport.NewRun(t, store, "Episode F", "Episode F")
	parked.Status = run.StatusAwaitingRepackage
	if err := store.Update(ctx, parked); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reset, err := store.ResetProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetProcessing failed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset, got %d", reset)
	}

	got, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != run.StatusOrganized {
		t.Fatalf("expected organized after rollback, got %s", got.Status)
	}

	stillParked, err := store.GetByID(ctx, parked.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stillParked.Status != run.StatusAwaitingRepackage {
		t.Fatalf("suspended run must survive reset, got %s", stillParked.Status)
	}
}

func TestCancelAndRetry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	r := testsupport.NewRun(t, store, "Episode G", "Episode G")
	changed, err := store.Cancel(ctx, r.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !changed {
		t.Fatal("expected cancel to apply")
	}
	changed, err = store.Cancel(ctx, r.ID)
	if err != nil {
		t.Fatalf("second Cancel failed: %v", err)
	}
	if changed {
		t.Fatal("cancel of a terminal run must be a no-op")
	}

	failed := testsupport.NewRun(t, store, "Episode H", "Episode H")
	failed.SetFailed("analysis blew up")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retried, err := store.RetryFailed(ctx, failed.ID)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected 1 retried, got %d", retried)
	}
	got, err := store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != run.StatusPending || got.ErrorMessage != "" {
		t.Fatalf("unexpected run after retry: %#v", got)
	}
}

func TestHealthBuckets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	statuses := []run.Status{
		run.StatusClassifying,
		run.StatusAwaitingTitle,
		run.StatusCompleted,
		run.StatusFailed,
	}
	for i, status := range statuses {
		r := testsupport.NewRun(t, store, "Episode "+string(rune('P'+i)), "")
		r.Status = status
		if status == run.StatusFailed {
			r.SetFailed("boom")
		}
		if err := store.Update(ctx, r); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 4 || health.Active != 1 || health.Suspended != 1 || health.Completed != 1 || health.Failed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

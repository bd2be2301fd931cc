package daemon_test

import (
	"context"
	"errors"
	"testing"

	"packwright/internal/approval"
	"packwright/internal/config"
	"packwright/internal/daemon"
	"packwright/internal/docstore"
	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
	"packwright/internal/testsupport"
	"packwright/internal/workflow"
)

type fixture struct {
	cfg    *config.Config
	store  *run.Store
	docs   *docstore.FS
	gate   *approval.Gate
	daemon *daemon.Daemon
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	docs, err := docstore.NewFS(cfg.StoreRoot())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	gate := approval.NewGate(store)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)

	d, err := daemon.New(cfg, store, docs, gate, logger, mgr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{cfg: cfg, store: store, docs: docs, gate: gate, daemon: d}
}

func TestStartRunResolvesFolderByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testsupport.SeedEpisodeFolder(t, f.cfg.StoreRoot(), "Episode 40 - Jane Doe", "Jane Doe Transcript")

	r, err := f.daemon.StartRun(ctx, "Episode 40 - Jane Doe")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if r.Status != run.StatusPending {
		t.Fatalf("status = %s", r.Status)
	}
	if r.FolderName != "Episode 40 - Jane Doe" || r.FolderRef == "" {
		t.Fatalf("unexpected run: %+v", r)
	}
}

func TestStartRunRejectsUnknownFolder(t *testing.T) {
	f := newFixture(t)

	if _, err := f.daemon.StartRun(context.Background(), "No Such Folder"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestStartRunRejectsSecondActiveRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testsupport.SeedEpisodeFolder(t, f.cfg.StoreRoot(), "Episode 40 - Jane Doe", "Jane Doe Transcript")

	if _, err := f.daemon.StartRun(ctx, "Episode 40 - Jane Doe"); err != nil {
		t.Fatalf("first StartRun: %v", err)
	}
	if _, err := f.daemon.StartRun(ctx, "Episode 40 - Jane Doe"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCancelRunOnlyWhileSuspended(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testsupport.NewRun(t, f.store, "ref", "Episode 40 - Jane Doe")

	if _, err := f.daemon.CancelRun(ctx, r.ID); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("pending run should reject cancellation, got %v", err)
	}

	r.Status = run.StatusAwaitingTitle
	if err := f.store.Update(ctx, r); err != nil {
		t.Fatalf("Update: %v", err)
	}

	cancelled, err := f.daemon.CancelRun(ctx, r.ID)
	if err != nil {
		t.Fatalf("CancelRun: %v", err)
	}
	if cancelled.Status != run.StatusCancelled {
		t.Fatalf("status = %s", cancelled.Status)
	}
}

func TestDecideValidatesOption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := testsupport.NewRun(t, f.store, "ref", "Episode 40 - Jane Doe")

	r.Status = run.StatusClassifying
	if err := f.store.Update(ctx, r); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := f.gate.Present(ctx, r, approval.NewRepackageApproval(), run.StatusAwaitingRepackage); err != nil {
		t.Fatalf("Present: %v", err)
	}

	if _, err := f.daemon.Decide(ctx, r.ID, "bogus"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown option, got %v", err)
	}
	decided, err := f.daemon.Decide(ctx, r.ID, approval.RepackageProceed)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != run.StatusRepackageApproved {
		t.Fatalf("status = %s", decided.Status)
	}
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	f := newFixture(t)

	ok, detail, err := f.daemon.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if ok || detail != "ntfy topic not configured" {
		t.Fatalf("unexpected result: %v %q", ok, detail)
	}
}

func TestStatusReportsPaths(t *testing.T) {
	f := newFixture(t)

	status := f.daemon.Status(context.Background())
	if status.Running {
		t.Fatal("daemon should not report running before Start")
	}
	if status.DatabasePath != f.cfg.DatabasePath() || status.LockFilePath == "" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

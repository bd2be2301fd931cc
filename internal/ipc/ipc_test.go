package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"packwright/internal/approval"
	"packwright/internal/daemon"
	"packwright/internal/docstore"
	"packwright/internal/ipc"
	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/stage"
	"packwright/internal/testsupport"
	"packwright/internal/workflow"
)

type noopPhase struct{}

func (noopPhase) Prepare(context.Context, *run.Run) error { return nil }
func (noopPhase) Execute(context.Context, *run.Run) error { return nil }
func (noopPhase) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	docs, err := docstore.NewFS(cfg.StoreRoot())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	gate := approval.NewGate(store)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigurePhases(workflow.PhaseSet{Deliverer: noopPhase{}})

	d, err := daemon.New(cfg, store, docs, gate, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.LogDir(), "packwright.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.PID <= 0 {
		t.Fatalf("expected pid, got %d", status.PID)
	}

	testsupport.SeedEpisodeFolder(t, cfg.StoreRoot(), "Episode 40 - Jane Doe", "Jane Doe Transcript")
	startRun, err := client.RunStart("Episode 40 - Jane Doe")
	if err != nil {
		t.Fatalf("RunStart failed: %v", err)
	}
	if startRun.Run.ID == "" || startRun.Run.FolderName != "Episode 40 - Jane Doe" {
		t.Fatalf("unexpected run: %+v", startRun.Run)
	}

	if _, err := client.RunStart("No Such Folder"); err == nil {
		t.Fatal("expected RunStart to fail for unknown folder")
	}

	listResp, err := client.RunList(nil)
	if err != nil {
		t.Fatalf("RunList failed: %v", err)
	}
	if len(listResp.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(listResp.Runs))
	}

	pendingOnly, err := client.RunList([]string{string(run.StatusPending)})
	if err != nil {
		t.Fatalf("RunList filtered failed: %v", err)
	}
	if len(pendingOnly.Runs) != 1 {
		t.Fatalf("expected 1 pending run, got %d", len(pendingOnly.Runs))
	}

	// Park the run at the title checkpoint, then exercise the decision surface.
	r, err := store.GetByID(ctx, startRun.Run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	options := []run.TitleOption{
		{ID: "opt-1", Text: "First", Rank: 1},
		{ID: "opt-2", Text: "Second", Rank: 2},
	}
	if err := gate.Present(ctx, r, approval.NewTitleApproval(options), run.StatusAwaitingTitle); err != nil {
		t.Fatalf("Present: %v", err)
	}

	described, err := client.RunDescribe(startRun.Run.ID)
	if err != nil {
		t.Fatalf("RunDescribe failed: %v", err)
	}
	if described.Run.PendingApproval == nil || len(described.Run.PendingApproval.Options) != 2 {
		t.Fatalf("expected pending approval with 2 options: %+v", described.Run.PendingApproval)
	}

	if _, err := client.RunDecide(startRun.Run.ID, "opt-9"); err == nil {
		t.Fatal("expected RunDecide to reject an unknown option")
	}
	decided, err := client.RunDecide(startRun.Run.ID, "opt-2")
	if err != nil {
		t.Fatalf("RunDecide failed: %v", err)
	}
	if decided.Run.Status != string(run.StatusTitleSelected) {
		t.Fatalf("status = %s", decided.Run.Status)
	}

	if _, err := client.RunCancel(startRun.Run.ID); err == nil {
		t.Fatal("expected RunCancel to reject a run that is not suspended")
	}

	healthResp, err := client.RunHealth()
	if err != nil {
		t.Fatalf("RunHealth failed: %v", err)
	}
	if healthResp.Total != 1 || healthResp.Active != 1 {
		t.Fatalf("unexpected health response: %#v", healthResp)
	}

	dbHealth, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth failed: %v", err)
	}
	if !strings.HasSuffix(dbHealth.DBPath, "runs.db") {
		t.Fatalf("unexpected db path: %s", dbHealth.DBPath)
	}

	retryResp, err := client.RunRetry(nil)
	if err != nil {
		t.Fatalf("RunRetry failed: %v", err)
	}
	if retryResp.Updated != 0 {
		t.Fatalf("expected 0 retried runs, got %d", retryResp.Updated)
	}

	if err := os.WriteFile(d.LogPath(), []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: 0, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "first" || logResp.Lines[1] != "second" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}
	logResp, err = client.LogTail(ipc.LogTailRequest{Offset: logResp.Offset, Limit: 10})
	if err != nil {
		t.Fatalf("LogTail resume failed: %v", err)
	}
	if len(logResp.Lines) != 1 || logResp.Lines[0] != "third" {
		t.Fatalf("unexpected resumed tail: %#v", logResp.Lines)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp == nil || notifyResp.Message == "" {
		t.Fatalf("expected notification message, got %#v", notifyResp)
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

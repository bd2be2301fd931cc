package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"packwright/internal/run"
)

// syncBuffer is a thread-safe wrapper around bytes.Buffer for use in tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ io.Writer = (*syncBuffer)(nil)

func TestDaemonStartAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	requireContains(t, out, "Daemon started")

	ctx := context.Background()
	if _, err := env.store.NewRun(ctx, "ref-a", "Episode 1 - Alice"); err != nil {
		t.Fatalf("create run: %v", err)
	}
	failed, err := env.store.NewRun(ctx, "ref-b", "Episode 2 - Bob")
	if err != nil {
		t.Fatalf("create second run: %v", err)
	}
	failed.Status = run.StatusFailed
	if err := env.store.Update(ctx, failed); err != nil {
		t.Fatalf("fail run: %v", err)
	}

	out, _, err = runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Daemon Status")
	requireContains(t, out, "Run Status")
	requireContains(t, out, "Pending")
	requireContains(t, out, "Failed")
}

func TestShowFollow(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := appendLine(env.logPath, "first"); err != nil {
		t.Fatalf("append first: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--socket", env.socketPath, "--config", env.configPath, "show", "--follow"})
	cmd.SetContext(ctx)
	stdout := &syncBuffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})

	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute()
	}()

	waitFor(t, 2*time.Second, func() bool { return stdout.Len() > 0 })
	if err := appendLine(env.logPath, "second"); err != nil {
		t.Fatalf("append second: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return strings.Contains(stdout.String(), "second") })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("show --follow did not exit")
	}
}

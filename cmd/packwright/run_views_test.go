package main

import (
	"testing"

	"packwright/internal/api"
	"packwright/internal/ipc"
)

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"pending":            "Pending",
		"awaiting_title":     "Awaiting Title",
		"already_packaged":   "Already Packaged",
		"":                   "",
		"repackage_approved": "Repackage Approved",
	}
	for input, want := range cases {
		if got := formatStatusLabel(input); got != want {
			t.Errorf("formatStatusLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBuildRunStatusRowsSorted(t *testing.T) {
	rows := buildRunStatusRows(map[string]int{
		"pending":   2,
		"failed":    1,
		"completed": 3,
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Completed" || rows[0][1] != "3" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[2][0] != "Pending" {
		t.Fatalf("unexpected last row: %v", rows[2])
	}
}

func TestBuildRunListRowsNewestFirst(t *testing.T) {
	runs := []api.Run{
		{ID: "aaaaaaaa-1111", FolderName: "Episode 1 - Old", Status: "completed", Phase: "completed", CreatedAt: "2026-08-01T10:00:00.000Z"},
		{ID: "bbbbbbbb-2222", FolderName: "Episode 2 - New", Status: "pending", Phase: "pending", CreatedAt: "2026-08-20T10:00:00.000Z"},
	}
	rows := buildRunListRows(runs)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "Episode 2 - New" {
		t.Fatalf("expected newest run first, got %v", rows[0])
	}
	if rows[0][0] != "bbbbbbbb" {
		t.Fatalf("expected shortened ID, got %q", rows[0][0])
	}
	if rows[1][2] != "Completed" {
		t.Fatalf("expected formatted status, got %q", rows[1][2])
	}
	if rows[0][4] != "2026-08-20 10:00" {
		t.Fatalf("unexpected created column: %q", rows[0][4])
	}
}

func TestBuildApprovalOptionRows(t *testing.T) {
	rows := buildApprovalOptionRows([]api.ChoiceOption{
		{ID: "opt-1", Text: "First", Strategy: "curiosity", Rank: 1},
		{ID: "opt-2", Text: "Second"},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "opt-1" || rows[0][2] != "Curiosity" || rows[0][3] != "1" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][3] != "" {
		t.Fatalf("expected empty rank for unranked option, got %q", rows[1][3])
	}
}

func TestBuildDaemonStatusLines(t *testing.T) {
	lines := buildDaemonStatusLines(&ipc.StatusResponse{
		Running:      true,
		PID:          42,
		DatabasePath: "/tmp/runs.db",
		StoreRoot:    "/tmp/episodes",
		LastError:    "classifier: boom",
	}, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	requireContains(t, lines[0], "[OK] Running (pid 42)")
	requireContains(t, lines[1], "[ERROR] classifier: boom")

	lines = buildDaemonStatusLines(&ipc.StatusResponse{}, false)
	requireContains(t, lines[0], "[WARN] Not running")
}

func TestBuildPhaseHealthLines(t *testing.T) {
	lines := buildPhaseHealthLines([]ipc.PhaseHealth{
		{Name: "classifier", Ready: true, Detail: "document store reachable"},
		{Name: "analyzer", Ready: false, Detail: "research endpoint unreachable"},
	}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	requireContains(t, lines[0], "[OK]")
	requireContains(t, lines[1], "[WARN] research endpoint unreachable")
}

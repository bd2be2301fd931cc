package archive_test

import (
	"context"
	"testing"
	"time"

	"packwright/internal/archive"
	"packwright/internal/config"
	"packwright/internal/docstore"
	"packwright/internal/run"
	"packwright/internal/testsupport"
)

func newFixture(t *testing.T) (*docstore.FS, config.Layout, *archive.Manager) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := docstore.NewFS(cfg.StoreRoot())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store, cfg.Layout, archive.NewManager(store, cfg.Layout)
}

func TestArchiveMovesExistingArtifacts(t *testing.T) {
	store, layout, manager := newFixture(t)
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 20")
	if _, err := store.CreateDocument(ctx, folder, "Jane - Episode Description", "old description"); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := store.CreateDocument(ctx, folder, "Jane - Title Options", "old titles"); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := store.CreateDocument(ctx, folder, "unrelated.txt", "keep me"); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	date := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	ops, err := manager.Archive(ctx, folder, []string{"Jane - Episode Description", "Jane - Title Options"}, date)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 archive ops, got %d", len(ops))
	}
	for _, op := range ops {
		if op.Kind != run.OpArchive || op.Outcome != run.OpDone {
			t.Fatalf("unexpected op: %#v", op)
		}
	}

	dated := folder + "/" + layout.ArchiveDir + "/2026-08-29"
	items, err := store.ListItems(ctx, dated)
	if err != nil {
		t.Fatalf("list dated folder: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 archived items, got %d", len(items))
	}

	rootItems, err := store.ListItems(ctx, folder)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, item := range rootItems {
		if item.Name == "Jane - Episode Description" || item.Name == "Jane - Title Options" {
			t.Fatalf("artifact %q should have been moved out of the root", item.Name)
		}
	}
}

func TestArchiveNoArtifactsIsNoop(t *testing.T) {
	store, _, manager := newFixture(t)
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 21")
	ops, err := manager.Archive(ctx, folder, []string{"Jane - Episode Description"}, time.Now())
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("expected no ops, got %d", len(ops))
	}
}

func TestArchiveSameDayCollisionGetsDistinctFolder(t *testing.T) {
	store, layout, manager := newFixture(t)
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 22")
	date := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	if _, err := store.CreateDocument(ctx, folder, "Jane - Title Options", "first"); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := manager.Archive(ctx, folder, []string{"Jane - Title Options"}, date); err != nil {
		t.Fatalf("first Archive: %v", err)
	}

	// A second re-package the same day regenerates and re-archives.
	if _, err := store.CreateDocument(ctx, folder, "Jane - Title Options", "second"); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := manager.Archive(ctx, folder, []string{"Jane - Title Options"}, date); err != nil {
		t.Fatalf("second Archive: %v", err)
	}

	first, err := store.ReadContent(ctx, folder+"/"+layout.ArchiveDir+"/2026-08-29/Jane - Title Options")
	if err != nil {
		t.Fatalf("read first archive: %v", err)
	}
	if first != "first" {
		t.Fatalf("first archive overwritten: %q", first)
	}
	second, err := store.ReadContent(ctx, folder+"/"+layout.ArchiveDir+"/2026-08-29 (2)/Jane - Title Options")
	if err != nil {
		t.Fatalf("read second archive: %v", err)
	}
	if second != "second" {
		t.Fatalf("unexpected second archive content: %q", second)
	}
}

func TestArchiveDeletesStaleShortcuts(t *testing.T) {
	store, layout, manager := newFixture(t)
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 23")
	guest, _ := store.EnsureFolder(ctx, folder, layout.GuestPackagePrefix+" - Jane")
	doc, _ := store.CreateDocument(ctx, folder, "Jane - Episode Description", "old")
	if _, err := store.CreateShortcut(ctx, doc, guest, "Jane - Episode Description"); err != nil {
		t.Fatalf("CreateShortcut: %v", err)
	}
	keep, _ := store.CreateDocument(ctx, folder, "keep.txt", "keep")
	if _, err := store.CreateShortcut(ctx, keep, guest, "keep"); err != nil {
		t.Fatalf("CreateShortcut: %v", err)
	}

	ops, err := manager.Archive(ctx, folder, []string{"Jane - Episode Description"}, time.Now().UTC())
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	var deletes int
	for _, op := range ops {
		if op.Kind == run.OpDelete {
			deletes++
		}
	}
	if deletes != 1 {
		t.Fatalf("expected 1 stale shortcut delete, got %d", deletes)
	}

	shortcuts, err := store.ListShortcuts(ctx, guest)
	if err != nil {
		t.Fatalf("ListShortcuts: %v", err)
	}
	if len(shortcuts) != 1 || shortcuts[0].Name != "keep" {
		t.Fatalf("unexpected surviving shortcuts: %#v", shortcuts)
	}
}

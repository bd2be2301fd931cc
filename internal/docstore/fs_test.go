package docstore_test

import (
	"context"
	"testing"

	"packwright/internal/docstore"
)

func newFS(t *testing.T) *docstore.FS {
	t.Helper()
	store, err := docstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store
}

func TestCreateAndReadDocument(t *testing.T) {
	store := newFS(t)
	ctx := context.Background()

	folder, err := store.EnsureFolder(ctx, "", "Episode 1")
	if err != nil {
		t.Fatalf("EnsureFolder: %v", err)
	}

	ref, err := store.CreateDocument(ctx, folder, "Jane Doe - Episode Description", "A great episode.")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	content, err := store.ReadContent(ctx, ref)
	if err != nil {
		t.Fatalf("ReadContent: %v", err)
	}
	if content != "A great episode." {
		t.Fatalf("unexpected content %q", content)
	}

	// Duplicate names conflict instead of overwriting.
	if _, err := store.CreateDocument(ctx, folder, "Jane Doe - Episode Description", "other"); !docstore.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReadMissingDocument(t *testing.T) {
	store := newFS(t)
	if _, err := store.ReadContent(context.Background(), "Episode 1/nope.txt"); !docstore.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestMoveItemKeepsName(t *testing.T) {
	store := newFS(t)
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 2")
	assets, _ := store.EnsureFolder(ctx, folder, "Full Length Assets")
	ref, err := store.CreateDocument(ctx, folder, "episode_full.mp4", "video")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	moved, err := store.MoveItem(ctx, ref, assets)
	if err != nil {
		t.Fatalf("MoveItem: %v", err)
	}
	if _, err := store.ReadContent(ctx, moved); err != nil {
		t.Fatalf("read moved item: %v", err)
	}
	if _, err := store.ReadContent(ctx, ref); !docstore.IsNotFound(err) {
		t.Fatalf("source should be gone, got %v", err)
	}

	// Moving onto an occupied name is a conflict.
	again, _ := store.CreateDocument(ctx, folder, "episode_full.mp4", "second")
	if _, err := store.MoveItem(ctx, again, assets); !docstore.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestShortcutLifecycle(t *testing.T) {
	store := newFS(t)
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 3")
	guest, _ := store.EnsureFolder(ctx, folder, "Guest Package - Jane Doe")
	doc, err := store.CreateDocument(ctx, folder, "Jane Doe - Title Options", "1. A Title")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	shortcut, err := store.CreateShortcut(ctx, doc, guest, "Jane Doe - Title Options")
	if err != nil {
		t.Fatalf("CreateShortcut: %v", err)
	}

	shortcuts, err := store.ListShortcuts(ctx, guest)
	if err != nil {
		t.Fatalf("ListShortcuts: %v", err)
	}
	if len(shortcuts) != 1 {
		t.Fatalf("expected 1 shortcut, got %d", len(shortcuts))
	}
	if shortcuts[0].TargetRef != doc {
		t.Fatalf("shortcut target mismatch: %q != %q", shortcuts[0].TargetRef, doc)
	}

	// Deleting the shortcut leaves the target intact.
	if err := store.DeleteShortcut(ctx, shortcut); err != nil {
		t.Fatalf("DeleteShortcut: %v", err)
	}
	if _, err := store.ReadContent(ctx, doc); err != nil {
		t.Fatalf("target should survive shortcut deletion: %v", err)
	}

	// Shortcuts to missing targets are rejected.
	if _, err := store.CreateShortcut(ctx, "Episode 3/nope.txt", guest, "dangling"); !docstore.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}

	// DeleteShortcut refuses refs that are not shortcuts.
	if err := store.DeleteShortcut(ctx, doc); err == nil {
		t.Fatal("expected refusal to delete a document")
	}
}

func TestListItemsKinds(t *testing.T) {
	store := newFS(t)
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 4")
	if _, err := store.EnsureFolder(ctx, folder, "Social Assets"); err != nil {
		t.Fatalf("EnsureFolder: %v", err)
	}
	doc, _ := store.CreateDocument(ctx, folder, "transcript.txt", "words")
	if _, err := store.CreateShortcut(ctx, doc, folder, "transcript link"); err != nil {
		t.Fatalf("CreateShortcut: %v", err)
	}

	items, err := store.ListItems(ctx, folder)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	kinds := map[docstore.ItemKind]int{}
	for _, item := range items {
		kinds[item.Kind]++
	}
	if kinds[docstore.KindFolder] != 1 || kinds[docstore.KindDocument] != 1 || kinds[docstore.KindShortcut] != 1 {
		t.Fatalf("unexpected kinds: %#v", kinds)
	}
}

func TestRefsWithDotsInNames(t *testing.T) {
	store := newFS(t)
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 5")
	ref, err := store.CreateDocument(ctx, folder, "Episode..Final Transcript.txt", "words")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	content, err := store.ReadContent(ctx, ref)
	if err != nil {
		t.Fatalf("ReadContent: %v", err)
	}
	if content != "words" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestRefEscapeRejected(t *testing.T) {
	store := newFS(t)
	if _, err := store.ReadContent(context.Background(), "../outside.txt"); !docstore.IsNotFound(err) {
		// Cleaning strips the leading traversal, so the ref resolves inside
		// the root and simply does not exist.
		t.Fatalf("expected not-found for cleaned ref, got %v", err)
	}
}

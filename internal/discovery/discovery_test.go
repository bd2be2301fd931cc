package discovery_test

import (
	"context"
	"testing"

	"packwright/internal/discovery"
	"packwright/internal/docstore"
	"packwright/internal/run"
	"packwright/internal/testsupport"
)

func TestGuestFromFolderName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"standard", "Episode 40 - Jane Doe", "Jane Doe"},
		{"multiple separators", "Season 2 - Episode 40 - Jane Doe", "Jane Doe"},
		{"trailing whitespace", "Episode 40 - Jane Doe  ", "Jane Doe"},
		{"no separator", "Episode40", ""},
		{"hyphen without spaces", "Episode-40", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := discovery.GuestFromFolderName(tc.in); got != tc.want {
				t.Fatalf("GuestFromFolderName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDiscoverFindsTranscriptInRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := docstore.NewFS(cfg.StoreRoot())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 40 - Jane Doe")
	if _, err := store.CreateDocument(ctx, folder, "Jane Doe Transcript", "words"); err != nil {
		t.Fatalf("seed transcript: %v", err)
	}

	d := discovery.NewDiscoverer(store, cfg.Layout)
	disc, err := d.Discover(ctx, folder, "Episode 40 - Jane Doe", run.Classification{
		Kind:           run.ClassificationNew,
		MarkerName:     "Jane Doe Transcript",
		MarkerLocation: "root",
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if disc.GuestName != "Jane Doe" {
		t.Fatalf("guest = %q", disc.GuestName)
	}
	if disc.TranscriptName != "Jane Doe Transcript" || disc.TranscriptRef == "" {
		t.Fatalf("unexpected transcript: %#v", disc)
	}
}

func TestDiscoverFollowsMarkerIntoAssetsFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := docstore.NewFS(cfg.StoreRoot())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ctx := context.Background()

	folder, _ := store.EnsureFolder(ctx, "", "Episode 40 - Jane Doe")
	assets, _ := store.EnsureFolder(ctx, folder, cfg.Layout.AssetsDir)
	if _, err := store.CreateDocument(ctx, assets, "Jane Doe Transcript", "words"); err != nil {
		t.Fatalf("seed transcript: %v", err)
	}

	d := discovery.NewDiscoverer(store, cfg.Layout)
	disc, err := d.Discover(ctx, folder, "Episode 40 - Jane Doe", run.Classification{
		Kind:           run.ClassificationAlreadyPackaged,
		MarkerName:     "Jane Doe Transcript",
		MarkerLocation: cfg.Layout.AssetsDir,
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if disc.TranscriptName != "Jane Doe Transcript" {
		t.Fatalf("unexpected transcript: %#v", disc)
	}
}

func TestDiscoverRejectsUnconventionalFolderName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := docstore.NewFS(cfg.StoreRoot())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ctx := context.Background()
	folder, _ := store.EnsureFolder(ctx, "", "RawUpload")

	d := discovery.NewDiscoverer(store, cfg.Layout)
	if _, err := d.Discover(ctx, folder, "RawUpload", run.Classification{Kind: run.ClassificationNew, MarkerLocation: "root"}); err == nil {
		t.Fatal("expected error for folder without guest suffix")
	}
}

func TestDiscoverFailsWhenTranscriptVanished(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := docstore.NewFS(cfg.StoreRoot())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ctx := context.Background()
	folder, _ := store.EnsureFolder(ctx, "", "Episode 40 - Jane Doe")

	d := discovery.NewDiscoverer(store, cfg.Layout)
	if _, err := d.Discover(ctx, folder, "Episode 40 - Jane Doe", run.Classification{Kind: run.ClassificationNew, MarkerLocation: "root"}); err == nil {
		t.Fatal("expected error when transcript is gone")
	}
}

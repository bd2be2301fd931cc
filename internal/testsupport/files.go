package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MkDir creates a directory (and parents) under the test tree.
func MkDir(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

// SeedEpisodeFolder lays out a fresh unpackaged episode folder containing a
// transcript and a handful of raw asset files. Returns the folder path.
func SeedEpisodeFolder(t testing.TB, root, folderName, transcriptName string) string {
	t.Helper()

	folder := filepath.Join(root, folderName)
	WriteFile(t, filepath.Join(folder, transcriptName), "GUEST: Welcome to the show.\nHOST: Thanks for being here.\n")
	WriteFile(t, filepath.Join(folder, "episode_full.mp4"), "video-bytes")
	WriteFile(t, filepath.Join(folder, "cover.png"), "png-bytes")
	WriteFile(t, filepath.Join(folder, "clip_01.mp4"), "clip-bytes")
	return folder
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidatesAfterNormalize(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing file, got exists for %s", path)
	}
	if cfg.Layout.AssetsDir != defaultAssetsDir {
		t.Fatalf("unexpected assets dir %q", cfg.Layout.AssetsDir)
	}
	if cfg.DocStore.RetryAttempts != defaultRetryAttempts {
		t.Fatalf("unexpected retry attempts %d", cfg.DocStore.RetryAttempts)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`store_root = "` + filepath.Join(dir, "episodes") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[analysis]",
		"task_timeout = 30",
		"fan_in_timeout = 60",
		"[logging]",
		`format = "json"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if cfg.Analysis.TaskTimeout != 30 || cfg.Analysis.FanInTimeout != 60 {
		t.Fatalf("analysis overrides not applied: %+v", cfg.Analysis)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging format override not applied: %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadBounds(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Analysis.TaskTimeout = 500
	cfg.Analysis.FanInTimeout = 100
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected task/fan-in bound violation")
	}

	cfg = Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected logging format violation")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample file not found after create")
	}
	if cfg.Layout.ArchiveDir != defaultArchiveDir {
		t.Fatalf("sample should carry defaults, got %q", cfg.Layout.ArchiveDir)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("unexpected expansion %q", got)
	}
}

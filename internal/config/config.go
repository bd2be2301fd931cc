package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StoreRoot is the root directory backing the filesystem document store.
	// Every episode folder reference resolves beneath it.
	StoreRoot string `toml:"store_root"`
	LogDir    string `toml:"log_dir"`
}

// Layout describes the target folder layout produced by the organizer.
type Layout struct {
	AssetsDir          string `toml:"assets_dir"`
	ArtworkDir         string `toml:"artwork_dir"`
	SocialDir          string `toml:"social_dir"`
	GuestPackagePrefix string `toml:"guest_package_prefix"`
	ArchiveDir         string `toml:"archive_dir"`
}

// Analysis contains fan-out timing and concurrency bounds.
type Analysis struct {
	// TaskTimeout bounds a single analysis task attempt, in seconds.
	TaskTimeout int `toml:"task_timeout"`
	// FanInTimeout bounds the whole fan-out/fan-in round, in seconds.
	FanInTimeout int `toml:"fan_in_timeout"`
	// MaxConcurrent limits tasks running at once. Zero means no limit.
	MaxConcurrent int `toml:"max_concurrent"`
}

// DocStore contains retry bounds for transient document store failures.
type DocStore struct {
	RetryAttempts  int `toml:"retry_attempts"`
	RetryBackoffMS int `toml:"retry_backoff_ms"`
}

// Research contains configuration for the external research provider.
type Research struct {
	Endpoint   string `toml:"endpoint"`
	Timeout    int    `toml:"timeout"`
	MaxQueries int    `toml:"max_queries"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Approvals      bool   `toml:"approvals"`
	Completions    bool   `toml:"completions"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	RunPollInterval    int `toml:"run_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for packwright.
//
// Configuration sections by subsystem:
//   - Paths: document store root and log directory
//   - Layout: target folder names for organized episodes
//   - Analysis: fan-out timeouts and concurrency bounds
//   - DocStore: transient-failure retry bounds for store calls
//   - Research: research provider endpoint
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and heartbeat timeouts
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Layout        Layout        `toml:"layout"`
	Analysis      Analysis      `toml:"analysis"`
	DocStore      DocStore      `toml:"docstore"`
	Research      Research      `toml:"research"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/packwright/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("packwright.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StoreRoot, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogDir returns the resolved log directory.
func (c *Config) LogDir() string {
	return c.Paths.LogDir
}

// StoreRoot returns the resolved document store root.
func (c *Config) StoreRoot() string {
	return c.Paths.StoreRoot
}

// DatabasePath returns the run store database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.LogDir, "runs.db")
}

// SocketPath returns the daemon control socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "packwrightd.sock")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "packwrightd.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

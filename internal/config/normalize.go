package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLayout()
	c.normalizeAnalysis()
	c.normalizeDocStore()
	c.normalizeResearch()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StoreRoot, err = expandPath(c.Paths.StoreRoot); err != nil {
		return fmt.Errorf("paths.store_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLayout() {
	if strings.TrimSpace(c.Layout.AssetsDir) == "" {
		c.Layout.AssetsDir = defaultAssetsDir
	}
	if strings.TrimSpace(c.Layout.ArtworkDir) == "" {
		c.Layout.ArtworkDir = defaultArtworkDir
	}
	if strings.TrimSpace(c.Layout.SocialDir) == "" {
		c.Layout.SocialDir = defaultSocialDir
	}
	if strings.TrimSpace(c.Layout.GuestPackagePrefix) == "" {
		c.Layout.GuestPackagePrefix = defaultGuestPackagePrefix
	}
	if strings.TrimSpace(c.Layout.ArchiveDir) == "" {
		c.Layout.ArchiveDir = defaultArchiveDir
	}
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.TaskTimeout <= 0 {
		c.Analysis.TaskTimeout = defaultTaskTimeout
	}
	if c.Analysis.FanInTimeout <= 0 {
		c.Analysis.FanInTimeout = defaultFanInTimeout
	}
	if c.Analysis.MaxConcurrent < 0 {
		c.Analysis.MaxConcurrent = 0
	}
}

func (c *Config) normalizeDocStore() {
	if c.DocStore.RetryAttempts <= 0 {
		c.DocStore.RetryAttempts = defaultRetryAttempts
	}
	if c.DocStore.RetryBackoffMS <= 0 {
		c.DocStore.RetryBackoffMS = defaultRetryBackoffMS
	}
}

func (c *Config) normalizeResearch() {
	c.Research.Endpoint = strings.TrimSpace(c.Research.Endpoint)
	if c.Research.Timeout <= 0 {
		c.Research.Timeout = defaultResearchTimeout
	}
	if c.Research.MaxQueries <= 0 {
		c.Research.MaxQueries = defaultResearchMaxQueries
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.RunPollInterval <= 0 {
		c.Workflow.RunPollInterval = defaultRunPollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

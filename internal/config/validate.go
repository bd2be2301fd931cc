package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StoreRoot == "" {
		return errors.New("paths.store_root must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLayout() error {
	if c.Layout.ArchiveDir == c.Layout.AssetsDir {
		return fmt.Errorf("layout.archive_dir %q must differ from layout.assets_dir", c.Layout.ArchiveDir)
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.TaskTimeout > c.Analysis.FanInTimeout {
		return fmt.Errorf("analysis.task_timeout (%d) must not exceed analysis.fan_in_timeout (%d)",
			c.Analysis.TaskTimeout, c.Analysis.FanInTimeout)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.HeartbeatInterval >= c.Workflow.HeartbeatTimeout {
		return fmt.Errorf("workflow.heartbeat_interval (%d) must be less than workflow.heartbeat_timeout (%d)",
			c.Workflow.HeartbeatInterval, c.Workflow.HeartbeatTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeFeed()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	c.outputDirIsDefault = c.Paths.OutputDir == defaultOutputDir

	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownload() {
	if c.Download.Concurrency == 0 {
		c.Download.Concurrency = defaultConcurrency
	}
	if c.Download.RequestTimeout == 0 {
		c.Download.RequestTimeout = defaultRequestTimeout
	}
	if c.Download.RetryAttempts == 0 {
		c.Download.RetryAttempts = defaultRetryAttempts
	}
	if strings.TrimSpace(c.Download.UserAgent) == "" {
		c.Download.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeFeed() {
	if c.Feed.RequestTimeout == 0 {
		c.Feed.RequestTimeout = defaultFeedTimeout
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
}

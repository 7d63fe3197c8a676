package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDownload() error {
	if c.Download.Concurrency < 1 || c.Download.Concurrency > maxConcurrency {
		return fmt.Errorf("download.concurrency must be between 1 and %d", maxConcurrency)
	}
	if c.Download.RequestTimeout < 1 || c.Download.RequestTimeout > maxRequestTimeoutSeconds {
		return fmt.Errorf("download.request_timeout must be between 1 and %d seconds", maxRequestTimeoutSeconds)
	}
	if c.Download.RetryAttempts < 1 || c.Download.RetryAttempts > maxRetryAttempts {
		return fmt.Errorf("download.retry_attempts must be between 1 and %d", maxRetryAttempts)
	}
	return nil
}

func (c *Config) validateFeed() error {
	if c.Feed.RequestTimeout < 1 || c.Feed.RequestTimeout > maxRequestTimeoutSeconds {
		return fmt.Errorf("feed.request_timeout must be between 1 and %d seconds", maxRequestTimeoutSeconds)
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
		return nil
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
}

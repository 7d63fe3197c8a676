package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"podcastdl/internal/config"
)

type commandContext struct {
	configFlag      *string
	outputFlag      *string
	concurrencyFlag *int

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, outputFlag *string, concurrencyFlag *int) *commandContext {
	return &commandContext{
		configFlag:      configFlag,
		outputFlag:      outputFlag,
		concurrencyFlag: concurrencyFlag,
	}
}

// ensureConfig loads configuration once, applies command-line overrides, and
// revalidates the result.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.outputFlag != nil && strings.TrimSpace(*c.outputFlag) != "" {
			if err := cfg.SetOutputDir(*c.outputFlag); err != nil {
				c.configErr = err
				return
			}
		}
		if c.concurrencyFlag != nil && *c.concurrencyFlag != 0 {
			cfg.Download.Concurrency = *c.concurrencyFlag
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

package config

const (
	defaultOutputDir         = "podcast_episodes"
	defaultStateDir          = "~/.local/share/podcastdl"
	defaultConcurrency       = 3
	defaultRequestTimeout    = 30
	defaultRetryAttempts     = 1
	defaultUserAgent         = "podcastdl/1.0"
	defaultFeedTimeout       = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultHistoryEnabled    = true
	maxConcurrency           = 16
	maxRetryAttempts         = 5
	maxRequestTimeoutSeconds = 600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Download: Download{
			Concurrency:    defaultConcurrency,
			RequestTimeout: defaultRequestTimeout,
			RetryAttempts:  defaultRetryAttempts,
			UserAgent:      defaultUserAgent,
		},
		Feed: Feed{
			RequestTimeout: defaultFeedTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
	}
}

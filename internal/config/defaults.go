package config

const (
	defaultDataDir         = "~/.local/share/expertstats"
	defaultAPIBaseURL      = "https://api.codeable.io"
	defaultAPITimeout      = 30
	defaultAPIPerPage      = 20
	defaultCancelAfterDays = 180
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			CacheDir: defaultCacheDir(),
		},
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeout,
			PerPage:        defaultAPIPerPage,
		},
		Sync: Sync{
			CancelAfterDays: defaultCancelAfterDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

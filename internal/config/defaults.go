package config

const (
	defaultDataDir              = "~/.local/share/substation"
	defaultLogDir               = "~/.local/share/substation/logs"
	defaultMinimumPercent       = 80.0
	defaultOpenSubtitlesBaseURL = "https://api.opensubtitles.com/api/v1"
	defaultOpenSubtitlesAgent   = "Substation/dev"
	defaultAddic7edBaseURL      = "https://www.addic7ed.com"
	defaultAddic7edRate         = 0.5
	defaultManagerTimeout       = 30
	defaultNotifyTimeout        = 10
	defaultTranslationWorkers   = 10
	defaultTranslationTimeout   = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		General: General{
			Languages: []string{"en"},
		},
		Scoring: Scoring{
			MinimumPercent: defaultMinimumPercent,
		},
		Providers: Providers{
			OpenSubtitles: OpenSubtitles{
				UserAgent: defaultOpenSubtitlesAgent,
				BaseURL:   defaultOpenSubtitlesBaseURL,
			},
			Addic7ed: Addic7ed{
				BaseURL:           defaultAddic7edBaseURL,
				RequestsPerSecond: defaultAddic7edRate,
			},
		},
		Sonarr: Manager{
			Timeout: defaultManagerTimeout,
		},
		Radarr: Manager{
			Timeout: defaultManagerTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Downloads:      true,
			Upgrades:       true,
			Failures:       true,
		},
		Translation: Translation{
			Workers:        defaultTranslationWorkers,
			TimeoutSeconds: defaultTranslationTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

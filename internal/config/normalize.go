package config

import (
	"fmt"
	"strings"

	"substation/internal/language"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SubtitleDir) != "" {
		if c.Paths.SubtitleDir, err = expandPath(c.Paths.SubtitleDir); err != nil {
			return fmt.Errorf("subtitle_dir: %w", err)
		}
	}

	c.General.Languages = language.NormalizeList(c.General.Languages)
	if len(c.General.Languages) == 0 {
		c.General.Languages = []string{"en"}
	}

	c.Providers.OpenSubtitles.APIKey = strings.TrimSpace(c.Providers.OpenSubtitles.APIKey)
	c.Providers.OpenSubtitles.UserToken = strings.TrimSpace(c.Providers.OpenSubtitles.UserToken)
	c.Providers.OpenSubtitles.UserAgent = strings.TrimSpace(c.Providers.OpenSubtitles.UserAgent)
	if c.Providers.OpenSubtitles.UserAgent == "" {
		c.Providers.OpenSubtitles.UserAgent = defaultOpenSubtitlesAgent
	}
	c.Providers.OpenSubtitles.BaseURL = strings.TrimRight(strings.TrimSpace(c.Providers.OpenSubtitles.BaseURL), "/")
	if c.Providers.OpenSubtitles.BaseURL == "" {
		c.Providers.OpenSubtitles.BaseURL = defaultOpenSubtitlesBaseURL
	}

	c.Providers.Addic7ed.Username = strings.TrimSpace(c.Providers.Addic7ed.Username)
	c.Providers.Addic7ed.BaseURL = strings.TrimRight(strings.TrimSpace(c.Providers.Addic7ed.BaseURL), "/")
	if c.Providers.Addic7ed.BaseURL == "" {
		c.Providers.Addic7ed.BaseURL = defaultAddic7edBaseURL
	}
	if c.Providers.Addic7ed.RequestsPerSecond <= 0 {
		c.Providers.Addic7ed.RequestsPerSecond = defaultAddic7edRate
	}

	normalizeManager(&c.Sonarr)
	normalizeManager(&c.Radarr)

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}

	if c.Translation.Workers <= 0 {
		c.Translation.Workers = defaultTranslationWorkers
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslationTimeout
	}
	c.Translation.Endpoint = strings.TrimSpace(c.Translation.Endpoint)
	c.Translation.APIKey = strings.TrimSpace(c.Translation.APIKey)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return nil
}

func normalizeManager(m *Manager) {
	m.URL = strings.TrimRight(strings.TrimSpace(m.URL), "/")
	m.APIKey = strings.TrimSpace(m.APIKey)
	if m.Timeout <= 0 {
		m.Timeout = defaultManagerTimeout
	}
}

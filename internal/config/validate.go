package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for values that would break at runtime.
// Scoring weight tables are deliberately not validated beyond type shape:
// the system trusts user-entered weights, including negative ones.
func (c *Config) Validate() error {
	var problems []string

	if c.Scoring.MinimumPercent < 0 || c.Scoring.MinimumPercent > 100 {
		problems = append(problems, fmt.Sprintf("scoring.minimum_percent must be between 0 and 100, got %.1f", c.Scoring.MinimumPercent))
	}
	if c.Scoring.SpecialPercent < 0 || c.Scoring.SpecialPercent > 100 {
		problems = append(problems, fmt.Sprintf("scoring.special_percent must be between 0 and 100, got %.1f", c.Scoring.SpecialPercent))
	}

	if c.Providers.OpenSubtitles.Enabled && c.Providers.OpenSubtitles.APIKey == "" {
		problems = append(problems, "providers.opensubtitles.api_key is required when the provider is enabled")
	}
	if c.Providers.Addic7ed.Enabled && (c.Providers.Addic7ed.Username == "" || c.Providers.Addic7ed.Password == "") {
		problems = append(problems, "providers.addic7ed requires username and password when enabled")
	}

	if err := validateManager("sonarr", c.Sonarr); err != nil {
		problems = append(problems, err.Error())
	}
	if err := validateManager("radarr", c.Radarr); err != nil {
		problems = append(problems, err.Error())
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}

func validateManager(name string, m Manager) error {
	if !m.Enabled {
		return nil
	}
	if m.URL == "" {
		return fmt.Errorf("%s.url is required when enabled", name)
	}
	parsed, err := url.Parse(m.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s.url %q is not a valid http url", name, m.URL)
	}
	if m.APIKey == "" {
		return fmt.Errorf("%s.api_key is required when enabled", name)
	}
	return nil
}

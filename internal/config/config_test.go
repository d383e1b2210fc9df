package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Scoring.MinimumPercent != defaultMinimumPercent {
		t.Fatalf("minimum_percent = %.1f, want default", cfg.Scoring.MinimumPercent)
	}
	if len(cfg.General.Languages) != 1 || cfg.General.Languages[0] != "en" {
		t.Fatalf("languages = %v, want [en]", cfg.General.Languages)
	}
	if cfg.Providers.OpenSubtitles.Enabled || cfg.Providers.Addic7ed.Enabled {
		t.Fatal("providers must stay disabled until credentials are configured")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
}

func TestLoadParsesScoringOverrides(t *testing.T) {
	path := writeConfig(t, `
[scoring]
minimum_percent = 65.0
[scoring.series_scores]
release_group = 25
hash = 400
[providers.opensubtitles]
enabled = true
api_key = "key"
`)
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Scoring.MinimumPercent != 65.0 {
		t.Fatalf("minimum_percent = %.1f", cfg.Scoring.MinimumPercent)
	}
	if cfg.Scoring.SeriesScores["release_group"] != 25 {
		t.Fatalf("series release_group = %d", cfg.Scoring.SeriesScores["release_group"])
	}
	if cfg.Scoring.SeriesScores["hash"] != 400 {
		t.Fatalf("series hash = %d", cfg.Scoring.SeriesScores["hash"])
	}
}

func TestLoadRejectsEnabledProviderWithoutCredentials(t *testing.T) {
	path := writeConfig(t, `
[providers.opensubtitles]
enabled = true
`)
	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for missing api key")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsBadManagerURL(t *testing.T) {
	path := writeConfig(t, `
[providers.opensubtitles]
enabled = false
[sonarr]
enabled = true
url = "not a url"
api_key = "key"
`)
	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for bad sonarr url")
	}
}

func TestNormalizeLanguagesAndDefaultsWorkers(t *testing.T) {
	path := writeConfig(t, `
[general]
languages = ["English", "eng", "FR", ""]
[providers.opensubtitles]
enabled = false
[translation]
workers = -3
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"en", "fr"}
	if len(cfg.General.Languages) != len(want) {
		t.Fatalf("languages = %v, want %v", cfg.General.Languages, want)
	}
	for i, lang := range want {
		if cfg.General.Languages[i] != lang {
			t.Fatalf("languages = %v, want %v", cfg.General.Languages, want)
		}
	}
	if cfg.Translation.Workers != defaultTranslationWorkers {
		t.Fatalf("workers = %d, want default", cfg.Translation.Workers)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

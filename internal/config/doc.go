// Package config loads, normalizes, and validates the substation TOML
// configuration. Scoring weight overrides, provider credentials, media
// manager connections, and notification settings all live here so the
// rest of the application receives one immutable snapshot at start-up.
package config

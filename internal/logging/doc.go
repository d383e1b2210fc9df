// Package logging constructs the application slog.Logger with console or
// JSON output, optional file fanout, and consistent attribute formatting.
package logging

// Package opensubtitles adapts the OpenSubtitles REST API to the
// provider contract, including hash-based matching and quota handling.
package opensubtitles

// Package media models the videos subtitles are matched against and the
// release-name heuristics used to compare candidate metadata with them.
package media

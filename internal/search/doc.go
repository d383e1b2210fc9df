// Package search runs the subtitle pipeline: query every enabled
// provider, score the candidates against the video, rank them, gate the
// best one on the acceptance threshold and persist the download.
package search

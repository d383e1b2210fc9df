// Package translate converts subtitle files between languages. Cues are
// translated concurrently through a bounded worker pool; the pool
// preserves cue order and timing, only the text changes.
package translate

// Package srt parses and renders SubRip subtitle files. It covers the
// subset the translator needs: numbered cues, timing lines and text.
package srt

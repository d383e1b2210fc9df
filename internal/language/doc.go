// Package language normalizes subtitle language identifiers across the
// codes, words, and BCP-47 tags that providers and media managers emit.
package language

// Package history records subtitle downloads in SQLite. The search
// pipeline consults it to decide whether a new candidate upgrades an
// earlier download and the CLI renders it for review.
package history

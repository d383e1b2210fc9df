// Package profiledb persists custom score profiles and their condition
// rows in SQLite. The store implements scoring.ProfileSource for the
// calculators and carries the CRUD surface the CLI edits profiles with.
package profiledb

package profiledb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"substation/internal/scoring"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; mismatched databases are rejected rather than migrated in place.
const schemaVersion = 1

var (
	// ErrSchemaMismatch indicates the database was written by a
	// different substation version.
	ErrSchemaMismatch = errors.New("profile database schema mismatch")
	// ErrNotFound indicates the requested profile does not exist.
	ErrNotFound = errors.New("profile not found")
)

// Profile is one stored custom score profile with its condition rows.
type Profile struct {
	ID         int64
	Name       string
	Media      string
	Score      int
	Conditions []scoring.Condition
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store manages profile persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the profile database at dbPath and
// verifies the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Create inserts a profile with its conditions and returns the stored copy.
func (s *Store) Create(ctx context.Context, name, media string, score int, conditions []scoring.Condition) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("profile name is required")
	}
	if media != scoring.MediaSeries && media != scoring.MediaMovies {
		return nil, fmt.Errorf("unknown media %q", media)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (name, media, score, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		name, media, score, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := insertConditions(ctx, tx, id, conditions); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile: %w", err)
	}
	return s.Get(ctx, id)
}

// Update rewrites a profile's score and conditions.
func (s *Store) Update(ctx context.Context, id int64, score int, conditions []scoring.Condition) (*Profile, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE profiles SET score = ?, updated_at = ? WHERE id = ?",
		score, timestamp, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM profile_conditions WHERE profile_id = ?", id); err != nil {
		return nil, fmt.Errorf("clear conditions: %w", err)
	}
	if err := insertConditions(ctx, tx, id, conditions); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a profile and its conditions.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// Get fetches one profile with its ordered conditions.
func (s *Store) Get(ctx context.Context, id int64) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, media, score, created_at, updated_at FROM profiles WHERE id = ?", id)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, err
	}
	conditions, err := s.ConditionsFor(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	profile.Conditions = conditions
	return profile, nil
}

// List returns all profiles for one media kind, or every profile when
// media is empty, with conditions populated.
func (s *Store) List(ctx context.Context, media string) ([]*Profile, error) {
	query := "SELECT id, name, media, score, created_at, updated_at FROM profiles ORDER BY media, name"
	args := []any{}
	if media != "" {
		query = "SELECT id, name, media, score, created_at, updated_at FROM profiles WHERE media = ? ORDER BY name"
		args = append(args, media)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	for _, profile := range profiles {
		conditions, err := s.ConditionsFor(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
		profile.Conditions = conditions
	}
	return profiles, nil
}

// ProfilesFor implements scoring.ProfileSource.
func (s *Store) ProfilesFor(ctx context.Context, media string) ([]scoring.ProfileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, score, media FROM profiles WHERE media = ? ORDER BY id", media)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var records []scoring.ProfileRecord
	for rows.Next() {
		var rec scoring.ProfileRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Score, &rec.Media); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return records, nil
}

// ConditionsFor implements scoring.ProfileSource.
func (s *Store) ConditionsFor(ctx context.Context, profileID int64) ([]scoring.Condition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, value, required, negate FROM profile_conditions
         WHERE profile_id = ? ORDER BY ordering`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query conditions: %w", err)
	}
	defer rows.Close()

	var conditions []scoring.Condition
	for rows.Next() {
		var cond scoring.Condition
		if err := rows.Scan(&cond.Type, &cond.Value, &cond.Required, &cond.Negate); err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		conditions = append(conditions, cond)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conditions: %w", err)
	}
	return conditions, nil
}

func insertConditions(ctx context.Context, tx *sql.Tx, profileID int64, conditions []scoring.Condition) error {
	for i, cond := range conditions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO profile_conditions (profile_id, ordering, type, value, required, negate)
             VALUES (?, ?, ?, ?, ?, ?)`,
			profileID, i, cond.Type, cond.Value, cond.Required, cond.Negate,
		); err != nil {
			return fmt.Errorf("insert condition %d: %w", i, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var profile Profile
	var createdAt, updatedAt string
	if err := row.Scan(&profile.ID, &profile.Name, &profile.Media, &profile.Score, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	profile.CreatedAt = parseTimestamp(createdAt)
	profile.UpdatedAt = parseTimestamp(updatedAt)
	return &profile, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

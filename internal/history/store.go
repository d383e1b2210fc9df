package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different
// substation version.
var ErrSchemaMismatch = errors.New("history database schema mismatch")

// Entry is one recorded subtitle download.
type Entry struct {
	ID           string
	VideoPath    string
	VideoTitle   string
	Media        string
	Language     string
	Provider     string
	SubtitleID   string
	ReleaseInfo  string
	Score        int
	MaxScore     int
	Matches      []string
	Upgrade      bool
	SubtitlePath string
	CreatedAt    time.Time
}

// Store manages download history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at dbPath.
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
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
		return tx.Commit()
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

// Record inserts a download entry, assigning its ID and timestamp.
func (s *Store) Record(ctx context.Context, entry Entry) (*Entry, error) {
	if entry.VideoPath == "" {
		return nil, errors.New("video path is required")
	}
	if entry.Provider == "" {
		return nil, errors.New("provider is required")
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	matches := entry.Matches
	if matches == nil {
		matches = []string{}
	}
	sort.Strings(matches)
	matchesJSON, err := json.Marshal(matches)
	if err != nil {
		return nil, fmt.Errorf("marshal matches: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO downloads (
            id, video_path, video_title, media, language, provider, subtitle_id,
            release_info, score, max_score, matches_json, upgrade, subtitle_path, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.VideoPath,
		entry.VideoTitle,
		entry.Media,
		entry.Language,
		entry.Provider,
		entry.SubtitleID,
		entry.ReleaseInfo,
		entry.Score,
		entry.MaxScore,
		string(matchesJSON),
		entry.Upgrade,
		entry.SubtitlePath,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert download: %w", err)
	}
	return &entry, nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM downloads ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ForVideo returns every download for one video file, newest first.
func (s *Store) ForVideo(ctx context.Context, videoPath string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM downloads WHERE video_path = ? ORDER BY created_at DESC", videoPath)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Best returns the highest-scoring download for a video and language, or
// nil when none exists. The search pipeline compares new candidates
// against it before treating a download as an upgrade.
func (s *Store) Best(ctx context.Context, videoPath, lang string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` FROM downloads WHERE video_path = ? AND language = ?
         ORDER BY score DESC, created_at DESC LIMIT 1`, videoPath, lang)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Prune removes entries older than the cutoff and reports how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM downloads WHERE created_at < ?", cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, video_path, video_title, media, language, provider,
    subtitle_id, release_info, score, max_score, matches_json, upgrade, subtitle_path, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var matchesJSON, createdAt string
	err := row.Scan(
		&entry.ID, &entry.VideoPath, &entry.VideoTitle, &entry.Media, &entry.Language,
		&entry.Provider, &entry.SubtitleID, &entry.ReleaseInfo, &entry.Score,
		&entry.MaxScore, &matchesJSON, &entry.Upgrade, &entry.SubtitlePath, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan download: %w", err)
	}
	if err := json.Unmarshal([]byte(matchesJSON), &entry.Matches); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		entry.CreatedAt = ts
	}
	return &entry, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

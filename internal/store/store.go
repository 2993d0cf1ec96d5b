// Package store persists validation results in SQLite so unchanged files are
// not re-checked between runs.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the result cache.
type Store struct {
	db *sql.DB
}

// CachedResult is one file's persisted validation outcome, keyed by the
// content hash it was computed from.
type CachedResult struct {
	Path         string
	Hash         string
	Valid        bool
	Calls        []string
	InvalidCalls []string
	CheckedAt    time.Time
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS results (
  id            INTEGER PRIMARY KEY,
  path          TEXT NOT NULL UNIQUE,
  hash          TEXT NOT NULL,
  valid         BOOLEAN NOT NULL,
  calls         TEXT NOT NULL,
  invalid_calls TEXT NOT NULL,
  checked_at    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT
);
`

// ResultByPath returns the cached result for a path, or nil when absent.
func (s *Store) ResultByPath(path string) (*CachedResult, error) {
	row := s.db.QueryRow(
		`SELECT path, hash, valid, calls, invalid_calls, checked_at FROM results WHERE path = ?`, path)

	var r CachedResult
	var calls, invalid string
	if err := row.Scan(&r.Path, &r.Hash, &r.Valid, &calls, &invalid, &r.CheckedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup result: %w", err)
	}
	if err := json.Unmarshal([]byte(calls), &r.Calls); err != nil {
		return nil, fmt.Errorf("decode calls: %w", err)
	}
	if err := json.Unmarshal([]byte(invalid), &r.InvalidCalls); err != nil {
		return nil, fmt.Errorf("decode invalid calls: %w", err)
	}
	return &r, nil
}

// UpsertResult writes a result, replacing any previous row for the path.
func (s *Store) UpsertResult(r *CachedResult) error {
	calls, err := json.Marshal(emptyIfNil(r.Calls))
	if err != nil {
		return fmt.Errorf("encode calls: %w", err)
	}
	invalid, err := json.Marshal(emptyIfNil(r.InvalidCalls))
	if err != nil {
		return fmt.Errorf("encode invalid calls: %w", err)
	}
	_, err = s.db.Exec(`
INSERT INTO results (path, hash, valid, calls, invalid_calls, checked_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  hash = excluded.hash,
  valid = excluded.valid,
  calls = excluded.calls,
  invalid_calls = excluded.invalid_calls,
  checked_at = excluded.checked_at`,
		r.Path, r.Hash, r.Valid, string(calls), string(invalid), r.CheckedAt)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// Clear drops every cached result, keeping metadata.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

// GetMetadata returns the value for a metadata key, or "" when absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata: %w", err)
	}
	return value, nil
}

// SetMetadata stores a metadata key/value pair.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

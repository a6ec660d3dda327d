// Package cache persists dependency resolutions in a SQLite database.
//
// Resolutions pinned to a parent commit never change: commit ids name their
// content, so a (dependent, parent, variant) key always maps to the same ids.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/masmgr/git-deps/internal/git"
)

// Key identifies one resolver call.
type Key struct {
	Dependent git.ObjectID
	Parent    git.ObjectID
	// Variant encodes every option that affects the result.
	Variant string
}

// Store is a SQLite-backed resolution cache.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	dependent TEXT NOT NULL,
	parent TEXT NOT NULL,
	variant TEXT NOT NULL,
	deps TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (dependent, parent, variant)
)`

// DefaultPath returns the per-user cache database location.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache dir: %w", err)
	}
	return filepath.Join(dir, "git-deps", "resolutions.db"), nil
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	// One writer at a time; the CLI is single-threaded anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Get returns the cached ids for key. ok is false on a miss.
func (s *Store) Get(ctx context.Context, key Key) (ids []git.ObjectID, ok bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT deps FROM resolutions WHERE dependent = ? AND parent = ? AND variant = ?`,
		string(key.Dependent), string(key.Parent), key.Variant,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache: %w", err)
	}

	var hex []string
	if err := json.Unmarshal([]byte(raw), &hex); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	ids = make([]git.ObjectID, len(hex))
	for i, h := range hex {
		ids[i] = git.ObjectID(h)
	}
	return ids, true, nil
}

// Put stores ids for key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key Key, ids []git.ObjectID) error {
	hex := make([]string, len(ids))
	for i, id := range ids {
		hex[i] = string(id)
	}
	raw, err := json.Marshal(hex)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO resolutions (dependent, parent, variant, deps, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(key.Dependent), string(key.Parent), key.Variant, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Len returns the number of cached resolutions.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resolutions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}

// Clear removes every cached resolution.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

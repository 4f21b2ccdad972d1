// Package sqlitestore is the concrete repo.* implementation over
// modernc.org/sqlite, adapting the teacher's migrate-statement pattern
// (CREATE TABLE IF NOT EXISTS, one *sql.DB, RFC3339 string timestamps) to
// the full civic-map schema (spec.md §6 "Persisted state layout").
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store owns the database handle shared by every per-entity repo adapter
// in this package.
type Store struct {
	db *sql.DB
}

// Open creates the database file's parent directory, opens a single-
// connection pool (sqlite's writer is serialized regardless), and runs
// migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("db path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA foreign_keys=ON;`,
		`CREATE TABLE IF NOT EXISTS places (
			id TEXT PRIMARY KEY,
			license TEXT NOT NULL,
			created_at TEXT NOT NULL,
			created_by TEXT,
			current_rev INTEGER NOT NULL,
			current_status INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS place_revisions (
			place_id TEXT NOT NULL REFERENCES places(id),
			rev INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			street TEXT, zip TEXT, city TEXT, country TEXT, state TEXT,
			contact_email TEXT, contact_phone TEXT,
			homepage TEXT, image TEXT, image_href TEXT,
			tags TEXT NOT NULL DEFAULT '',
			current_status INTEGER NOT NULL,
			PRIMARY KEY (place_id, rev)
		);`,
		`CREATE TABLE IF NOT EXISTS place_reviews (
			place_id TEXT NOT NULL,
			rev INTEGER NOT NULL,
			review_rev INTEGER NOT NULL,
			status INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			created_by TEXT,
			context TEXT,
			comment TEXT,
			PRIMARY KEY (place_id, rev, review_rev)
		);`,
		`CREATE TABLE IF NOT EXISTS pending_authorizations (
			place_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_authorized_rev INTEGER NOT NULL,
			last_authorized_status INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			start_at TEXT NOT NULL,
			end_at TEXT,
			lat REAL, lng REAL,
			street TEXT, zip TEXT, city TEXT, country TEXT, state TEXT,
			contact_email TEXT, contact_phone TEXT,
			homepage TEXT, image TEXT, image_href TEXT,
			created_by TEXT,
			tags TEXT NOT NULL DEFAULT '',
			registration INTEGER,
			organizer TEXT,
			archived_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			email_confirmed INTEGER NOT NULL DEFAULT 0,
			role INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS user_tokens (
			email TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			nonce TEXT NOT NULL,
			expires_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ratings (
			id TEXT PRIMARY KEY,
			place_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			archived_at TEXT,
			archived_by TEXT,
			title TEXT NOT NULL,
			value REAL NOT NULL,
			context INTEGER NOT NULL,
			source TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			rating_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			archived_at TEXT,
			archived_by TEXT,
			text TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tags (
			id TEXT PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS organizations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			api_token TEXT NOT NULL UNIQUE,
			owned_tags TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS bbox_subscriptions (
			id TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			sw_lat REAL NOT NULL, sw_lng REAL NOT NULL,
			ne_lat REAL NOT NULL, ne_lng REAL NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Sentinel errors used by handlers to map storage failures to HTTP statuses
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	uuid            TEXT PRIMARY KEY,
	name            TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	is_active       INTEGER NOT NULL DEFAULT 1,
	is_superuser    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS artists (
	uuid TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artists_name ON artists(name);

CREATE TABLE IF NOT EXISTS albums (
	uuid TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_albums_name ON albums(name);

CREATE TABLE IF NOT EXISTS audio (
	uuid TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tracks (
	uuid   TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	genre  TEXT,
	artist TEXT REFERENCES artists(uuid),
	album  TEXT REFERENCES albums(uuid),
	audio  TEXT NOT NULL REFERENCES audio(uuid)
);
CREATE INDEX IF NOT EXISTS idx_tracks_name ON tracks(name);
`

// Store wraps the SQLite catalog database
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the catalog database at the specified path.
// The path can be ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL lets the server read while the scanner commits batches; the busy
	// timeout covers the brief moments a batch holds the write lock.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// isConstraintErr reports whether err is a SQLite uniqueness violation
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

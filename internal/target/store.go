// Package target implements the demo invocation target daemon. It hosts the
// four flat collaborator stores that accepted proposals execute against
// (events, exams, polls, nfts), backed by SQLite.
package target

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrAlreadyVoted  = errors.New("voter has already voted on this poll")
	ErrEventClosed   = errors.New("event has been cancelled")
	ErrPollClosed    = errors.New("poll is no longer active")
	ErrNotOwner      = errors.New("caller does not own this record")
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    name      TEXT NOT NULL,
    date      TEXT NOT NULL,
    venue     TEXT NOT NULL DEFAULT '',
    cancelled INTEGER NOT NULL DEFAULT 0,
    UNIQUE (name, date)
);
CREATE TABLE IF NOT EXISTS event_participants (
    event_id    INTEGER NOT NULL REFERENCES events(id),
    participant TEXT NOT NULL,
    PRIMARY KEY (event_id, participant)
);
CREATE TABLE IF NOT EXISTS exams (
    course  TEXT NOT NULL,
    "group" TEXT NOT NULL,
    out_of  INTEGER NOT NULL,
    curve   INTEGER NOT NULL,
    PRIMARY KEY (course, "group")
);
CREATE TABLE IF NOT EXISTS participation (
    "group" TEXT PRIMARY KEY,
    percent INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS polls (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    description TEXT NOT NULL,
    owner       TEXT NOT NULL,
    approve     INTEGER NOT NULL DEFAULT 0,
    reject      INTEGER NOT NULL DEFAULT 0,
    pass        INTEGER NOT NULL DEFAULT 0,
    active      INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS poll_votes (
    poll_id INTEGER NOT NULL REFERENCES polls(id),
    voter   TEXT NOT NULL,
    choice  TEXT NOT NULL,
    PRIMARY KEY (poll_id, voter)
);
CREATE TABLE IF NOT EXISTS nfts (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    owner    TEXT NOT NULL,
    name     TEXT NOT NULL,
    content  BLOB NOT NULL,
    metadata TEXT NOT NULL DEFAULT ''
);`

// Store persists the target collaborator state in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite store at path and ensures the
// schema. Pass ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection gets its own in-memory database, so the
		// pool must stay at exactly one connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping reports whether the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// Package database provides SQLite persistence for identities, their claims,
// and the cookie sessions issued by the fake identity server.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	_ "modernc.org/sqlite"
)

// sessionCleanupInterval is how often expired sessions are purged.
const sessionCleanupInterval = 5 * time.Minute

type SQLiteStore struct {
	db       *sql.DB
	sessions *sqlite3store.SQLite3Store
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists. ":memory:" gives a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// every connection to ":memory:" is its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init database schema: couldn't enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	return &SQLiteStore{
		db:       db,
		sessions: sqlite3store.NewWithCleanupInterval(db, sessionCleanupInterval),
	}, nil
}

func (s *SQLiteStore) Close() error {
	s.sessions.StopCleanup()
	return s.db.Close()
}

// SessionStore returns the scs store backed by the sessions table.
func (s *SQLiteStore) SessionStore() scs.Store {
	return s.sessions
}

func initSchema(db *sql.DB) error {
	if err := initTable(db, "identity", `
		CREATE TABLE IF NOT EXISTS identity (
			id               TEXT PRIMARY KEY,
			email            TEXT NOT NULL UNIQUE COLLATE NOCASE,
			secret           BLOB NOT NULL,
			email_confirmed  INTEGER NOT NULL DEFAULT 0,
			created          INTEGER NOT NULL
		);`,
	); err != nil {
		return err
	}

	if err := initTable(db, "claim", `
		CREATE TABLE IF NOT EXISTS claim (
			owner     TEXT NOT NULL,
			position  INTEGER NOT NULL,
			type      TEXT NOT NULL,
			value     TEXT NOT NULL,
			PRIMARY KEY (owner, position),
			FOREIGN KEY (owner) REFERENCES identity (id) ON DELETE CASCADE
		);`,
	); err != nil {
		return err
	}

	// layout expected by sqlite3store
	if err := initTable(db, "sessions", `
		CREATE TABLE IF NOT EXISTS sessions (
			token   TEXT PRIMARY KEY,
			data    BLOB NOT NULL,
			expiry  REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`,
	); err != nil {
		return err
	}

	return nil
}

func initTable(
	db *sql.DB,
	name string,
	sql string,
) error {
	if _, err := db.Exec(sql); err != nil {
		return fmt.Errorf("failed to init '%s' table schema: %w", name, err)
	}
	return nil
}

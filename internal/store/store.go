// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers and CCF venues in SQLite and executes
// compiled search predicates against them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// StorageError wraps a failure from the database engine. Unlike
// validation errors, retrying the same request against a healthy store
// may succeed.
type StorageError struct {
	// Op names the failed operation (count, fetch, connect, ...).
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Retryable reports that storage failures may be transient.
func (e *StorageError) Retryable() bool { return true }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Store manages the papers database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the SQLite database at path, creating parent
// directories and the schema if needed.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conference TEXT NOT NULL,
			year INTEGER NOT NULL,
			volume INTEGER,
			title TEXT NOT NULL UNIQUE,
			href TEXT,
			origin TEXT,
			abstract TEXT,
			bib TEXT,
			cat TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_conference_year ON papers(conference, year)`,
		`CREATE TABLE IF NOT EXISTS venues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			abbreviation TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL,
			publisher TEXT,
			ccf_rank TEXT NOT NULL,
			venue_type TEXT NOT NULL,
			domain TEXT NOT NULL,
			dblp_url TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_venues_rank ON venues(ccf_rank)`,
		`CREATE INDEX IF NOT EXISTS idx_venues_type ON venues(venue_type)`,
		`CREATE INDEX IF NOT EXISTS idx_venues_domain ON venues(domain)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// queryer is satisfied by *sql.DB, *sql.Conn, and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withConn runs fn on a dedicated connection and always releases it.
func (s *Store) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return storageErr("connect", err)
	}
	defer conn.Close()
	return fn(conn)
}

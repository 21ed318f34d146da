// Package store persists transactions, tags, tagging rules, and account
// balance snapshots in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// StorageError wraps a database failure with the operation that produced
// it, so callers can distinguish persistence faults from parse faults.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// Store is a handle to the SQLite database. It is safe for concurrent use;
// the underlying pool is pinned to a single connection so in-memory
// databases behave like file-backed ones.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr("open", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, storageErr("configure", err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS rules (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	pattern TEXT NOT NULL,
	tag_id  INTEGER NOT NULL REFERENCES tags(id),
	UNIQUE (pattern, tag_id)
);

CREATE TABLE IF NOT EXISTS transactions (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	date               TEXT NOT NULL,
	description        TEXT NOT NULL,
	amount             TEXT NOT NULL,
	import_fingerprint INTEGER UNIQUE,
	tag_id             INTEGER REFERENCES tags(id)
);

CREATE TABLE IF NOT EXISTS account_balances (
	account_id TEXT PRIMARY KEY,
	balance    TEXT NOT NULL,
	as_of      TEXT NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return storageErr("migrate", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return storageErr("close", err)
	}
	return nil
}

func (s *Store) begin(ctx context.Context, op string) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr(op, err)
	}
	return tx, nil
}

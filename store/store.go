// Package store persists the current state of state machines in SQLite, for
// use with the external accessor/mutator construction form.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Load when no state has been saved for a machine.
var ErrNotFound = errors.New("machine state not found")

// Store handles SQLite persistence of machine current states.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at the given DSN and creates the schema if it
// does not exist. Use ":memory:" for an in-memory store.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer at a time, and a :memory: database exists
	// per connection. A single pooled connection keeps both correct.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS machine_state (
		machine_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Save upserts the current state of a machine.
func (s *Store) Save(ctx context.Context, machineID, state string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO machine_state (machine_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(machine_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		machineID, state, time.Now().UTC(),
	)
	return err
}

// Load retrieves the saved state of a machine. It returns ErrNotFound when
// the machine has never been saved.
func (s *Store) Load(ctx context.Context, machineID string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT state FROM machine_state WHERE machine_id = ?`, machineID)

	var state string
	if err := row.Scan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return state, nil
}

// Delete removes the saved state of a machine. Deleting an unknown machine
// is not an error.
func (s *Store) Delete(ctx context.Context, machineID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM machine_state WHERE machine_id = ?`, machineID)
	return err
}

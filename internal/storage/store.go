package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// Sentinel errors for the store. Operation failures that are not one of
// these are wrapped I/O errors from the underlying driver.
var (
	// ErrStoreUnavailable means the database could not be opened or
	// reached at all. Fatal to every storage operation.
	ErrStoreUnavailable = errors.New("storage: database unavailable")

	// ErrTxAborted means a multi-table transaction failed to commit and
	// was rolled back. The database is left in its prior state and the
	// operation is safe to retry.
	ErrTxAborted = errors.New("storage: transaction aborted")

	// ErrSessionNotFound is returned when an operation names a session id
	// that has no row.
	ErrSessionNotFound = errors.New("storage: session not found")

	// ErrAnswerNotFound is returned when an answer id has no row.
	ErrAnswerNotFound = errors.New("storage: answer not found")
)

// Store wraps the single SQL database handle everything persists through.
// The handle is owned by the Store: Open creates it, Close releases it,
// and callers inject the Store rather than reaching for a global. Opening
// an already-migrated database re-runs no migrations, so Open is safe to
// call against the same file any number of times over a process's life.
type Store struct {
	conn *sql.DB
}

// Open creates the database connection for dsn, creating the file when
// absent, and brings the schema to the current version.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// SQLite has no concurrent writers; a single connection also keeps
	// :memory: databases from silently becoming several databases.
	db.SetMaxOpenConns(1)

	s := &Store{conn: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// migrate applies every schema version above the database's recorded
// user_version, each in its own transaction, then records the new version.
func (s *Store) migrate() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}

	for v := version; v < len(migrations); v++ {
		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration to v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply schema v%d: %w", v+1, err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record schema v%d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: migration to v%d: %v", ErrTxAborted, v+1, err)
		}
	}
	return nil
}

// schemaVersion reads the database's current schema version.
func (s *Store) schemaVersion() (int, error) {
	var version int
	if err := s.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

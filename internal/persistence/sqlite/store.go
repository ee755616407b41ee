// Package sqlite implements the persistence repositories on SQLite using the
// pure-Go modernc.org/sqlite driver. The reservations table carries the
// UNIQUE(room_id, day) index that is the final authority on double-booking.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store bundles the SQLite-backed repositories behind a single connection
// pool.
type Store struct {
	pool *ConnectionPool

	Accounts      *AccountRepository
	Rooms         *RoomRepository
	Reservations  *ReservationRepository
	GradeRequests *GradeRequestRepository
}

// Open opens the database at dsn and wires the repositories. Callers must
// invoke Migrate before first use.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:          pool,
		Accounts:      NewAccountRepository(pool),
		Rooms:         NewRoomRepository(pool),
		Reservations:  NewReservationRepository(pool),
		GradeRequests: NewGradeRequestRepository(pool),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// migrations holds the ordered schema versions. Each entry runs at most once;
// applied versions are recorded in schema_migrations.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		grade TEXT NOT NULL DEFAULT 'visitor',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		equipment TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		account_id TEXT NOT NULL,
		day TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (room_id, day)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_day ON reservations (day)`,
	`CREATE TABLE IF NOT EXISTS grade_requests (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

// Migrate applies any schema versions not yet recorded in schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for version, statement := range migrations {
		applied, err := s.migrationApplied(ctx, version+1)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, execErr := tx.Exec(statement); execErr != nil {
				return fmt.Errorf("migration %d failed: %w", version+1, execErr)
			}
			if _, recErr := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version+1); recErr != nil {
				return fmt.Errorf("failed to record migration %d: %w", version+1, recErr)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) migrationApplied(ctx context.Context, version int) (bool, error) {
	var found int
	err := s.pool.DB().QueryRowContext(ctx,
		"SELECT version FROM schema_migrations WHERE version = ?", version).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema_migrations: %w", err)
	}
	return true, nil
}

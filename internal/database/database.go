package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"parklot/internal/worker"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the SQLite-backed reservation ledger and slot catalog. It is
// the only component that writes reservation rows.
type DB struct {
	*sql.DB
	logger     *zerolog.Logger
	admitRetry worker.RetryPolicy
}

// NewDB opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for tests.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Busy timeout lets concurrent writers queue briefly instead of
	// failing immediately; WAL keeps readers off the writer's lock.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger, admitRetry: worker.DefaultRetryPolicy()}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS floors (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            floor_number INTEGER NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS slots (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            floor_id INTEGER NOT NULL REFERENCES floors(id),
            number TEXT NOT NULL,
            vehicle_type TEXT NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            slot_id INTEGER NOT NULL REFERENCES slots(id),
            holder_id TEXT NOT NULL,
            vehicle_number TEXT NOT NULL,
            start_time INTEGER NOT NULL,
            end_time INTEGER NOT NULL,
            cost REAL NOT NULL,
            status TEXT NOT NULL DEFAULT 'active',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            version INTEGER NOT NULL DEFAULT 1
        )`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_floors_number ON floors(floor_number)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_slots_number_floor ON slots(number, floor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_vehicle_type ON slots(vehicle_type)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_slot_id ON reservations(slot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_holder_id ON reservations(holder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_time ON reservations(start_time, end_time)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// isBusy reports whether err is a transient SQLite locking error worth
// retrying.
func isBusy(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}

// isConstraint reports whether err is a uniqueness violation.
func isConstraint(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint
	}
	return false
}

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrDuplicateActive is returned when an insert would give a customer a
// second active waitlist entry. The partial unique index below backs the
// check, so two concurrent joins for the same customer cannot both land.
var ErrDuplicateActive = errors.New("customer already has an active entry")

// DB wraps sql.DB for the waitlist service.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Waitlist entries; served_at NULL means active
		`CREATE TABLE IF NOT EXISTS waitlist_entries (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			contact TEXT,
			guest_count INTEGER NOT NULL DEFAULT 1,
			priority_level INTEGER NOT NULL DEFAULT 0,
			joined_at DATETIME NOT NULL,
			served_at DATETIME,
			notification_sent BOOLEAN NOT NULL DEFAULT 0
		)`,

		// Weekly hours, one row per weekday (0=Sunday..6=Saturday)
		`CREATE TABLE IF NOT EXISTS shop_hours (
			day_of_week INTEGER PRIMARY KEY CHECK (day_of_week BETWEEN 0 AND 6),
			is_open BOOLEAN NOT NULL DEFAULT 0,
			start_time TEXT,
			end_time TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Date-specific closures, date as "YYYY-MM-DD"
		`CREATE TABLE IF NOT EXISTS shop_closures (
			date TEXT PRIMARY KEY,
			is_closed BOOLEAN NOT NULL DEFAULT 1,
			reason TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// One active entry per customer, enforced at the storage boundary
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_active_customer
			ON waitlist_entries(customer_id) WHERE served_at IS NULL`,

		`CREATE INDEX IF NOT EXISTS idx_entries_served ON waitlist_entries(served_at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

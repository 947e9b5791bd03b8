package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/anish-yen/barber-app/internal/models"
)

const entryColumns = `id, customer_id, contact, guest_count, priority_level,
	joined_at, served_at, notification_sent`

// InsertEntry stores a new active entry. Returns ErrDuplicateActive when the
// customer already holds an active entry; the partial unique index makes the
// check atomic with respect to concurrent inserts.
func (db *DB) InsertEntry(ctx context.Context, e *models.WaitlistEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO waitlist_entries (
			id, customer_id, contact, guest_count, priority_level,
			joined_at, notification_sent
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CustomerID, e.Contact, e.GuestCount, e.PriorityLevel,
		e.JoinedAt, e.NotificationSent,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateActive
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// ActiveEntryByCustomer returns the customer's active entry, or nil when the
// customer is not queued.
func (db *DB) ActiveEntryByCustomer(ctx context.Context, customerID string) (*models.WaitlistEntry, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM waitlist_entries
		WHERE customer_id = ? AND served_at IS NULL
		LIMIT 1`,
		customerID,
	)
	return scanEntryRow(row)
}

// ActiveEntryByID returns an active entry by its own id, or nil when the
// entry does not exist or is already served.
func (db *DB) ActiveEntryByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM waitlist_entries
		WHERE id = ? AND served_at IS NULL
		LIMIT 1`,
		id,
	)
	return scanEntryRow(row)
}

// ListActiveEntries returns every active entry. Callers order the result
// through the queue package; arrival order here is only for stable reads.
func (db *DB) ListActiveEntries(ctx context.Context) ([]models.WaitlistEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM waitlist_entries
		WHERE served_at IS NULL
		ORDER BY joined_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active entries: %w", err)
	}
	defer rows.Close()

	var entries []models.WaitlistEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListServedEntries returns entries served within [from, to), newest first.
func (db *DB) ListServedEntries(ctx context.Context, from, to time.Time) ([]models.WaitlistEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM waitlist_entries
		WHERE served_at IS NOT NULL AND served_at >= ? AND served_at < ?
		ORDER BY served_at DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list served entries: %w", err)
	}
	defer rows.Close()

	var entries []models.WaitlistEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// MarkServed terminates an entry. The served_at guard makes the update
// conditional, so two concurrent serves of the same entry cannot both
// succeed; false means the entry was missing or already served.
func (db *DB) MarkServed(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE waitlist_entries SET served_at = ?
		WHERE id = ? AND served_at IS NULL`,
		at, id,
	)
	if err != nil {
		return false, fmt.Errorf("mark served: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetPriority changes the priority tier of an active entry. False means the
// entry was missing or already served.
func (db *DB) SetPriority(ctx context.Context, id string, level int) (bool, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE waitlist_entries SET priority_level = ?
		WHERE id = ? AND served_at IS NULL`,
		level, id,
	)
	if err != nil {
		return false, fmt.Errorf("set priority: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkNotificationSent flips the idempotency flag. Conditional on the flag
// still being unset so repeated triggers cannot double-count.
func (db *DB) MarkNotificationSent(ctx context.Context, id string) (bool, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE waitlist_entries SET notification_sent = 1
		WHERE id = ? AND notification_sent = 0 AND served_at IS NULL`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("mark notification sent: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*models.WaitlistEntry, error) {
	var e models.WaitlistEntry
	var contact sql.NullString
	var servedAt sql.NullTime
	if err := s.Scan(
		&e.ID, &e.CustomerID, &contact, &e.GuestCount, &e.PriorityLevel,
		&e.JoinedAt, &servedAt, &e.NotificationSent,
	); err != nil {
		return nil, err
	}
	if contact.Valid {
		e.Contact = contact.String
	}
	if servedAt.Valid {
		t := servedAt.Time
		e.ServedAt = &t
	}
	return &e, nil
}

func scanEntryRow(row *sql.Row) (*models.WaitlistEntry, error) {
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	return e, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

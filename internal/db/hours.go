package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anish-yen/barber-app/internal/models"
)

// UpsertHourRule creates or replaces the weekly rule for one weekday.
// Closed days store NULL times regardless of what the caller passed.
func (db *DB) UpsertHourRule(ctx context.Context, r *models.HourRule) error {
	var start, end any
	if r.IsOpen {
		start, end = r.StartTime, r.EndTime
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO shop_hours (day_of_week, is_open, start_time, end_time, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day_of_week) DO UPDATE SET
			is_open = excluded.is_open,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			updated_at = excluded.updated_at`,
		r.DayOfWeek, r.IsOpen, start, end, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert hour rule: %w", err)
	}
	return nil
}

// ListHourRules returns the weekly hours table ordered by weekday.
func (db *DB) ListHourRules(ctx context.Context) ([]models.HourRule, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT day_of_week, is_open, start_time, end_time, updated_at
		FROM shop_hours
		ORDER BY day_of_week`,
	)
	if err != nil {
		return nil, fmt.Errorf("list hour rules: %w", err)
	}
	defer rows.Close()

	var rules []models.HourRule
	for rows.Next() {
		var r models.HourRule
		var start, end sql.NullString
		if err := rows.Scan(&r.DayOfWeek, &r.IsOpen, &start, &end, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if start.Valid {
			r.StartTime = start.String
		}
		if end.Valid {
			r.EndTime = end.String
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// SetClosure creates or replaces the closure for a date.
func (db *DB) SetClosure(ctx context.Context, c *models.Closure) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO shop_closures (date, is_closed, reason, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			is_closed = excluded.is_closed,
			reason = excluded.reason`,
		c.Date, c.IsClosed, c.Reason, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set closure: %w", err)
	}
	return nil
}

// RemoveClosure deletes the closure for a date so the day falls back to the
// weekly rule.
func (db *DB) RemoveClosure(ctx context.Context, date string) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM shop_closures WHERE date = ?", date,
	)
	if err != nil {
		return fmt.Errorf("remove closure: %w", err)
	}
	return nil
}

// ListClosures returns closed dates within [from, to] inclusive, ordered by
// date. Dates are "YYYY-MM-DD" strings, which sort chronologically.
func (db *DB) ListClosures(ctx context.Context, from, to string) ([]models.Closure, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT date, is_closed, reason, created_at
		FROM shop_closures
		WHERE date >= ? AND date <= ?
		ORDER BY date`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list closures: %w", err)
	}
	defer rows.Close()

	var closures []models.Closure
	for rows.Next() {
		var c models.Closure
		var reason sql.NullString
		if err := rows.Scan(&c.Date, &c.IsClosed, &reason, &c.CreatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			c.Reason = reason.String
		}
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

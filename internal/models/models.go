package models

import (
	"errors"
	"time"
)

// Guest count limits for a walk-in party (the customer plus at most one guest).
const (
	MinGuestCount = 1
	MaxGuestCount = 2
)

var (
	ErrInvalidGuestCount = errors.New("guest count must be 1 or 2")
	ErrInvalidPriority   = errors.New("priority level must be non-negative")
	ErrInvalidWeekday    = errors.New("day of week must be 0-6")
	ErrInvalidTimeRange  = errors.New("end time must be after start time")
	ErrInvalidClock      = errors.New("time must be in HH:MM format")
	ErrInvalidDate       = errors.New("date must be in YYYY-MM-DD format")
)

// WaitlistEntry is a single party on the walk-in waitlist.
// An entry is active while ServedAt is nil; serving and voluntary leaving
// both set ServedAt, after which the entry is history and never reactivated.
type WaitlistEntry struct {
	ID               string     `json:"id"`
	CustomerID       string     `json:"customer_id"`
	Contact          string     `json:"contact,omitempty"`
	GuestCount       int        `json:"guest_count"`
	PriorityLevel    int        `json:"priority_level"`
	JoinedAt         time.Time  `json:"joined_at"`
	ServedAt         *time.Time `json:"served_at,omitempty"`
	NotificationSent bool       `json:"notification_sent"`
}

// IsActive reports whether the entry is still waiting.
func (e *WaitlistEntry) IsActive() bool {
	return e.ServedAt == nil
}

// ValidateGuestCount checks a requested party size.
func ValidateGuestCount(n int) error {
	if n < MinGuestCount || n > MaxGuestCount {
		return ErrInvalidGuestCount
	}
	return nil
}

// HourRule is the weekly open-hours row for one weekday.
// Weekday follows time.Weekday numbering: 0 = Sunday .. 6 = Saturday.
// StartTime/EndTime are "HH:MM" 24-hour clock strings; both are empty
// when the shop is closed that day.
type HourRule struct {
	DayOfWeek int       `json:"day_of_week"`
	IsOpen    bool      `json:"is_open"`
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Validate checks the rule before it reaches storage.
func (r *HourRule) Validate() error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return ErrInvalidWeekday
	}
	if !r.IsOpen {
		return nil
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return ErrInvalidTimeRange
	}
	return nil
}

// Closure marks one calendar date as fully closed, overriding the weekly
// rule. Date is a "YYYY-MM-DD" string in shop-local time. An entry with
// IsClosed false does not close the day.
type Closure struct {
	Date      string    `json:"date"`
	IsClosed  bool      `json:"is_closed"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ValidateDate checks a "YYYY-MM-DD" calendar date string.
func ValidateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ParseClock parses an "HH:MM" clock string to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

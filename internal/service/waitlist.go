// Package service owns the waitlist entry lifecycle: join, leave, serve,
// promote. Ordering itself lives in the queue package; this package only
// decides which transitions are legal and keeps the storage boundary
// atomic.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anish-yen/barber-app/internal/db"
	"github.com/anish-yen/barber-app/internal/events"
	"github.com/anish-yen/barber-app/internal/metrics"
	"github.com/anish-yen/barber-app/internal/models"
	"github.com/anish-yen/barber-app/internal/queue"
	"github.com/anish-yen/barber-app/internal/schedule"
)

// serveRetries bounds the serve-next retry loop when a concurrent operator
// grabs the head entry first.
const serveRetries = 3

// closureLookAheadDays is how far ahead closures are loaded for schedule
// evaluation; the next-open scan never looks further than a week.
const closureLookAheadDays = 8

// EntryStore is the storage boundary for waitlist entries.
type EntryStore interface {
	InsertEntry(ctx context.Context, e *models.WaitlistEntry) error
	ActiveEntryByCustomer(ctx context.Context, customerID string) (*models.WaitlistEntry, error)
	ActiveEntryByID(ctx context.Context, id string) (*models.WaitlistEntry, error)
	ListActiveEntries(ctx context.Context) ([]models.WaitlistEntry, error)
	ListServedEntries(ctx context.Context, from, to time.Time) ([]models.WaitlistEntry, error)
	MarkServed(ctx context.Context, id string, at time.Time) (bool, error)
	SetPriority(ctx context.Context, id string, level int) (bool, error)
}

// ScheduleStore is the storage boundary for weekly hours and closures.
type ScheduleStore interface {
	ListHourRules(ctx context.Context) ([]models.HourRule, error)
	ListClosures(ctx context.Context, from, to string) ([]models.Closure, error)
	UpsertHourRule(ctx context.Context, r *models.HourRule) error
	SetClosure(ctx context.Context, c *models.Closure) error
	RemoveClosure(ctx context.Context, date string) error
}

// StatusCache caches the computed schedule status for a short TTL.
type StatusCache interface {
	Get(ctx context.Context) (*schedule.Status, bool)
	Set(ctx context.Context, st schedule.Status)
}

// Waitlist is the entry lifecycle manager.
type Waitlist struct {
	entries EntryStore
	sched   ScheduleStore
	clock   schedule.Clock
	loc     *time.Location
	bus     *events.Bus
	cache   StatusCache
	logger  *zerolog.Logger
}

// NewWaitlist wires the lifecycle manager. cache may be nil.
func NewWaitlist(entries EntryStore, sched ScheduleStore, clock schedule.Clock, loc *time.Location, bus *events.Bus, cache StatusCache, logger *zerolog.Logger) *Waitlist {
	return &Waitlist{
		entries: entries,
		sched:   sched,
		clock:   clock,
		loc:     loc,
		bus:     bus,
		cache:   cache,
		logger:  logger,
	}
}

// Join puts a customer on the waitlist. The shop must be open and the
// customer must not already hold an active entry.
func (w *Waitlist) Join(ctx context.Context, customerID, contact string, guestCount int) (*models.WaitlistEntry, error) {
	if err := models.ValidateGuestCount(guestCount); err != nil {
		return nil, err
	}

	status, err := w.ScheduleStatus(ctx)
	if err != nil {
		return nil, err
	}
	if !status.IsOpenNow {
		return nil, &ShopClosedError{Status: status}
	}

	if existing, err := w.entries.ActiveEntryByCustomer(ctx, customerID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &AlreadyQueuedError{Entry: *existing}
	}

	entry := &models.WaitlistEntry{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Contact:    contact,
		GuestCount: guestCount,
		JoinedAt:   w.clock.Now().UTC(),
	}
	if err := w.entries.InsertEntry(ctx, entry); err != nil {
		// Lost the race against a concurrent join by the same customer.
		if errors.Is(err, db.ErrDuplicateActive) {
			if existing, lookupErr := w.entries.ActiveEntryByCustomer(ctx, customerID); lookupErr == nil && existing != nil {
				return nil, &AlreadyQueuedError{Entry: *existing}
			}
			return nil, &AlreadyQueuedError{Entry: *entry}
		}
		return nil, err
	}

	metrics.IncJoined()
	w.logger.Info().Str("entry_id", entry.ID).Str("customer_id", customerID).
		Int("guest_count", guestCount).Msg("customer joined waitlist")
	w.publishQueueChanged(entry.ID)
	return entry, nil
}

// Leave terminates the caller's own active entry.
func (w *Waitlist) Leave(ctx context.Context, customerID string) (*models.WaitlistEntry, error) {
	entry, err := w.entries.ActiveEntryByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotQueued
	}

	now := w.clock.Now().UTC()
	ok, err := w.entries.MarkServed(ctx, entry.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotQueued
	}
	entry.ServedAt = &now

	metrics.IncServed("left")
	w.logger.Info().Str("entry_id", entry.ID).Str("customer_id", customerID).Msg("customer left waitlist")
	w.publishQueueChanged(entry.ID)
	return entry, nil
}

// ServeNext serves the head of the canonical order. The conditional
// served_at update plus the retry loop guarantee two concurrent calls never
// serve the same entry.
func (w *Waitlist) ServeNext(ctx context.Context) (*models.WaitlistEntry, error) {
	for attempt := 0; attempt < serveRetries; attempt++ {
		active, err := w.entries.ListActiveEntries(ctx)
		if err != nil {
			return nil, err
		}
		head := queue.Head(active)
		if head == nil {
			return nil, ErrQueueEmpty
		}

		now := w.clock.Now().UTC()
		ok, err := w.entries.MarkServed(ctx, head.ID, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Another operator served this entry first; re-read the queue.
			continue
		}
		head.ServedAt = &now

		metrics.IncServed("served")
		w.logger.Info().Str("entry_id", head.ID).Str("customer_id", head.CustomerID).Msg("served next customer")
		w.publishQueueChanged(head.ID)
		return head, nil
	}
	return nil, fmt.Errorf("serve next: queue head kept changing after %d attempts", serveRetries)
}

// SetPriority promotes or demotes an active entry. This is the only way a
// later arrival can be served ahead of an earlier one; JoinedAt is never
// touched.
func (w *Waitlist) SetPriority(ctx context.Context, entryID string, level int) (*models.WaitlistEntry, error) {
	if level < 0 {
		return nil, models.ErrInvalidPriority
	}

	ok, err := w.entries.SetPriority(ctx, entryID, level)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEntryNotFound
	}

	entry, err := w.entries.ActiveEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	metrics.IncPriorityChanged()
	w.logger.Info().Str("entry_id", entryID).Int("priority_level", level).Msg("entry priority changed")
	w.publishQueueChanged(entryID)
	return entry, nil
}

// QueueView computes the canonical queue snapshot centered on one entry.
// Pass "" for the operator's subject-less listing.
func (w *Waitlist) QueueView(ctx context.Context, subjectEntryID string) (queue.View, error) {
	active, err := w.entries.ListActiveEntries(ctx)
	if err != nil {
		return queue.View{}, err
	}
	return queue.ComputeView(active, subjectEntryID), nil
}

// StatusForCustomer resolves the customer's active entry, then computes the
// view by entry id so a stale duplicate row can never skew the position.
func (w *Waitlist) StatusForCustomer(ctx context.Context, customerID string) (queue.View, error) {
	entry, err := w.entries.ActiveEntryByCustomer(ctx, customerID)
	if err != nil {
		return queue.View{}, err
	}
	subjectID := ""
	if entry != nil {
		subjectID = entry.ID
	}
	return w.QueueView(ctx, subjectID)
}

// ServedHistory lists entries served within [from, to).
func (w *Waitlist) ServedHistory(ctx context.Context, from, to time.Time) ([]models.WaitlistEntry, error) {
	return w.entries.ListServedEntries(ctx, from, to)
}

// ScheduleStatus evaluates the weekly hours and closures at the current
// instant in the shop's zone.
func (w *Waitlist) ScheduleStatus(ctx context.Context) (schedule.Status, error) {
	if w.cache != nil {
		if st, ok := w.cache.Get(ctx); ok {
			return *st, nil
		}
	}

	hours, err := w.sched.ListHourRules(ctx)
	if err != nil {
		return schedule.Status{}, err
	}

	now := w.clock.Now()
	local := now.In(w.loc)
	from := local.Format("2006-01-02")
	to := local.AddDate(0, 0, closureLookAheadDays).Format("2006-01-02")
	closures, err := w.sched.ListClosures(ctx, from, to)
	if err != nil {
		return schedule.Status{}, err
	}

	st := schedule.ComputeStatus(hours, closures, now, w.loc)
	if w.cache != nil {
		w.cache.Set(ctx, st)
	}
	return st, nil
}

// SetHours validates and stores one weekly rule.
func (w *Waitlist) SetHours(ctx context.Context, r *models.HourRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := w.sched.UpsertHourRule(ctx, r); err != nil {
		return err
	}
	w.logger.Info().Int("day_of_week", r.DayOfWeek).Bool("is_open", r.IsOpen).Msg("weekly hours updated")
	w.bus.Publish(events.Event{Type: events.TopicScheduleChanged})
	return nil
}

// SetClosure stores a dated closure, or removes it when closed is false so
// the day falls back to the weekly rule.
func (w *Waitlist) SetClosure(ctx context.Context, date string, closed bool, reason string) error {
	if err := models.ValidateDate(date); err != nil {
		return err
	}
	if !closed {
		if err := w.sched.RemoveClosure(ctx, date); err != nil {
			return err
		}
	} else {
		c := &models.Closure{Date: date, IsClosed: true, Reason: reason}
		if err := w.sched.SetClosure(ctx, c); err != nil {
			return err
		}
	}
	w.logger.Info().Str("date", date).Bool("is_closed", closed).Msg("closure updated")
	w.bus.Publish(events.Event{Type: events.TopicScheduleChanged})
	return nil
}

// Hours returns the weekly table and the closures for the next 30 days.
func (w *Waitlist) Hours(ctx context.Context) ([]models.HourRule, []models.Closure, error) {
	hours, err := w.sched.ListHourRules(ctx)
	if err != nil {
		return nil, nil, err
	}
	local := w.clock.Now().In(w.loc)
	from := local.Format("2006-01-02")
	to := local.AddDate(0, 0, 30).Format("2006-01-02")
	closures, err := w.sched.ListClosures(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}
	return hours, closures, nil
}

func (w *Waitlist) publishQueueChanged(entryID string) {
	w.bus.Publish(events.Event{Type: events.TopicQueueChanged, EntryID: entryID})
}

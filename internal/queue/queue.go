// Package queue computes the canonical ordering of active waitlist entries
// and the derived position / wait figures. Every call site that cares about
// order (queue listing, position lookup, serve-next selection) must go
// through this package so the three views can never disagree.
package queue

import (
	"sort"

	"github.com/anish-yen/barber-app/internal/models"
)

// Per-person wait estimate bounds in minutes. A policy assumption about
// service time, not a measured value.
const (
	WaitLowPerPersonMinutes  = 30
	WaitHighPerPersonMinutes = 40
)

// View is a read-only snapshot of the queue, optionally centered on one
// subject entry.
type View struct {
	Entries []models.WaitlistEntry

	// Subject is the entry the view was computed for, nil when the subject
	// has no active entry. Position is its 1-based rank in canonical order,
	// 0 when Subject is nil.
	Subject  *models.WaitlistEntry
	Position int

	PeopleAhead              int
	TotalEntries             int
	TotalPeople              int
	EstimatedWaitLowMinutes  int
	EstimatedWaitHighMinutes int
}

// Less is the canonical strict total order over active entries: higher
// priority first, then earlier arrival, then smaller id. The id key makes
// the order deterministic even when two entries share JoinedAt exactly.
func Less(a, b *models.WaitlistEntry) bool {
	if a.PriorityLevel != b.PriorityLevel {
		return a.PriorityLevel > b.PriorityLevel
	}
	if !a.JoinedAt.Equal(b.JoinedAt) {
		return a.JoinedAt.Before(b.JoinedAt)
	}
	return a.ID < b.ID
}

// Sort orders entries in place by the canonical order.
func Sort(entries []models.WaitlistEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return Less(&entries[i], &entries[j])
	})
}

// ComputeView sorts a snapshot of active entries and derives the aggregate
// counts. subjectEntryID selects the subject by entry id; lookup is by id
// rather than customer identity so a stale duplicate row can never make the
// result ambiguous. Pass "" for a subject-less view.
func ComputeView(entries []models.WaitlistEntry, subjectEntryID string) View {
	ordered := make([]models.WaitlistEntry, len(entries))
	copy(ordered, entries)
	Sort(ordered)

	v := View{
		Entries:      ordered,
		TotalEntries: len(ordered),
	}
	for i := range ordered {
		v.TotalPeople += ordered[i].GuestCount
		if subjectEntryID != "" && ordered[i].ID == subjectEntryID {
			v.Subject = &ordered[i]
			v.Position = i + 1
		}
	}
	if v.Subject != nil {
		for i := 0; i < v.Position-1; i++ {
			v.PeopleAhead += ordered[i].GuestCount
		}
		v.EstimatedWaitLowMinutes = v.PeopleAhead * WaitLowPerPersonMinutes
		v.EstimatedWaitHighMinutes = v.PeopleAhead * WaitHighPerPersonMinutes
	}
	return v
}

// Head returns the entry that would be served next, nil when the queue is
// empty. Selection is unique and stable because the canonical order is a
// strict total order.
func Head(entries []models.WaitlistEntry) *models.WaitlistEntry {
	if len(entries) == 0 {
		return nil
	}
	head := &entries[0]
	for i := 1; i < len(entries); i++ {
		if Less(&entries[i], head) {
			head = &entries[i]
		}
	}
	out := *head
	return &out
}

// At returns the entry at a 1-based position in canonical order, nil when
// the queue is shorter than pos.
func At(entries []models.WaitlistEntry, pos int) *models.WaitlistEntry {
	if pos < 1 || pos > len(entries) {
		return nil
	}
	ordered := make([]models.WaitlistEntry, len(entries))
	copy(ordered, entries)
	Sort(ordered)
	out := ordered[pos-1]
	return &out
}

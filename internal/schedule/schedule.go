// Package schedule decides whether the shop is open at a given instant and
// renders the customer-facing hours strings. All calendar math is done in
// the shop's own time zone; conversions go through the standard tz database
// so day boundaries stay correct across daylight-saving transitions.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/anish-yen/barber-app/internal/models"
)

// Status is the customer-facing schedule summary.
type Status struct {
	IsOpenNow      bool   `json:"is_open_now"`
	TodayHoursText string `json:"today_hours_text"`
	NextOpenText   string `json:"next_open_text"`
}

// Clock supplies the current instant. Injected so tests can pin time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

const closedTodayText = "Closed today"

// lookAheadDays bounds the next-opening scan. Beyond a week the weekly
// table repeats, so a longer scan can never find anything new.
const lookAheadDays = 7

// ComputeStatus resolves now into the shop's zone and evaluates the weekly
// hours table against the closure set for that date.
func ComputeStatus(hours []models.HourRule, closures []models.Closure, now time.Time, loc *time.Location) Status {
	local := now.In(loc)
	today := localDate(local)
	nowMinutes := local.Hour()*60 + local.Minute()

	if dateClosed(closures, today) {
		return Status{
			IsOpenNow:      false,
			TodayHoursText: closedTodayText,
			NextOpenText:   nextOpenText(hours, closures, local),
		}
	}

	start, end, ok := openRuleFor(hours, int(local.Weekday()))
	if !ok {
		return Status{
			IsOpenNow:      false,
			TodayHoursText: closedTodayText,
			NextOpenText:   nextOpenText(hours, closures, local),
		}
	}

	openNow := nowMinutes >= start && nowMinutes < end
	st := Status{
		IsOpenNow:      openNow,
		TodayHoursText: fmt.Sprintf("Open today %s – %s", formatClock12(start), formatClock12(end)),
	}
	if !openNow {
		st.NextOpenText = nextOpenText(hours, closures, local)
	}
	return st
}

// nextOpenText scans forward for the next opening moment. When today's
// window has not ended yet the shop reopens today, so the text stays empty;
// otherwise the first non-closed weekday with an open rule within a week
// wins, and "Closed" is the fallback.
func nextOpenText(hours []models.HourRule, closures []models.Closure, local time.Time) string {
	today := localDate(local)
	nowMinutes := local.Hour()*60 + local.Minute()

	if _, end, ok := openRuleFor(hours, int(local.Weekday())); ok && !dateClosed(closures, today) {
		if nowMinutes < end {
			return ""
		}
	}

	for offset := 1; offset <= lookAheadDays; offset++ {
		check := local.AddDate(0, 0, offset)
		if dateClosed(closures, localDate(check)) {
			continue
		}
		start, _, ok := openRuleFor(hours, int(check.Weekday()))
		if !ok {
			continue
		}
		label := strings.ToLower(check.Weekday().String())
		if offset == 1 {
			label = "tomorrow"
		}
		return fmt.Sprintf("Opens %s at %s", label, formatClock12(start))
	}
	return "Closed"
}

// openRuleFor returns the open window for a weekday in minutes since
// midnight. A rule that is absent, flagged closed, or missing either time
// counts as closed all day.
func openRuleFor(hours []models.HourRule, weekday int) (int, int, bool) {
	for _, r := range hours {
		if r.DayOfWeek != weekday {
			continue
		}
		if !r.IsOpen || r.StartTime == "" || r.EndTime == "" {
			return 0, 0, false
		}
		start, err := models.ParseClock(r.StartTime)
		if err != nil {
			return 0, 0, false
		}
		end, err := models.ParseClock(r.EndTime)
		if err != nil {
			return 0, 0, false
		}
		return start, end, true
	}
	return 0, 0, false
}

// dateClosed reports whether any closure marks the date closed. Entries
// with IsClosed false are reserved for "explicitly reopened" and never
// close a day.
func dateClosed(closures []models.Closure, date string) bool {
	for _, c := range closures {
		if c.Date == date && c.IsClosed {
			return true
		}
	}
	return false
}

// localDate renders a local instant as "YYYY-MM-DD".
func localDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// formatClock12 renders minutes since midnight as "H:MM AM/PM".
func formatClock12(minutes int) string {
	h24 := minutes / 60
	m := minutes % 60
	h12 := h24 % 12
	if h12 == 0 {
		h12 = 12
	}
	ampm := "AM"
	if h24 >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, ampm)
}

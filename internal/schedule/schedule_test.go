package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anish-yen/barber-app/internal/models"
)

func mondayRule(start, end string) models.HourRule {
	return models.HourRule{DayOfWeek: 1, IsOpen: true, StartTime: start, EndTime: end}
}

func TestComputeStatusOpenNow(t *testing.T) {
	hours := []models.HourRule{mondayRule("09:00", "17:00")}

	// Monday 10:00
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	st := ComputeStatus(hours, nil, now, time.UTC)

	assert.True(t, st.IsOpenNow)
	assert.Equal(t, "Open today 9:00 AM – 5:00 PM", st.TodayHoursText)
	assert.Equal(t, "", st.NextOpenText)
}

func TestComputeStatusBeforeOpening(t *testing.T) {
	hours := []models.HourRule{mondayRule("09:00", "17:00")}

	// Monday 08:00, shop opens later today
	now := time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)
	st := ComputeStatus(hours, nil, now, time.UTC)

	assert.False(t, st.IsOpenNow)
	assert.Equal(t, "Open today 9:00 AM – 5:00 PM", st.TodayHoursText)
	assert.Equal(t, "", st.NextOpenText, "time left today keeps next-open text empty")
}

func TestComputeStatusAfterClosing(t *testing.T) {
	hours := []models.HourRule{
		mondayRule("09:00", "17:00"),
		{DayOfWeek: 2, IsOpen: true, StartTime: "10:00", EndTime: "16:00"},
	}

	// Monday 18:00, Tuesday is the next open day
	now := time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC)
	st := ComputeStatus(hours, nil, now, time.UTC)

	assert.False(t, st.IsOpenNow)
	assert.Equal(t, "Open today 9:00 AM – 5:00 PM", st.TodayHoursText)
	assert.Equal(t, "Opens tomorrow at 10:00 AM", st.NextOpenText)
}

func TestComputeStatusBoundaries(t *testing.T) {
	hours := []models.HourRule{mondayRule("09:00", "17:00")}

	// Open boundary is inclusive
	atOpen := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	assert.True(t, ComputeStatus(hours, nil, atOpen, time.UTC).IsOpenNow)

	// Close boundary is exclusive
	atClose := time.Date(2024, 1, 8, 17, 0, 0, 0, time.UTC)
	assert.False(t, ComputeStatus(hours, nil, atClose, time.UTC).IsOpenNow)
}

func TestComputeStatusClosureOverridesWeeklyRule(t *testing.T) {
	hours := []models.HourRule{mondayRule("09:00", "17:00")}
	closures := []models.Closure{{Date: "2024-01-08", IsClosed: true, Reason: "holiday"}}

	// Monday 10:00 on the closed date
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	st := ComputeStatus(hours, closures, now, time.UTC)

	assert.False(t, st.IsOpenNow)
	assert.Equal(t, "Closed today", st.TodayHoursText)
	// Only Monday is open weekly, so the scan lands a week ahead.
	assert.Equal(t, "Opens monday at 9:00 AM", st.NextOpenText)
}

func TestComputeStatusClosureSkippedInScan(t *testing.T) {
	hours := []models.HourRule{
		mondayRule("09:00", "17:00"),
		{DayOfWeek: 2, IsOpen: true, StartTime: "10:00", EndTime: "16:00"},
		{DayOfWeek: 3, IsOpen: true, StartTime: "11:00", EndTime: "15:00"},
	}
	closures := []models.Closure{
		{Date: "2024-01-08", IsClosed: true},
		{Date: "2024-01-09", IsClosed: true},
	}

	// Monday and Tuesday both closed; Wednesday wins
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	st := ComputeStatus(hours, closures, now, time.UTC)

	assert.Equal(t, "Opens wednesday at 11:00 AM", st.NextOpenText)
}

func TestComputeStatusNoOpenDays(t *testing.T) {
	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	st := ComputeStatus(nil, nil, now, time.UTC)

	assert.False(t, st.IsOpenNow)
	assert.Equal(t, "Closed today", st.TodayHoursText)
	assert.Equal(t, "Closed", st.NextOpenText)
}

func TestComputeStatusOpenRuleMissingTimes(t *testing.T) {
	hours := []models.HourRule{{DayOfWeek: 1, IsOpen: true}}

	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	st := ComputeStatus(hours, nil, now, time.UTC)

	assert.False(t, st.IsOpenNow)
	assert.Equal(t, "Closed today", st.TodayHoursText)
}

func TestComputeStatusNonClosingClosureIgnored(t *testing.T) {
	hours := []models.HourRule{mondayRule("09:00", "17:00")}
	closures := []models.Closure{{Date: "2024-01-08", IsClosed: false}}

	now := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	st := ComputeStatus(hours, closures, now, time.UTC)

	assert.True(t, st.IsOpenNow)
}

func TestComputeStatusUsesShopLocalCalendar(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-03-11 01:30 UTC is still Sunday 2024-03-10 21:30 in New York,
	// the evening of the spring-forward day.
	now := time.Date(2024, 3, 11, 1, 30, 0, 0, time.UTC)

	hours := []models.HourRule{{DayOfWeek: 0, IsOpen: true, StartTime: "09:00", EndTime: "22:00"}}
	st := ComputeStatus(hours, nil, now, loc)
	assert.True(t, st.IsOpenNow, "local wall clock 21:30 is within 09:00-22:00")

	// A closure keyed to the local date must match even though the UTC
	// date has already rolled over.
	closures := []models.Closure{{Date: "2024-03-10", IsClosed: true}}
	st = ComputeStatus(hours, closures, now, loc)
	assert.False(t, st.IsOpenNow)
	assert.Equal(t, "Closed today", st.TodayHoursText)
}

func TestFormatClock12(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "12:00 AM"},
		{540, "9:00 AM"},
		{720, "12:00 PM"},
		{1020, "5:00 PM"},
		{1439, "11:59 PM"},
		{615, "10:15 AM"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatClock12(tc.minutes))
	}
}

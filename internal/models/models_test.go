package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGuestCount(t *testing.T) {
	assert.NoError(t, ValidateGuestCount(1))
	assert.NoError(t, ValidateGuestCount(2))
	assert.ErrorIs(t, ValidateGuestCount(0), ErrInvalidGuestCount)
	assert.ErrorIs(t, ValidateGuestCount(3), ErrInvalidGuestCount)
	assert.ErrorIs(t, ValidateGuestCount(-1), ErrInvalidGuestCount)
}

func TestWaitlistEntryIsActive(t *testing.T) {
	e := WaitlistEntry{ID: "a"}
	assert.True(t, e.IsActive())

	served := time.Now()
	e.ServedAt = &served
	assert.False(t, e.IsActive())
}

func TestHourRuleValidate(t *testing.T) {
	cases := []struct {
		name string
		rule HourRule
		want error
	}{
		{"valid open day", HourRule{DayOfWeek: 1, IsOpen: true, StartTime: "09:00", EndTime: "17:00"}, nil},
		{"closed day needs no times", HourRule{DayOfWeek: 0, IsOpen: false}, nil},
		{"weekday too high", HourRule{DayOfWeek: 7, IsOpen: false}, ErrInvalidWeekday},
		{"weekday negative", HourRule{DayOfWeek: -1, IsOpen: false}, ErrInvalidWeekday},
		{"end before start", HourRule{DayOfWeek: 1, IsOpen: true, StartTime: "17:00", EndTime: "09:00"}, ErrInvalidTimeRange},
		{"end equals start", HourRule{DayOfWeek: 1, IsOpen: true, StartTime: "09:00", EndTime: "09:00"}, ErrInvalidTimeRange},
		{"bad start clock", HourRule{DayOfWeek: 1, IsOpen: true, StartTime: "9am", EndTime: "17:00"}, ErrInvalidClock},
		{"missing end clock", HourRule{DayOfWeek: 1, IsOpen: true, StartTime: "09:00"}, ErrInvalidClock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	mins, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, mins)

	mins, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, mins)

	mins, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23*60+59, mins)

	for _, bad := range []string{"", "9:00 AM", "25:00", "12:60", "noon"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidClock, "input %q", bad)
	}
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2024-01-08"))
	assert.NoError(t, ValidateDate("2024-02-29"))

	for _, bad := range []string{"", "01-08-2024", "2024-13-01", "2024-02-30", "tomorrow"} {
		assert.ErrorIs(t, ValidateDate(bad), ErrInvalidDate, "input %q", bad)
	}
}

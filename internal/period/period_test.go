package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetree/internal/period"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	type testCase struct {
		name     string
		period   string
		today    time.Time
		wantFrom time.Time
		wantTo   time.Time
	}

	tests := []testCase{
		{
			name:     "WeekMidweek",
			period:   "week",
			today:    time.Date(2024, 5, 15, 17, 30, 0, 0, time.UTC), // Wednesday
			wantFrom: day(2024, 5, 13),
			wantTo:   day(2024, 5, 20),
		},
		{
			name:     "WeekOnSunday",
			period:   "week",
			today:    day(2024, 5, 19),
			wantFrom: day(2024, 5, 13),
			wantTo:   day(2024, 5, 20),
		},
		{
			name:     "WeekOnMonday",
			period:   "week",
			today:    day(2024, 5, 13),
			wantFrom: day(2024, 5, 13),
			wantTo:   day(2024, 5, 20),
		},
		{
			name:     "LastWeekAcrossYear",
			period:   "last_week",
			today:    day(2025, 1, 2), // Thursday
			wantFrom: day(2024, 12, 23),
			wantTo:   day(2024, 12, 30),
		},
		{
			name:     "Month",
			period:   "month",
			today:    day(2024, 2, 29),
			wantFrom: day(2024, 2, 1),
			wantTo:   day(2024, 3, 1),
		},
		{
			name:     "MonthDecemberRollover",
			period:   "month",
			today:    day(2024, 12, 31),
			wantFrom: day(2024, 12, 1),
			wantTo:   day(2025, 1, 1),
		},
		{
			name:     "LastMonthJanuary",
			period:   "last_month",
			today:    day(2025, 1, 10),
			wantFrom: day(2024, 12, 1),
			wantTo:   day(2025, 1, 1),
		},
		{
			name:     "QuarterQ2",
			period:   "quarter",
			today:    day(2024, 5, 15),
			wantFrom: day(2024, 4, 1),
			wantTo:   day(2024, 7, 1),
		},
		{
			name:     "QuarterQ4Rollover",
			period:   "quarter",
			today:    day(2024, 11, 3),
			wantFrom: day(2024, 10, 1),
			wantTo:   day(2025, 1, 1),
		},
		{
			name:     "LastQuarterFromQ1",
			period:   "last_quarter",
			today:    day(2025, 2, 14),
			wantFrom: day(2024, 10, 1),
			wantTo:   day(2025, 1, 1),
		},
		{
			name:     "Year",
			period:   "year",
			today:    day(2024, 7, 4),
			wantFrom: day(2024, 1, 1),
			wantTo:   day(2025, 1, 1),
		},
		{
			name:     "LastYear",
			period:   "last_year",
			today:    day(2024, 1, 1),
			wantFrom: day(2023, 1, 1),
			wantTo:   day(2024, 1, 1),
		},
		{
			name:     "NonUTCTodayIsNormalized",
			period:   "month",
			today:    time.Date(2024, 3, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)), // still Feb 29 in UTC
			wantFrom: day(2024, 2, 1),
			wantTo:   day(2024, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := period.Resolve(tt.period, tt.today)
			require.NoError(t, err)

			assert.Equal(t, tt.wantFrom.Unix(), got.From)
			assert.Equal(t, tt.wantTo.Unix(), got.To)
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	for _, name := range []string{"", "fortnight", "WEEK", "last_"} {
		_, err := period.Resolve(name, day(2024, 1, 1))
		assert.ErrorIs(t, err, period.ErrInvalidPeriod, name)
	}
}

func TestResolve_AllNamesSupported(t *testing.T) {
	for _, name := range period.Names {
		r, err := period.Resolve(string(name), day(2024, 6, 15))
		require.NoError(t, err, name)
		assert.Less(t, r.From, r.To, name)
	}
}

func TestRange_HalfOpen(t *testing.T) {
	r, err := period.Resolve("month", day(2024, 6, 15))
	require.NoError(t, err)

	assert.True(t, r.Contains(r.From))
	assert.False(t, r.Contains(r.To))
	assert.True(t, r.Contains(r.To-1))
}

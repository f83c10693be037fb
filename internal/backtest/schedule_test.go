package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weekdays generates n consecutive business days starting at start.
func weekdays(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := start
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func TestRebalanceDatesDaily(t *testing.T) {
	dates := weekdays(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	rb := RebalanceDates(dates, FrequencyDaily)

	assert.Len(t, rb, 10)
	for _, d := range dates {
		assert.True(t, rb[d])
	}
}

func TestRebalanceDatesWeeklyPicksFirstTradingDayOfWeek(t *testing.T) {
	// 2024-01-01 is a Monday; three full weeks of business days.
	dates := weekdays(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 15)
	rb := RebalanceDates(dates, FrequencyWeekly)

	var picked []time.Time
	for _, d := range dates {
		if rb[d] {
			picked = append(picked, d)
		}
	}
	require.Len(t, picked, 3)
	for _, d := range picked {
		assert.Equal(t, time.Monday, d.Weekday())
	}
}

func TestRebalanceDatesWeeklySkipsMissingMonday(t *testing.T) {
	// Drop the second Monday: the Tuesday becomes that week's
	// rebalance day.
	all := weekdays(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	var dates []time.Time
	holiday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	for _, d := range all {
		if !d.Equal(holiday) {
			dates = append(dates, d)
		}
	}

	rb := RebalanceDates(dates, FrequencyWeekly)
	assert.True(t, rb[time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)])
	assert.False(t, rb[holiday])
}

func TestRebalanceDatesMonthlyPicksFirstTradingDayOfMonth(t *testing.T) {
	dates := weekdays(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 65)
	rb := RebalanceDates(dates, FrequencyMonthly)

	var picked []time.Time
	for _, d := range dates {
		if rb[d] {
			picked = append(picked, d)
		}
	}
	// Jan, Feb, Mar (Jan 1 + 65 weekdays reaches the end of March).
	require.GreaterOrEqual(t, len(picked), 3)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), picked[0])
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), picked[1])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), picked[2])
}

func TestRebalanceDatesFirstDayAlwaysIncluded(t *testing.T) {
	// A range starting mid-month still rebalances on its first day.
	dates := weekdays(time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), 5)
	rb := RebalanceDates(dates, FrequencyMonthly)

	assert.True(t, rb[dates[0]])
}

func TestRebalanceDatesEmptyCalendar(t *testing.T) {
	assert.Empty(t, RebalanceDates(nil, FrequencyDaily))
}

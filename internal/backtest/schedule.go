package backtest

import "time"

// RebalanceDates selects the rebalance days out of the trading
// calendar: every trading day, the first trading day of each ISO week,
// or the first trading day of each calendar month. The first trading
// day of the range is always a rebalance day so the portfolio starts
// invested.
func RebalanceDates(tradingDates []time.Time, freq Frequency) map[time.Time]bool {
	out := make(map[time.Time]bool, len(tradingDates))
	if len(tradingDates) == 0 {
		return out
	}

	switch freq {
	case FrequencyDaily:
		for _, d := range tradingDates {
			out[d] = true
		}
	case FrequencyWeekly:
		lastYear, lastWeek := -1, -1
		for _, d := range tradingDates {
			year, week := d.ISOWeek()
			if year != lastYear || week != lastWeek {
				out[d] = true
				lastYear, lastWeek = year, week
			}
		}
	case FrequencyMonthly:
		lastYear, lastMonth := -1, time.Month(0)
		for _, d := range tradingDates {
			if d.Year() != lastYear || d.Month() != lastMonth {
				out[d] = true
				lastYear, lastMonth = d.Year(), d.Month()
			}
		}
	}

	out[tradingDates[0]] = true
	return out
}

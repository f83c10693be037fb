package indicator

import (
	"math"
	"time"
)

// Thresholds are the per-indicator normalization knobs. Series have very
// different natural volatility (weekly claims vs quarterly GDP), so the
// noise floor for trend calls must be tunable per indicator rather than
// shared.
type Thresholds struct {
	// Noise is the minimum move versus the trailing baseline before the
	// trend is called rising or falling. Zero means any move counts.
	Noise float64 `yaml:"noise"`
	// TrendWindow is how many prior observations form the trend baseline.
	TrendWindow int `yaml:"trend_window"`
	// HighPercentile and LowPercentile bound the status labels.
	HighPercentile float64 `yaml:"high_percentile"`
	LowPercentile  float64 `yaml:"low_percentile"`
	// MinHistory is the observation count below which percentile and
	// trend are undefined.
	MinHistory int `yaml:"min_history"`
}

// DefaultThresholds returns the baseline thresholds used when an
// indicator has no specific override.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Noise:          0,
		TrendWindow:    3,
		HighPercentile: 80,
		LowPercentile:  20,
		MinHistory:     2,
	}
}

// Normalize computes the snapshot of an indicator as of a date, using
// only observations up to and including that date.
func Normalize(ind Indicator, asOf time.Time, th Thresholds) Snapshot {
	if th.MinHistory < 2 {
		th.MinHistory = 2
	}
	if th.TrendWindow < 1 {
		th.TrendWindow = 1
	}

	hist := ind.Series.Through(asOf)
	snap := Snapshot{IndicatorID: ind.ID, AsOf: asOf}

	last, ok := hist.Last()
	if ok {
		snap.Value = last.Value
	}
	if len(hist) < th.MinHistory {
		// Too little history: report the raw value but mark the derived
		// fields not-available instead of fabricating a neutral read.
		snap.Trend = TrendFlat
		snap.Status = StatusNormal
		return snap
	}

	values := hist.Values()
	snap.Percentile = percentileRank(values, last.Value)
	snap.Trend = trendOf(values, th)
	snap.ZScore = zscore(values, last.Value)
	snap.Status = statusOf(snap.Percentile, th)
	snap.Available = true
	return snap
}

// percentileRank ranks v among all values using the average-rank method,
// so tied observations share a percentile and the mapping from value to
// percentile has no discontinuities.
func percentileRank(values []float64, v float64) float64 {
	n := len(values)
	if n < 2 {
		return 50
	}
	below, equal := 0, 0
	for _, x := range values {
		switch {
		case x < v:
			below++
		case x == v:
			equal++
		}
	}
	// Average rank of the tied block, rescaled to [0,100] with the
	// minimum at 0 and the maximum at 100.
	rank := float64(below) + float64(equal-1)/2
	return rank / float64(n-1) * 100
}

// trendOf compares the latest value against the mean of the preceding
// TrendWindow observations.
func trendOf(values []float64, th Thresholds) Trend {
	n := len(values)
	window := th.TrendWindow
	if n-1 < window {
		window = n - 1
	}
	if window < 1 {
		return TrendFlat
	}

	sum := 0.0
	for _, v := range values[n-1-window : n-1] {
		sum += v
	}
	baseline := sum / float64(window)

	diff := values[n-1] - baseline
	switch {
	case diff > th.Noise:
		return TrendRising
	case diff < -th.Noise:
		return TrendFalling
	default:
		return TrendFlat
	}
}

func statusOf(percentile float64, th Thresholds) Status {
	switch {
	case percentile >= th.HighPercentile:
		return StatusHigh
	case percentile <= th.LowPercentile:
		return StatusLow
	default:
		return StatusNormal
	}
}

func zscore(values []float64, v float64) float64 {
	n := float64(len(values))
	mean := 0.0
	for _, x := range values {
		mean += x
	}
	mean /= n

	variance := 0.0
	for _, x := range values {
		variance += (x - mean) * (x - mean)
	}
	variance /= n

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return (v - mean) / std
}

// NormalizeAll snapshots every indicator in the set as of a date,
// applying per-indicator thresholds with a shared default.
func NormalizeAll(inds []Indicator, asOf time.Time, overrides map[string]Thresholds, def Thresholds) map[string]Snapshot {
	out := make(map[string]Snapshot, len(inds))
	for _, ind := range inds {
		th, ok := overrides[ind.ID]
		if !ok {
			th = def
		}
		out[ind.ID] = Normalize(ind, asOf, th)
	}
	return out
}

package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectorrun/sectorrun/internal/domain/series"
)

func monthly(values ...float64) series.Series {
	s := make(series.Series, len(values))
	for i, v := range values {
		s[i] = series.Point{
			Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0),
			Value: v,
		}
	}
	return s
}

func asOfEnd(s series.Series) time.Time {
	return s[len(s)-1].Date
}

func TestNormalizeFallingUnemployment(t *testing.T) {
	s := monthly(5.0, 5.0, 4.8, 4.5, 4.2)
	ind := Indicator{ID: "UNRATE", Series: s}

	snap := Normalize(ind, asOfEnd(s), DefaultThresholds())

	require.True(t, snap.Available)
	assert.Equal(t, 4.2, snap.Value)
	assert.Equal(t, TrendFalling, snap.Trend)
	// The latest value is the historical minimum.
	assert.Equal(t, 0.0, snap.Percentile)
	assert.Equal(t, StatusLow, snap.Status)
	assert.Negative(t, snap.ZScore)
}

func TestNormalizeMaximumHitsHundredthPercentile(t *testing.T) {
	s := monthly(1, 2, 3, 4, 5)
	snap := Normalize(Indicator{ID: "X", Series: s}, asOfEnd(s), DefaultThresholds())

	require.True(t, snap.Available)
	assert.Equal(t, 100.0, snap.Percentile)
	assert.Equal(t, StatusHigh, snap.Status)
	assert.Equal(t, TrendRising, snap.Trend)
}

func TestNormalizeTiesShareAPercentile(t *testing.T) {
	// Latest value 3 ties with one earlier observation; both get the
	// average rank of the tied block.
	s := monthly(1, 2, 3, 5, 3)
	snap := Normalize(Indicator{ID: "X", Series: s}, asOfEnd(s), DefaultThresholds())

	require.True(t, snap.Available)
	// below=2, equal=2, rank = 2 + 0.5 = 2.5, scaled by 4 -> 62.5
	assert.InDelta(t, 62.5, snap.Percentile, 1e-9)
}

func TestNormalizeShortHistoryNotAvailable(t *testing.T) {
	s := monthly(7.5)
	snap := Normalize(Indicator{ID: "X", Series: s}, asOfEnd(s), DefaultThresholds())

	assert.False(t, snap.Available)
	assert.Equal(t, 7.5, snap.Value)
	assert.Equal(t, TrendFlat, snap.Trend)
	assert.Equal(t, StatusNormal, snap.Status)
	assert.Zero(t, snap.Percentile)
}

func TestNormalizeEmptySeriesNotAvailable(t *testing.T) {
	snap := Normalize(Indicator{ID: "X"}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), DefaultThresholds())

	assert.False(t, snap.Available)
	assert.Zero(t, snap.Value)
}

func TestNormalizeIgnoresFutureObservations(t *testing.T) {
	s := monthly(1, 2, 3, 4, 100)
	// As of the fourth observation, the spike is not yet known.
	snap := Normalize(Indicator{ID: "X", Series: s}, s[3].Date, DefaultThresholds())

	require.True(t, snap.Available)
	assert.Equal(t, 4.0, snap.Value)
	assert.Equal(t, 100.0, snap.Percentile)
}

func TestNormalizeNoiseFloorSuppressesTrend(t *testing.T) {
	s := monthly(100, 101, 100, 102)
	th := DefaultThresholds()
	th.Noise = 5

	snap := Normalize(Indicator{ID: "X", Series: s}, asOfEnd(s), th)
	assert.Equal(t, TrendFlat, snap.Trend)

	th.Noise = 0.5
	snap = Normalize(Indicator{ID: "X", Series: s}, asOfEnd(s), th)
	assert.Equal(t, TrendRising, snap.Trend)
}

func TestNormalizeConstantSeries(t *testing.T) {
	s := monthly(3, 3, 3, 3)
	snap := Normalize(Indicator{ID: "X", Series: s}, asOfEnd(s), DefaultThresholds())

	require.True(t, snap.Available)
	assert.Equal(t, TrendFlat, snap.Trend)
	assert.Zero(t, snap.ZScore)
	// All values tie: average rank is the midpoint.
	assert.InDelta(t, 50.0, snap.Percentile, 1e-9)
	assert.Equal(t, StatusNormal, snap.Status)
}

func TestNormalizeAllAppliesOverrides(t *testing.T) {
	short := monthly(1, 2, 3)
	inds := []Indicator{
		{ID: "A", Series: short},
		{ID: "B", Series: short},
	}
	overrides := map[string]Thresholds{
		"B": {TrendWindow: 2, HighPercentile: 80, LowPercentile: 20, MinHistory: 5},
	}

	snaps := NormalizeAll(inds, asOfEnd(short), overrides, DefaultThresholds())

	assert.True(t, snaps["A"].Available)
	assert.False(t, snaps["B"].Available, "override raises MinHistory above the data")
}

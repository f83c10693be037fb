package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectorrun/sectorrun/internal/domain/cycle"
	"github.com/sectorrun/sectorrun/internal/domain/sectors"
)

func trending(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestMomentumScoreNeutralOnShortHistory(t *testing.T) {
	cfg := DefaultMomentumConfig()
	assert.Equal(t, 50.0, MomentumScore(trending(10, 100, 1), cfg))
	assert.Equal(t, 50.0, MomentumScore(nil, cfg))
}

func TestMomentumScoreUptrendAboveNeutral(t *testing.T) {
	cfg := DefaultMomentumConfig()
	score := MomentumScore(trending(120, 100, 0.5), cfg)

	assert.Greater(t, score, 60.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestMomentumScoreDowntrendBelowNeutral(t *testing.T) {
	cfg := DefaultMomentumConfig()
	score := MomentumScore(trending(120, 200, -0.5), cfg)

	assert.Less(t, score, 40.0)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestMomentumScoreFlatSeriesNearNeutral(t *testing.T) {
	cfg := DefaultMomentumConfig()
	flat := make([]float64, 120)
	for i := range flat {
		flat[i] = 100
	}
	assert.InDelta(t, 50.0, MomentumScore(flat, cfg), 1.0)
}

func TestMomentumScoreAlwaysInRange(t *testing.T) {
	cfg := DefaultMomentumConfig()
	// Extreme melt-up and crash both stay on the scale.
	assert.LessOrEqual(t, MomentumScore(trending(120, 10, 10), cfg), 100.0)
	crash := trending(120, 1300, -10)
	score := MomentumScore(crash, cfg)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.Less(t, score, 50.0)
}

func TestCycleScoresScaleToHundred(t *testing.T) {
	scores := CycleScores(cycle.PhaseEarlyCycle)

	assert.Len(t, scores, 11)
	for symbol, v := range scores {
		assert.GreaterOrEqual(t, v, 0.0, symbol)
		assert.LessOrEqual(t, v, 100.0, symbol)
	}
	// Financials historically lead early cycle; staples lag.
	assert.Greater(t, scores["XLF"], scores["XLP"])
}

func TestCycleScoresRecessionFavorsDefensives(t *testing.T) {
	scores := CycleScores(cycle.PhaseRecession)

	assert.Greater(t, scores["XLP"], scores["XLY"])
	assert.Greater(t, scores["XLU"], scores["XLF"])
	assert.Greater(t, scores["XLV"], scores["XLI"])
}

func TestCycleScoresUnknownPhaseFallsBackToMidCycle(t *testing.T) {
	assert.Equal(t, CycleScores(cycle.PhaseMidCycle), CycleScores("peak"))
}

func TestCycleScoresCoverUniverse(t *testing.T) {
	for _, phase := range cycle.Phases {
		scores := CycleScores(phase)
		for _, symbol := range sectors.Symbols() {
			_, ok := scores[symbol]
			assert.True(t, ok, "%s missing in %s", symbol, phase)
		}
	}
}

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectorrun/sectorrun/internal/domain/indicator"
)

func availSnap(value, percentile, z float64) indicator.Snapshot {
	return indicator.Snapshot{Value: value, Percentile: percentile, ZScore: z, Available: true}
}

func TestDeriveConditionsPercentileCentered(t *testing.T) {
	snaps := map[string]indicator.Snapshot{
		CondInterestRates:      availSnap(5.0, 90, 1.8),
		CondConsumerConfidence: availSnap(60, 10, -1.5),
	}
	conds := DeriveConditions(snaps)

	assert.InDelta(t, 0.8, conds[CondInterestRates], 1e-9)
	assert.InDelta(t, -0.8, conds[CondConsumerConfidence], 1e-9)
}

func TestDeriveConditionsSpreadScaling(t *testing.T) {
	snaps := map[string]indicator.Snapshot{
		CondYieldCurve:    availSnap(1.0, 50, 0),
		CondCreditSpreads: availSnap(3.0, 50, 0),
	}
	conds := DeriveConditions(snaps)

	assert.InDelta(t, 0.5, conds[CondYieldCurve], 1e-9)
	assert.InDelta(t, -0.5, conds[CondCreditSpreads], 1e-9)
}

func TestDeriveConditionsStressInverted(t *testing.T) {
	snaps := map[string]indicator.Snapshot{
		CondFinancialStress: availSnap(1.0, 50, 0),
	}
	conds := DeriveConditions(snaps)

	// Stress up means the condition reads negative.
	assert.InDelta(t, -0.5, conds[CondFinancialStress], 1e-9)
}

func TestDeriveConditionsClampsExtremes(t *testing.T) {
	snaps := map[string]indicator.Snapshot{
		CondYieldCurve: availSnap(5.0, 50, 0),
		CondGDPGrowth:  availSnap(0, 50, 8),
	}
	conds := DeriveConditions(snaps)

	assert.Equal(t, 1.0, conds[CondYieldCurve])
	assert.Equal(t, 1.0, conds[CondGDPGrowth])
}

func TestDeriveConditionsSkipsNotAvailable(t *testing.T) {
	snaps := map[string]indicator.Snapshot{
		CondInterestRates: {Value: 5, Percentile: 90, Available: false},
	}
	conds := DeriveConditions(snaps)

	_, ok := conds[CondInterestRates]
	assert.False(t, ok)
}

func TestMacroSensitivityScoreDirectionality(t *testing.T) {
	// Rising rates hurt utilities (sensitivity -0.8) and help
	// financials (+0.8).
	conds := map[string]float64{CondInterestRates: 1.0}

	utilities := MacroSensitivityScore("XLU", conds)
	financials := MacroSensitivityScore("XLF", conds)

	assert.InDelta(t, 30.0, utilities, 1e-9)
	assert.InDelta(t, 70.0, financials, 1e-9)
}

func TestMacroSensitivityScoreNeutralWithoutConditions(t *testing.T) {
	assert.Equal(t, 50.0, MacroSensitivityScore("XLK", nil))
}

func TestMacroSensitivityScoreUnknownSymbol(t *testing.T) {
	assert.Equal(t, 50.0, MacroSensitivityScore("SPY", map[string]float64{CondGDPGrowth: 1}))
}

func TestMacroSensitivityScoreClamped(t *testing.T) {
	conds := map[string]float64{
		CondInterestRates: 1, CondYieldCurve: 1, CondGDPGrowth: 1,
		CondCreditSpreads: -1, CondHousing: 1,
	}
	score := MacroSensitivityScore("XLF", conds)

	assert.LessOrEqual(t, score, 100.0)
	assert.GreaterOrEqual(t, score, 0.0)
}

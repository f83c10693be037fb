package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectorrun/sectorrun/internal/domain/indicator"
)

var asOf = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func snap(value float64, trend indicator.Trend) indicator.Snapshot {
	return indicator.Snapshot{Value: value, Trend: trend, Available: true}
}

func TestClassifyRecessionSignals(t *testing.T) {
	c := NewClassifier(DefaultRules())
	snaps := map[string]indicator.Snapshot{
		SignalYieldCurve:   snap(-0.4, indicator.TrendFalling),
		SignalUnemployment: snap(4.5, indicator.TrendRising),
		SignalCreditSpread: snap(3.5, indicator.TrendRising),
	}

	a := c.Classify(snaps, asOf, "")

	assert.Equal(t, PhaseRecession, a.Phase)
	assert.Greater(t, a.Confidence, 0.5)
	assert.LessOrEqual(t, a.Confidence, 1.0)
	assert.Len(t, a.Signals, 3)
}

func TestClassifyEarlyCycleSignals(t *testing.T) {
	c := NewClassifier(DefaultRules())
	snaps := map[string]indicator.Snapshot{
		SignalYieldCurve:   snap(2.0, indicator.TrendRising),
		SignalUnemployment: snap(6.0, indicator.TrendFalling),
		SignalLeadingIndex: snap(1.2, indicator.TrendRising),
	}

	a := c.Classify(snaps, asOf, "")

	assert.Equal(t, PhaseEarlyCycle, a.Phase)
	assert.Positive(t, a.Confidence)
}

func TestClassifyMidCycleOnBenignReadings(t *testing.T) {
	c := NewClassifier(DefaultRules())
	snaps := map[string]indicator.Snapshot{
		SignalYieldCurve:   snap(1.0, indicator.TrendFlat),
		SignalUnemployment: snap(4.0, indicator.TrendFlat),
		SignalCreditSpread: snap(1.2, indicator.TrendFlat),
	}

	a := c.Classify(snaps, asOf, "")

	assert.Equal(t, PhaseMidCycle, a.Phase)
}

func TestClassifyZeroUsableSignalsFallsBack(t *testing.T) {
	c := NewClassifier(DefaultRules())

	a := c.Classify(nil, asOf, "")
	assert.Equal(t, PhaseMidCycle, a.Phase)
	assert.Zero(t, a.Confidence)

	// A not-available snapshot counts as unusable.
	a = c.Classify(map[string]indicator.Snapshot{
		SignalYieldCurve: {Value: -1, Available: false},
	}, asOf, "")
	assert.Equal(t, PhaseMidCycle, a.Phase)
	assert.Zero(t, a.Confidence)
}

func TestClassifyZeroSignalsPrefersLastKnown(t *testing.T) {
	c := NewClassifier(DefaultRules())

	a := c.Classify(nil, asOf, PhaseLateCycle)
	assert.Equal(t, PhaseLateCycle, a.Phase)
	assert.Zero(t, a.Confidence)
}

func TestClassifyConfidenceIsVoteShare(t *testing.T) {
	c := NewClassifier(DefaultRules())
	// Single unambiguous signal: flat curve votes late-cycle only.
	snaps := map[string]indicator.Snapshot{
		SignalYieldCurve: snap(0.2, indicator.TrendFlat),
	}

	a := c.Classify(snaps, asOf, "")

	assert.Equal(t, PhaseLateCycle, a.Phase)
	assert.InDelta(t, 1.0, a.Confidence, 1e-9)
}

func TestClassifyConfidenceBoundedWithConflict(t *testing.T) {
	c := NewClassifier(DefaultRules())
	// Conflicting reads keep confidence strictly below 1.
	snaps := map[string]indicator.Snapshot{
		SignalYieldCurve:   snap(2.0, indicator.TrendRising), // early
		SignalUnemployment: snap(4.0, indicator.TrendRising), // recession
		SignalInflation:    snap(3.1, indicator.TrendRising), // late
	}

	a := c.Classify(snaps, asOf, "")

	assert.Less(t, a.Confidence, 1.0)
	assert.Positive(t, a.Confidence)
	require.True(t, a.Phase.Valid())
}

func TestClassifyTieBreaksInCanonicalOrder(t *testing.T) {
	c := NewClassifier(DefaultRules())
	// Steep curve (early strong) against rising unemployment
	// (recession strong + late weak): early and recession tie at 2.0,
	// and the canonical order puts early-cycle first.
	snaps := map[string]indicator.Snapshot{
		SignalYieldCurve:   snap(2.0, indicator.TrendFlat),
		SignalUnemployment: snap(5.0, indicator.TrendRising),
	}

	a := c.Classify(snaps, asOf, "")

	assert.Equal(t, PhaseEarlyCycle, a.Phase)
}

func TestNewClassifierRejectsInvalidFallback(t *testing.T) {
	var r Rules
	r.FallbackPhase = "expansion"
	c := NewClassifier(r)

	a := c.Classify(nil, asOf, "")
	assert.Equal(t, PhaseMidCycle, a.Phase)
}

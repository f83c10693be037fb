package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectorrun/sectorrun/internal/domain/cycle"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 0.40, cfg.Weights.ML, 1e-12)
	assert.InDelta(t, 0.25, cfg.Weights.Cycle, 1e-12)
	assert.InDelta(t, 0.20, cfg.Weights.Momentum, 1e-12)
	assert.InDelta(t, 0.15, cfg.Weights.MacroSensitivity, 1e-12)
	assert.NotEmpty(t, cfg.Indicators)
	assert.Equal(t, 252, cfg.Sensitivity.LookbackDays)
}

func TestDefaultCatalogWiresCycleSignals(t *testing.T) {
	cfg := Default()

	spread, ok := cfg.IndicatorByID("T10Y2Y")
	require.True(t, ok)
	assert.Equal(t, cycle.SignalYieldCurve, spread.CycleSignal)

	unrate, ok := cfg.IndicatorByID("UNRATE")
	require.True(t, ok)
	assert.Equal(t, cycle.SignalUnemployment, unrate.CycleSignal)

	_, ok = cfg.IndicatorByID("NOPE")
	assert.False(t, ok)
}

func TestLoadPartialFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectorrun.yaml")
	body := `
sensitivity:
  lookback_days: 126
alerts:
  warn_percentile: 70
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 126, cfg.Sensitivity.LookbackDays)
	assert.Equal(t, 70.0, cfg.Alerts.WarnPercentile)
	// Untouched sections keep the defaults.
	assert.InDelta(t, 0.40, cfg.Weights.ML, 1e-12)
	assert.NotEmpty(t, cfg.Indicators)
}

func TestLoadRejectsInvalidWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	body := `
weights:
  ml_score: 0.9
  cycle_score: 0.9
  momentum_score: 0.0
  macro_sensitivity_score: 0.0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsDuplicateIndicators(t *testing.T) {
	cfg := Default()
	cfg.Indicators = append(cfg.Indicators, cfg.Indicators[0])

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadCutoffs(t *testing.T) {
	cfg := Default()
	cfg.Cutoffs.Overweight = 0.7
	cfg.Cutoffs.Underweight = 0.7

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsShortLookback(t *testing.T) {
	cfg := Default()
	cfg.Sensitivity.LookbackDays = 1

	assert.Error(t, cfg.Validate())
}

func TestThresholdOverridesOnlyExplicit(t *testing.T) {
	cfg := Default()
	overrides := cfg.ThresholdOverrides()

	// Weekly claims carry a custom noise floor; most series do not.
	icsa, ok := overrides["ICSA"]
	require.True(t, ok)
	assert.Equal(t, 5000.0, icsa.Noise)

	_, ok = overrides["UNRATE"]
	assert.False(t, ok)
}

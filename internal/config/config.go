package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sectorrun/sectorrun/internal/domain/cycle"
	"github.com/sectorrun/sectorrun/internal/domain/indicator"
	"github.com/sectorrun/sectorrun/internal/domain/scoring"
)

// IndicatorSpec declares one tracked macro series: identity, the cycle
// signal role and macro condition role it feeds (if any), and optional
// normalization overrides.
type IndicatorSpec struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	Category    indicator.Category    `yaml:"category"`
	Frequency   string                `yaml:"frequency"`
	CycleSignal string                `yaml:"cycle_signal,omitempty"`
	Condition   string                `yaml:"condition,omitempty"`
	Thresholds  *indicator.Thresholds `yaml:"thresholds,omitempty"`
}

// SensitivityConfig tunes the co-movement estimator.
type SensitivityConfig struct {
	LookbackDays int `yaml:"lookback_days"`
	MinSamples   int `yaml:"min_samples"`
}

// BacktestConfig holds backtest defaults not specified per request.
type BacktestConfig struct {
	RiskFreeRate float64 `yaml:"risk_free_rate"`
}

// AlertConfig bounds the dashboard percentile alerts.
type AlertConfig struct {
	WarnPercentile     float64 `yaml:"warn_percentile"`
	CriticalPercentile float64 `yaml:"critical_percentile"`
}

// Config is the full engine configuration. Every threshold that encodes
// a domain judgment call (cycle rules, noise floors, recommendation
// cutoffs) is here rather than hard-coded.
type Config struct {
	Weights           scoring.Weights        `yaml:"weights"`
	Cutoffs           scoring.Cutoffs        `yaml:"cutoffs"`
	Momentum          scoring.MomentumConfig `yaml:"momentum"`
	CycleRules        cycle.Rules            `yaml:"cycle_rules"`
	Sensitivity       SensitivityConfig      `yaml:"sensitivity"`
	Backtest          BacktestConfig         `yaml:"backtest"`
	Alerts            AlertConfig            `yaml:"alerts"`
	DefaultThresholds indicator.Thresholds   `yaml:"default_thresholds"`
	Indicators        []IndicatorSpec        `yaml:"indicators"`
}

// Default returns the built-in configuration: the production weights,
// the FRED indicator catalog, and baseline thresholds.
func Default() *Config {
	return &Config{
		Weights:           scoring.DefaultWeights(),
		Cutoffs:           scoring.DefaultCutoffs(),
		Momentum:          scoring.DefaultMomentumConfig(),
		CycleRules:        cycle.DefaultRules(),
		Sensitivity:       SensitivityConfig{LookbackDays: 252, MinSamples: 20},
		Backtest:          BacktestConfig{RiskFreeRate: 0},
		Alerts:            AlertConfig{WarnPercentile: 80, CriticalPercentile: 90},
		DefaultThresholds: indicator.DefaultThresholds(),
		Indicators:        defaultIndicators(),
	}
}

// Load reads configuration from a YAML file, starting from the defaults
// so partial files only override what they name.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine must not run with.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Cutoffs.Overweight < 0 || c.Cutoffs.Underweight < 0 ||
		c.Cutoffs.Overweight+c.Cutoffs.Underweight > 1 {
		return fmt.Errorf("recommendation cutoffs must be non-negative fractions summing to at most 1")
	}
	if c.Sensitivity.LookbackDays < 2 {
		return fmt.Errorf("sensitivity lookback must be at least 2 days")
	}
	seen := make(map[string]bool, len(c.Indicators))
	for _, spec := range c.Indicators {
		if spec.ID == "" {
			return fmt.Errorf("indicator spec requires an id")
		}
		if seen[spec.ID] {
			return fmt.Errorf("duplicate indicator id %s", spec.ID)
		}
		seen[spec.ID] = true
	}
	return nil
}

// ThresholdOverrides collects per-indicator threshold overrides keyed
// by indicator id.
func (c *Config) ThresholdOverrides() map[string]indicator.Thresholds {
	out := make(map[string]indicator.Thresholds)
	for _, spec := range c.Indicators {
		if spec.Thresholds != nil {
			out[spec.ID] = *spec.Thresholds
		}
	}
	return out
}

// IndicatorByID returns the catalog entry for an indicator id.
func (c *Config) IndicatorByID(id string) (IndicatorSpec, bool) {
	for _, spec := range c.Indicators {
		if spec.ID == id {
			return spec, true
		}
	}
	return IndicatorSpec{}, false
}

// defaultIndicators is the tracked FRED catalog with its role wiring.
func defaultIndicators() []IndicatorSpec {
	return []IndicatorSpec{
		// Growth
		{ID: "GDPC1", Name: "Real GDP", Category: indicator.CategoryGrowth, Frequency: "quarterly"},
		{ID: "INDPRO", Name: "Industrial Production", Category: indicator.CategoryGrowth, Frequency: "monthly",
			CycleSignal: cycle.SignalIndustrialProduction, Condition: scoring.CondIndustrialProduction},
		{ID: "TCU", Name: "Capacity Utilization", Category: indicator.CategoryGrowth, Frequency: "monthly",
			Condition: scoring.CondCapacityUtilization},
		{ID: "RSXFS", Name: "Retail Sales Ex Food Services", Category: indicator.CategoryGrowth, Frequency: "monthly",
			Condition: scoring.CondRetailSales},
		{ID: "DGORDER", Name: "Durable Goods Orders", Category: indicator.CategoryGrowth, Frequency: "monthly",
			Condition: scoring.CondDurableGoods},
		{ID: "USSLIND", Name: "Leading Index", Category: indicator.CategoryGrowth, Frequency: "monthly",
			CycleSignal: cycle.SignalLeadingIndex, Condition: scoring.CondGDPGrowth},

		// Labor
		{ID: "UNRATE", Name: "Unemployment Rate", Category: indicator.CategoryLabor, Frequency: "monthly",
			CycleSignal: cycle.SignalUnemployment, Condition: scoring.CondUnemployment},
		{ID: "PAYEMS", Name: "Total Nonfarm Payrolls", Category: indicator.CategoryLabor, Frequency: "monthly"},
		{ID: "ICSA", Name: "Initial Jobless Claims", Category: indicator.CategoryLabor, Frequency: "weekly",
			Thresholds: &indicator.Thresholds{Noise: 5000, TrendWindow: 4, HighPercentile: 80, LowPercentile: 20, MinHistory: 8}},

		// Inflation
		{ID: "CPIAUCSL", Name: "CPI All Items", Category: indicator.CategoryInflation, Frequency: "monthly",
			CycleSignal: cycle.SignalInflation, Condition: scoring.CondInflation},
		{ID: "PCEPI", Name: "PCE Price Index", Category: indicator.CategoryInflation, Frequency: "monthly"},
		{ID: "DCOILWTICO", Name: "WTI Crude Oil", Category: indicator.CategoryInflation, Frequency: "daily",
			Condition: scoring.CondOilPrices},

		// Rates
		{ID: "FEDFUNDS", Name: "Federal Funds Rate", Category: indicator.CategoryRates, Frequency: "monthly"},
		{ID: "DGS10", Name: "10-Year Treasury", Category: indicator.CategoryRates, Frequency: "daily",
			Condition: scoring.CondInterestRates},
		{ID: "T10Y2Y", Name: "10Y-2Y Spread", Category: indicator.CategoryRates, Frequency: "daily",
			CycleSignal: cycle.SignalYieldCurve, Condition: scoring.CondYieldCurve},
		{ID: "BAA10Y", Name: "Corporate Bond Spread", Category: indicator.CategoryRates, Frequency: "daily",
			CycleSignal: cycle.SignalCreditSpread, Condition: scoring.CondCreditSpreads},

		// Sentiment
		{ID: "UMCSENT", Name: "Consumer Sentiment", Category: indicator.CategorySentiment, Frequency: "monthly",
			Condition: scoring.CondConsumerConfidence},

		// Housing
		{ID: "HOUST", Name: "Housing Starts", Category: indicator.CategoryHousing, Frequency: "monthly",
			Condition: scoring.CondHousing},
		{ID: "PERMIT", Name: "Building Permits", Category: indicator.CategoryHousing, Frequency: "monthly"},

		// Financial conditions
		{ID: "NFCI", Name: "Financial Conditions Index", Category: indicator.CategoryRates, Frequency: "weekly",
			Condition: scoring.CondFinancialConditions},
		{ID: "STLFSI4", Name: "Financial Stress Index", Category: indicator.CategoryRates, Frequency: "weekly",
			Condition: scoring.CondFinancialStress},
	}
}

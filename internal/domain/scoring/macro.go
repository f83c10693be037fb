package scoring

import (
	"github.com/sectorrun/sectorrun/internal/domain/indicator"
	"github.com/sectorrun/sectorrun/internal/domain/sectors"
)

// Macro condition roles consumed by the sensitivity score. These name
// economic conditions, not indicator IDs; the engine maps concrete
// series onto them.
const (
	CondInterestRates         = "interest_rates"
	CondGDPGrowth             = "gdp_growth"
	CondYieldCurve            = "yield_curve"
	CondCreditSpreads         = "credit_spreads"
	CondConsumerConfidence    = "consumer_confidence"
	CondOilPrices             = "oil_prices"
	CondFinancialStress       = "financial_stress"
	CondFinancialConditions   = "financial_conditions"
	CondIndustrialProduction  = "industrial_production"
	CondUnemployment          = "unemployment"
	CondInflation             = "inflation"
	CondHousing               = "housing"
	CondRetailSales           = "retail_sales"
	CondDurableGoods          = "durable_goods"
	CondCapacityUtilization   = "capacity_utilization"
)

// DeriveConditions turns normalized indicator snapshots into macro
// conditions on a -1..+1 scale, keyed by condition role. Snapshots
// marked not-available contribute nothing.
//
// Level-style readings (rates, confidence, unemployment, inflation,
// housing) are centered on their own percentile history; spread-style
// readings (yield curve, credit spreads, stress) use the raw value with
// documented scale factors; growth-style readings (GDP proxy, oil,
// industrial production, retail, durables, capacity) use the z-score of
// the current level against history.
func DeriveConditions(snaps map[string]indicator.Snapshot) map[string]float64 {
	conditions := make(map[string]float64)

	fromPercentile := func(role string) {
		if s, ok := snaps[role]; ok && s.Available {
			conditions[role] = (s.Percentile - 50) / 50
		}
	}
	fromZScore := func(role string) {
		if s, ok := snaps[role]; ok && s.Available {
			conditions[role] = clampF(s.ZScore/2, -1, 1)
		}
	}

	fromPercentile(CondInterestRates)
	fromPercentile(CondConsumerConfidence)
	fromPercentile(CondUnemployment)
	fromPercentile(CondInflation)
	fromPercentile(CondHousing)

	fromZScore(CondGDPGrowth)
	fromZScore(CondOilPrices)
	fromZScore(CondIndustrialProduction)
	fromZScore(CondRetailSales)
	fromZScore(CondDurableGoods)
	fromZScore(CondCapacityUtilization)

	// A 10Y-2Y spread of +2pp reads as fully steep, -2pp fully inverted.
	if s, ok := snaps[CondYieldCurve]; ok && s.Available {
		conditions[CondYieldCurve] = clampF(s.Value/2, -1, 1)
	}
	// Corporate spreads around 2pp are neutral; wider is negative.
	if s, ok := snaps[CondCreditSpreads]; ok && s.Available {
		conditions[CondCreditSpreads] = clampF((2-s.Value)/2, -1, 1)
	}
	// Stress indexes are centered at 0; positive readings mean stress,
	// so the condition is inverted (stress up = condition down).
	if s, ok := snaps[CondFinancialStress]; ok && s.Available {
		conditions[CondFinancialStress] = -clampF(s.Value, -2, 2) / 2
	}
	if s, ok := snaps[CondFinancialConditions]; ok && s.Available {
		conditions[CondFinancialConditions] = -clampF(s.Value, -2, 2) / 2
	}

	return conditions
}

// MacroSensitivityScore scores one sector against the current macro
// conditions using its static sensitivity profile: base 50, each
// matching factor moving the score by up to 25 points times the
// sensitivity. The result is on the [0,100] scale.
func MacroSensitivityScore(symbol string, conditions map[string]float64) float64 {
	profile, ok := sectors.MacroSensitivity[symbol]
	if !ok {
		return 50
	}

	score := 50.0
	for factor, sens := range profile {
		if cond, ok := conditions[factor]; ok {
			score += sens * cond * 25
		}
	}
	return clampF(score, 0, 100)
}

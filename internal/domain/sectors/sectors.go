package sectors

import (
	"sort"

	"github.com/sectorrun/sectorrun/internal/domain/cycle"
)

// Sector is one of the 11 GICS sector ETFs. PreferredPhase is a
// reference attribute describing where the sector historically leads;
// the scorer uses the full PhaseScores table, not this tag.
type Sector struct {
	Symbol         string      `json:"symbol"`
	Name           string      `json:"name"`
	FullName       string      `json:"full_name"`
	PreferredPhase cycle.Phase `json:"preferred_phase"`
}

// BenchmarkSymbol is the broad-market proxy used by the backtester.
const BenchmarkSymbol = "SPY"

var universe = []Sector{
	{Symbol: "XLB", Name: "Materials", FullName: "Materials Select Sector SPDR", PreferredPhase: cycle.PhaseLateCycle},
	{Symbol: "XLC", Name: "Communication Services", FullName: "Communication Services Select Sector SPDR", PreferredPhase: cycle.PhaseMidCycle},
	{Symbol: "XLE", Name: "Energy", FullName: "Energy Select Sector SPDR", PreferredPhase: cycle.PhaseLateCycle},
	{Symbol: "XLF", Name: "Financials", FullName: "Financial Select Sector SPDR", PreferredPhase: cycle.PhaseEarlyCycle},
	{Symbol: "XLI", Name: "Industrials", FullName: "Industrial Select Sector SPDR", PreferredPhase: cycle.PhaseEarlyCycle},
	{Symbol: "XLK", Name: "Technology", FullName: "Technology Select Sector SPDR", PreferredPhase: cycle.PhaseMidCycle},
	{Symbol: "XLP", Name: "Consumer Staples", FullName: "Consumer Staples Select Sector SPDR", PreferredPhase: cycle.PhaseRecession},
	{Symbol: "XLRE", Name: "Real Estate", FullName: "Real Estate Select Sector SPDR", PreferredPhase: cycle.PhaseEarlyCycle},
	{Symbol: "XLU", Name: "Utilities", FullName: "Utilities Select Sector SPDR", PreferredPhase: cycle.PhaseRecession},
	{Symbol: "XLV", Name: "Healthcare", FullName: "Health Care Select Sector SPDR", PreferredPhase: cycle.PhaseRecession},
	{Symbol: "XLY", Name: "Consumer Discretionary", FullName: "Consumer Discretionary Select Sector SPDR", PreferredPhase: cycle.PhaseEarlyCycle},
}

// Universe returns the fixed 11-sector set, ordered by symbol.
func Universe() []Sector {
	out := make([]Sector, len(universe))
	copy(out, universe)
	return out
}

// Symbols returns the sector symbols in ascending order.
func Symbols() []string {
	out := make([]string, len(universe))
	for i, s := range universe {
		out[i] = s.Symbol
	}
	sort.Strings(out)
	return out
}

// Lookup returns the sector for a symbol.
func Lookup(symbol string) (Sector, bool) {
	for _, s := range universe {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return Sector{}, false
}

// PhaseScores maps each cycle phase to historical sector preference on
// a 0-1 scale, following the Fidelity sector rotation research.
var PhaseScores = map[cycle.Phase]map[string]float64{
	cycle.PhaseEarlyCycle: {
		"XLF": 0.90, "XLY": 0.85, "XLI": 0.80, "XLRE": 0.75, "XLB": 0.70,
		"XLK": 0.60, "XLC": 0.55, "XLE": 0.50, "XLV": 0.40, "XLP": 0.35, "XLU": 0.30,
	},
	cycle.PhaseMidCycle: {
		"XLK": 0.90, "XLC": 0.85, "XLI": 0.75, "XLF": 0.70, "XLY": 0.65,
		"XLB": 0.60, "XLE": 0.55, "XLRE": 0.50, "XLV": 0.45, "XLP": 0.40, "XLU": 0.35,
	},
	cycle.PhaseLateCycle: {
		"XLE": 0.90, "XLB": 0.85, "XLV": 0.70, "XLI": 0.65, "XLK": 0.60,
		"XLP": 0.55, "XLU": 0.50, "XLC": 0.45, "XLF": 0.40, "XLY": 0.35, "XLRE": 0.30,
	},
	cycle.PhaseRecession: {
		"XLV": 0.90, "XLP": 0.85, "XLU": 0.80, "XLC": 0.55, "XLK": 0.50,
		"XLRE": 0.45, "XLI": 0.40, "XLB": 0.35, "XLE": 0.30, "XLF": 0.25, "XLY": 0.20,
	},
}

// MacroSensitivity maps each sector to its response to macro factor
// moves, on a -1..+1 scale. Positive means the sector benefits when the
// factor rises.
var MacroSensitivity = map[string]map[string]float64{
	"XLK": {
		"interest_rates": -0.6, "gdp_growth": 0.7, "consumer_confidence": 0.6,
		"yield_curve": 0.3, "financial_conditions": -0.5,
	},
	"XLV": {
		"gdp_growth": 0.1, "interest_rates": -0.2, "unemployment": 0.3, "financial_stress": 0.4,
	},
	"XLF": {
		"interest_rates": 0.8, "yield_curve": 0.9, "gdp_growth": 0.6,
		"credit_spreads": -0.7, "housing": 0.5,
	},
	"XLY": {
		"consumer_confidence": 0.8, "unemployment": -0.7, "gdp_growth": 0.7, "retail_sales": 0.6,
	},
	"XLP": {
		"gdp_growth": 0.1, "unemployment": 0.4, "inflation": -0.3, "financial_stress": 0.5,
	},
	"XLE": {
		"oil_prices": 0.9, "gdp_growth": 0.4, "inflation": 0.5, "industrial_production": 0.6,
	},
	"XLI": {
		"gdp_growth": 0.7, "industrial_production": 0.8, "durable_goods": 0.7, "capacity_utilization": 0.6,
	},
	"XLB": {
		"gdp_growth": 0.6, "inflation": 0.5, "industrial_production": 0.7, "capacity_utilization": 0.6,
	},
	"XLU": {
		"interest_rates": -0.8, "yield_curve": -0.5, "financial_stress": 0.6, "unemployment": 0.3,
	},
	"XLRE": {
		"interest_rates": -0.8, "housing": 0.7, "gdp_growth": 0.4, "credit_spreads": -0.5,
	},
	"XLC": {
		"gdp_growth": 0.5, "consumer_confidence": 0.5, "interest_rates": -0.4,
	},
}

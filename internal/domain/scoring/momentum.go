package scoring

import (
	"github.com/sectorrun/sectorrun/internal/domain/indicators"
)

// MomentumConfig tunes the technical momentum sub-score.
type MomentumConfig struct {
	RSIPeriod    int     `yaml:"rsi_period"`
	SMAPeriod    int     `yaml:"sma_period"`
	ReturnDays   int     `yaml:"return_days"`
	RSIWeight    float64 `yaml:"rsi_weight"`
	SMAWeight    float64 `yaml:"sma_weight"`
	ReturnWeight float64 `yaml:"return_weight"`
}

// DefaultMomentumConfig blends RSI-14 (dampened), price versus SMA-50,
// and the 3-month return.
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		RSIPeriod:    14,
		SMAPeriod:    50,
		ReturnDays:   63, // ~3 months of trading days
		RSIWeight:    0.30,
		SMAWeight:    0.35,
		ReturnWeight: 0.35,
	}
}

// MomentumScore derives the technical momentum sub-score on the [0,100]
// scale from a sector's adjusted close history. With less history than
// the SMA period the score is a neutral 50: momentum is genuinely
// unknown, and a neutral read keeps a young series from dominating the
// cross-section either way.
func MomentumScore(prices []float64, cfg MomentumConfig) float64 {
	if len(prices) < cfg.SMAPeriod {
		return 50
	}

	rsi := indicators.RSI(prices, cfg.RSIPeriod)
	// Dampen RSI so overbought/oversold extremes move the score by at
	// most 25 points.
	rsiScore := 50 + (rsi.Value-50)*0.5

	maScore := 50.0
	if sma, ok := indicators.SMA(prices, cfg.SMAPeriod); ok && sma != 0 {
		pctVsMA := (prices[len(prices)-1]/sma - 1) * 100
		maScore = 50 + clampF(pctVsMA*5, -30, 30)
	}

	returnScore := 50.0
	if roc, ok := indicators.RateOfChange(prices, cfg.ReturnDays); ok {
		returnScore = 50 + clampF(roc*2, -40, 40)
	}

	score := rsiScore*cfg.RSIWeight + maScore*cfg.SMAWeight + returnScore*cfg.ReturnWeight
	return clampF(score, 0, 100)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

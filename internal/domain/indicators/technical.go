package indicators

import "math"

// RSIResult carries an RSI reading with validity info, so callers can
// tell a neutral reading from an undefined one.
type RSIResult struct {
	Value     float64 `json:"value"`
	Period    int     `json:"period"`
	IsValid   bool    `json:"is_valid"`
	DataCount int     `json:"data_count"`
}

// RSI computes the Relative Strength Index with Wilder smoothing. With
// fewer than period+1 prices the result is the neutral 50 flagged
// invalid.
func RSI(prices []float64, period int) RSIResult {
	if len(prices) < period+1 {
		return RSIResult{Value: 50, Period: period, IsValid: false, DataCount: len(prices)}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	alpha := 1.0 / float64(period)
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = avgGain*(1-alpha) + gain*alpha
		avgLoss = avgLoss*(1-alpha) + loss*alpha
	}

	if avgLoss == 0 {
		return RSIResult{Value: 100, Period: period, IsValid: true, DataCount: len(prices)}
	}

	rs := avgGain / avgLoss
	return RSIResult{
		Value:     100 - 100/(1+rs),
		Period:    period,
		IsValid:   true,
		DataCount: len(prices),
	}
}

// SMA returns the simple moving average of the trailing period. The
// second return is false when there is not enough data.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), true
}

// EMA returns the exponential moving average over the full series with
// span = period.
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) == 0 {
		return 0, false
	}
	alpha := 2.0 / (float64(period) + 1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = ema*(1-alpha) + p*alpha
	}
	return ema, true
}

// RateOfChange returns the percentage change over the trailing period.
func RateOfChange(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) <= period {
		return 0, false
	}
	base := prices[len(prices)-1-period]
	if base == 0 {
		return 0, false
	}
	return (prices[len(prices)-1]/base - 1) * 100, true
}

// MACDResult carries the MACD line, signal line, and histogram.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
	IsValid   bool    `json:"is_valid"`
}

// MACD computes the moving average convergence divergence with the
// standard 12/26/9 parameters unless overridden.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	if len(prices) < slow+signal {
		return MACDResult{}
	}

	macdLine := make([]float64, 0, len(prices))
	alphaFast := 2.0 / (float64(fast) + 1)
	alphaSlow := 2.0 / (float64(slow) + 1)
	emaFast, emaSlow := prices[0], prices[0]
	for i, p := range prices {
		if i > 0 {
			emaFast = emaFast*(1-alphaFast) + p*alphaFast
			emaSlow = emaSlow*(1-alphaSlow) + p*alphaSlow
		}
		macdLine = append(macdLine, emaFast-emaSlow)
	}

	alphaSig := 2.0 / (float64(signal) + 1)
	sig := macdLine[0]
	for _, m := range macdLine[1:] {
		sig = sig*(1-alphaSig) + m*alphaSig
	}

	macd := macdLine[len(macdLine)-1]
	return MACDResult{MACD: macd, Signal: sig, Histogram: macd - sig, IsValid: true}
}

// AnnualizedVolatility computes the annualized standard deviation of
// daily returns, in percent.
func AnnualizedVolatility(prices []float64, tradingDays float64) (float64, bool) {
	if len(prices) < 3 {
		return 0, false
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	if len(returns) < 2 {
		return 0, false
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDays) * 100, true
}

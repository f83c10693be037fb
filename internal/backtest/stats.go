package backtest

import (
	"math"
)

// TradingDaysPerYear is the annualization base.
const TradingDaysPerYear = 252

// ComputeStats derives the summary statistics from a completed equity
// curve. The curve must start at the initial capital point.
func ComputeStats(curve []EquityPoint, initialCapital, riskFreeRate float64) *Stats {
	if len(curve) == 0 || initialCapital <= 0 {
		return nil
	}

	final := curve[len(curve)-1]
	stats := &Stats{
		TotalReturn:         (final.PortfolioValue/initialCapital - 1) * 100,
		BenchmarkReturn:     (final.BenchmarkValue/initialCapital - 1) * 100,
		TradingDays:         len(curve) - 1,
		FinalValue:          final.PortfolioValue,
		FinalBenchmarkValue: final.BenchmarkValue,
	}
	stats.ExcessReturn = stats.TotalReturn - stats.BenchmarkReturn

	years := float64(stats.TradingDays) / TradingDaysPerYear
	if years > 0 {
		stats.AnnualizedReturn = (math.Pow(1+stats.TotalReturn/100, 1/years) - 1) * 100
		stats.BenchmarkAnnualized = (math.Pow(1+stats.BenchmarkReturn/100, 1/years) - 1) * 100
	}

	strat, bench := dailyReturns(curve)

	if vol, ok := stdev(strat); ok {
		stats.Volatility = vol * math.Sqrt(TradingDaysPerYear) * 100
	}

	stats.SharpeRatio = sharpe(strat, riskFreeRate)
	stats.MaxDrawdown = maxDrawdown(curve)
	stats.WinRate = winRate(strat)
	stats.Alpha, stats.Beta = olsAlphaBeta(strat, bench)
	stats.InformationRatio = informationRatio(strat, bench)
	stats.MonthlyReturns = monthlyReturns(curve)

	return stats
}

func dailyReturns(curve []EquityPoint) (strat, bench []float64) {
	for i := 1; i < len(curve); i++ {
		p0, p1 := curve[i-1], curve[i]
		if p0.PortfolioValue > 0 {
			strat = append(strat, p1.PortfolioValue/p0.PortfolioValue-1)
		}
		if p0.BenchmarkValue > 0 {
			bench = append(bench, p1.BenchmarkValue/p0.BenchmarkValue-1)
		}
	}
	return strat, bench
}

// sharpe annualizes mean/stdev of daily excess returns over the
// risk-free rate. Zero volatility leaves the ratio undefined: the
// result is nil, never infinity or NaN.
func sharpe(returns []float64, riskFreeRate float64) *float64 {
	if len(returns) < 2 {
		return nil
	}
	dailyRF := riskFreeRate / TradingDaysPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRF
	}

	sd, ok := stdev(excess)
	if !ok || sd == 0 {
		return nil
	}
	ratio := mean(excess) / sd * math.Sqrt(TradingDaysPerYear)
	return &ratio
}

// maxDrawdown is the largest peak-to-trough decline in percent. Always
// <= 0; exactly 0 for a monotonically non-decreasing curve.
func maxDrawdown(curve []EquityPoint) float64 {
	peak := 0.0
	worst := 0.0
	for _, p := range curve {
		if p.PortfolioValue > peak {
			peak = p.PortfolioValue
		}
		if peak > 0 {
			dd := (p.PortfolioValue - peak) / peak * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns)) * 100
}

// olsAlphaBeta regresses strategy daily returns on benchmark daily
// returns. Beta is the slope; alpha is the intercept annualized to
// percent.
func olsAlphaBeta(strat, bench []float64) (alpha, beta float64) {
	n := len(strat)
	if n == 0 || n != len(bench) {
		return 0, 1
	}

	meanS := mean(strat)
	meanB := mean(bench)

	var cov, varB float64
	for i := 0; i < n; i++ {
		cov += (strat[i] - meanS) * (bench[i] - meanB)
		varB += (bench[i] - meanB) * (bench[i] - meanB)
	}
	if varB == 0 {
		return 0, 1
	}

	beta = cov / varB
	dailyAlpha := meanS - beta*meanB
	alpha = dailyAlpha * TradingDaysPerYear * 100
	return alpha, beta
}

func informationRatio(strat, bench []float64) float64 {
	n := len(strat)
	if n == 0 || n != len(bench) {
		return 0
	}
	diff := make([]float64, n)
	for i := range strat {
		diff[i] = strat[i] - bench[i]
	}
	sd, ok := stdev(diff)
	if !ok || sd == 0 {
		return 0
	}
	return mean(diff) / sd * math.Sqrt(TradingDaysPerYear)
}

// monthlyReturns chains each day's return into its calendar month
// bucket, for both legs, in chronological order.
func monthlyReturns(curve []EquityPoint) []MonthlyReturn {
	if len(curve) < 2 {
		return nil
	}

	var out []MonthlyReturn
	current := ""
	growS, growB := 1.0, 1.0
	flush := func() {
		if current == "" {
			return
		}
		out = append(out, MonthlyReturn{
			Month:     current,
			Portfolio: (growS - 1) * 100,
			Benchmark: (growB - 1) * 100,
			Excess:    (growS - growB) * 100,
		})
	}

	for i := 1; i < len(curve); i++ {
		month := curve[i].Date.Format("2006-01")
		if month != current {
			flush()
			current = month
			growS, growB = 1.0, 1.0
		}
		growS *= 1 + curve[i].PortfolioReturn/100
		growB *= 1 + curve[i].BenchmarkReturn/100
	}
	flush()
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the sample standard deviation; false with fewer than two
// observations.
func stdev(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	m := mean(xs)
	variance := 0.0
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	variance /= float64(len(xs) - 1)
	return math.Sqrt(variance), true
}

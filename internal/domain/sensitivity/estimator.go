package sensitivity

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sectorrun/sectorrun/internal/domain/series"
)

// Coefficient is the estimated sensitivity of one sector to one
// indicator. Insufficient distinguishes "no usable overlap" from a true
// zero correlation so consumers can down-weight it.
type Coefficient struct {
	IndicatorID  string  `json:"indicator_id"`
	Symbol       string  `json:"symbol"`
	Value        float64 `json:"value"`
	Samples      int     `json:"samples"`
	Insufficient bool    `json:"insufficient,omitempty"`
}

// Matrix holds sensitivity coefficients over a rolling window, keyed by
// indicator id then sector symbol. Matrices are recomputed whole, never
// patched incrementally.
type Matrix struct {
	From         time.Time                         `json:"from"`
	To           time.Time                         `json:"to"`
	LookbackDays int                               `json:"lookback_days"`
	Indicators   []string                          `json:"indicators"`
	Sectors      []string                          `json:"sectors"`
	Coefficients map[string]map[string]Coefficient `json:"coefficients"`
}

// Get returns the coefficient for an (indicator, sector) pair.
func (m *Matrix) Get(indicatorID, symbol string) (Coefficient, bool) {
	row, ok := m.Coefficients[indicatorID]
	if !ok {
		return Coefficient{}, false
	}
	c, ok := row[symbol]
	return c, ok
}

// Estimator computes sector-vs-indicator sensitivity from historical
// co-movement. It is a pure computation over the series it is handed.
type Estimator struct {
	minSamples int
}

// DefaultMinSamples is the paired-observation floor below which a
// correlation is reported as insufficient rather than estimated.
const DefaultMinSamples = 20

// NewEstimator creates an estimator. minSamples <= 0 selects the
// default floor.
func NewEstimator(minSamples int) *Estimator {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &Estimator{minSamples: minSamples}
}

// Estimate builds the full matrix as of a date over a trailing lookback
// of trading days. Indicator series reported at lower frequency than
// daily prices are forward-filled from their last release; values are
// never taken from after the evaluation date.
//
// Sectors are estimated concurrently; each (indicator, sector) cell is
// independent read-only work, and the output ordering is fixed by the
// sorted key slices regardless of completion order.
func (e *Estimator) Estimate(indicatorSeries map[string]series.Series, sectorPrices map[string]series.Series, asOf time.Time, lookbackDays int) *Matrix {
	m := &Matrix{
		To:           asOf,
		LookbackDays: lookbackDays,
		Indicators:   sortedKeys(indicatorSeries),
		Sectors:      sortedKeys(sectorPrices),
		Coefficients: make(map[string]map[string]Coefficient, len(indicatorSeries)),
	}
	for _, id := range m.Indicators {
		m.Coefficients[id] = make(map[string]Coefficient, len(m.Sectors))
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range m.Sectors {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			prices := sectorPrices[symbol].Through(asOf)
			if lookbackDays > 0 && len(prices) > lookbackDays+1 {
				prices = prices[len(prices)-lookbackDays-1:]
			}
			returns := prices.Returns()

			for _, id := range m.Indicators {
				coeff := e.estimatePair(id, symbol, indicatorSeries[id], returns)
				mu.Lock()
				m.Coefficients[id][symbol] = coeff
				mu.Unlock()
			}
		}(symbol)
	}
	wg.Wait()

	if first := earliestDate(sectorPrices, asOf, lookbackDays); !first.IsZero() {
		m.From = first
	}
	return m
}

// estimatePair correlates forward-filled indicator changes with
// contemporaneous sector daily returns.
func (e *Estimator) estimatePair(indicatorID, symbol string, ind series.Series, returns series.Series) Coefficient {
	coeff := Coefficient{IndicatorID: indicatorID, Symbol: symbol}

	var xs, ys []float64
	var prev float64
	havePrev := false
	for _, r := range returns {
		p, ok := ind.LastOn(r.Date)
		if !ok {
			continue
		}
		if havePrev {
			xs = append(xs, p.Value-prev)
			ys = append(ys, r.Value)
		}
		prev = p.Value
		havePrev = true
	}

	coeff.Samples = len(xs)
	if len(xs) < e.minSamples {
		coeff.Insufficient = true
		return coeff
	}

	value, ok := pearson(xs, ys)
	if !ok {
		// Degenerate variance: undefined, not a true zero.
		coeff.Insufficient = true
		return coeff
	}
	coeff.Value = clamp(value, -1, 1)
	return coeff
}

// pearson returns the correlation coefficient, and false when either
// side has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if n < 2 {
		return 0, false
	}

	meanX, meanY := 0.0, 0.0
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func earliestDate(prices map[string]series.Series, asOf time.Time, lookbackDays int) time.Time {
	var first time.Time
	for _, s := range prices {
		window := s.Through(asOf)
		if lookbackDays > 0 && len(window) > lookbackDays+1 {
			window = window[len(window)-lookbackDays-1:]
		}
		if len(window) == 0 {
			continue
		}
		if first.IsZero() || window[0].Date.Before(first) {
			first = window[0].Date
		}
	}
	return first
}

package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Recommendation labels a sector's position in the cross-sectional
// ranking on a date.
type Recommendation string

const (
	RecommendOverweight  Recommendation = "Overweight"
	RecommendNeutral     Recommendation = "Neutral"
	RecommendUnderweight Recommendation = "Underweight"
)

var (
	// ErrComponentRange means a producer delivered a component outside
	// [0,100]. That is the producer's contract violation; the scorer
	// refuses to clamp it silently.
	ErrComponentRange = errors.New("score component outside [0,100]")
	// ErrMissingComponent means a required component is absent for a
	// sector/date. The composite is not computed in that case; a zero
	// default would bias the ranking.
	ErrMissingComponent = errors.New("missing score component")
	// ErrBadWeights means the configured weights do not form a convex
	// combination.
	ErrBadWeights = errors.New("weights must be non-negative and sum to 1")
)

// Weights are the fixed blend weights of the four sub-scores.
type Weights struct {
	ML               float64 `yaml:"ml_score" json:"ml_score"`
	Cycle            float64 `yaml:"cycle_score" json:"cycle_score"`
	Momentum         float64 `yaml:"momentum_score" json:"momentum_score"`
	MacroSensitivity float64 `yaml:"macro_sensitivity_score" json:"macro_sensitivity_score"`
}

// DefaultWeights returns the production blend: 40% ML, 25% cycle,
// 20% momentum, 15% macro sensitivity.
func DefaultWeights() Weights {
	return Weights{ML: 0.40, Cycle: 0.25, Momentum: 0.20, MacroSensitivity: 0.15}
}

// Validate checks the weights form a convex combination.
func (w Weights) Validate() error {
	for _, v := range []float64{w.ML, w.Cycle, w.Momentum, w.MacroSensitivity} {
		if v < 0 {
			return ErrBadWeights
		}
	}
	if math.Abs(w.ML+w.Cycle+w.Momentum+w.MacroSensitivity-1.0) > 1e-9 {
		return ErrBadWeights
	}
	return nil
}

// Components are the four sub-scores for one sector on one date, each
// pre-normalized by its producer to the [0,100] scale.
type Components struct {
	Symbol           string    `json:"symbol"`
	Date             time.Time `json:"date"`
	ML               float64   `json:"ml_score"`
	Cycle            float64   `json:"cycle_score"`
	Momentum         float64   `json:"momentum_score"`
	MacroSensitivity float64   `json:"macro_sensitivity_score"`
}

// Score is a ranked composite result.
type Score struct {
	Components
	Composite      float64        `json:"composite_score"`
	Rank           int            `json:"rank"`
	Recommendation Recommendation `json:"recommendation"`
}

// Combine computes the weighted composite. It is a pure function of the
// components and weights: supplying the same components in any order
// yields the identical result.
func Combine(c Components, w Weights) (float64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	for _, v := range []float64{c.ML, c.Cycle, c.Momentum, c.MacroSensitivity} {
		if math.IsNaN(v) {
			return 0, fmt.Errorf("%w: %s on %s", ErrMissingComponent, c.Symbol, c.Date.Format("2006-01-02"))
		}
		if v < 0 || v > 100 {
			return 0, fmt.Errorf("%w: %s on %s", ErrComponentRange, c.Symbol, c.Date.Format("2006-01-02"))
		}
	}
	return w.ML*c.ML + w.Cycle*c.Cycle + w.Momentum*c.Momentum + w.MacroSensitivity*c.MacroSensitivity, nil
}

// Cutoffs split the ranking into recommendation bands, expressed as
// fractions of the universe.
type Cutoffs struct {
	Overweight  float64 `yaml:"overweight"`
	Underweight float64 `yaml:"underweight"`
}

// DefaultCutoffs labels the top third Overweight and the bottom third
// Underweight.
func DefaultCutoffs() Cutoffs {
	return Cutoffs{Overweight: 1.0 / 3.0, Underweight: 1.0 / 3.0}
}

// RankAll combines and ranks a cross-section of sectors for one date.
// Ordering is by composite descending with ties broken by symbol
// ascending, so equal scores always rank deterministically.
func RankAll(list []Components, w Weights, cut Cutoffs) ([]Score, error) {
	scored := make([]Score, 0, len(list))
	for _, c := range list {
		composite, err := Combine(c, w)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Score{Components: c, Composite: composite})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Composite != scored[j].Composite {
			return scored[i].Composite > scored[j].Composite
		}
		return scored[i].Symbol < scored[j].Symbol
	})

	n := len(scored)
	owCount := bandSize(n, cut.Overweight)
	uwCount := bandSize(n, cut.Underweight)
	for i := range scored {
		scored[i].Rank = i + 1
		switch {
		case i < owCount:
			scored[i].Recommendation = RecommendOverweight
		case i >= n-uwCount:
			scored[i].Recommendation = RecommendUnderweight
		default:
			scored[i].Recommendation = RecommendNeutral
		}
	}
	return scored, nil
}

func bandSize(n int, fraction float64) int {
	if fraction <= 0 {
		return 0
	}
	size := int(math.Round(float64(n) * fraction))
	if size > n {
		size = n
	}
	return size
}

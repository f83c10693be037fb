package cycle

import (
	"fmt"
	"time"

	"github.com/sectorrun/sectorrun/internal/domain/indicator"
)

// Canonical signal roles the classifier understands. The engine maps
// concrete indicator IDs (T10Y2Y, UNRATE, ...) onto these roles.
const (
	SignalYieldCurve           = "yield_curve"
	SignalUnemployment         = "unemployment"
	SignalLeadingIndex         = "leading_index"
	SignalIndustrialProduction = "industrial_production"
	SignalCreditSpread         = "credit_spread"
	SignalInflation            = "inflation"
)

// Rules holds the tunable thresholds for phase classification. The cut
// points are domain judgment calls, so they live in configuration
// rather than in the rule code.
type Rules struct {
	YieldCurve struct {
		Inverted float64 `yaml:"inverted"` // below this: inverted curve
		Flat     float64 `yaml:"flat"`     // below this: flat curve
		Steep    float64 `yaml:"steep"`    // above this: steep curve
	} `yaml:"yield_curve"`
	CreditSpread struct {
		High     float64 `yaml:"high"`
		Elevated float64 `yaml:"elevated"`
		Low      float64 `yaml:"low"`
	} `yaml:"credit_spread"`
	Votes struct {
		Strong   float64 `yaml:"strong"`
		Moderate float64 `yaml:"moderate"`
		Weak     float64 `yaml:"weak"`
	} `yaml:"votes"`
	// FallbackPhase is returned with confidence 0 when no usable
	// indicators are available and no prior phase is known.
	FallbackPhase Phase `yaml:"fallback_phase"`
}

// DefaultRules returns the baseline rule thresholds.
func DefaultRules() Rules {
	var r Rules
	r.YieldCurve.Inverted = 0.0
	r.YieldCurve.Flat = 0.5
	r.YieldCurve.Steep = 1.5
	r.CreditSpread.High = 3.0
	r.CreditSpread.Elevated = 2.0
	r.CreditSpread.Low = 1.5
	r.Votes.Strong = 2.0
	r.Votes.Moderate = 1.5
	r.Votes.Weak = 1.0
	r.FallbackPhase = PhaseMidCycle
	return r
}

// Classifier infers the business cycle phase from normalized indicator
// snapshots. It is stateless apart from the rule thresholds; the last
// known phase is passed in by the caller for the zero-indicator
// fallback.
type Classifier struct {
	rules Rules
}

// NewClassifier creates a classifier with the given rules.
func NewClassifier(rules Rules) *Classifier {
	if !rules.FallbackPhase.Valid() {
		rules.FallbackPhase = PhaseMidCycle
	}
	return &Classifier{rules: rules}
}

// Classify scores each phase from the available signals and returns the
// winner with a confidence in [0,1]. Snapshots marked not-available are
// skipped. With zero usable signals the classifier still returns a
// phase (last known, else the configured fallback) with confidence 0 so
// the downstream pipeline never stalls on a missing regime.
func (c *Classifier) Classify(snaps map[string]indicator.Snapshot, asOf time.Time, lastKnown Phase) Assessment {
	votes := map[Phase]float64{}
	var signals []Signal
	usable := 0

	add := func(name string, snap indicator.Snapshot, note string, alloc map[Phase]float64) {
		for phase, w := range alloc {
			votes[phase] += w
		}
		signals = append(signals, Signal{
			Name:  name,
			Value: snap.Value,
			Trend: string(snap.Trend),
			Note:  note,
		})
		usable++
	}

	r := c.rules

	if snap, ok := usableSnap(snaps, SignalYieldCurve); ok {
		switch {
		case snap.Value < r.YieldCurve.Inverted:
			add(SignalYieldCurve, snap, "inverted", map[Phase]float64{
				PhaseRecession: r.Votes.Strong, PhaseLateCycle: r.Votes.Weak,
			})
		case snap.Value < r.YieldCurve.Flat:
			add(SignalYieldCurve, snap, "flat", map[Phase]float64{
				PhaseLateCycle: r.Votes.Strong,
			})
		case snap.Value > r.YieldCurve.Steep:
			add(SignalYieldCurve, snap, "steep", map[Phase]float64{
				PhaseEarlyCycle: r.Votes.Strong,
			})
		default:
			add(SignalYieldCurve, snap, "normal", map[Phase]float64{
				PhaseMidCycle: r.Votes.Moderate,
			})
		}
	}

	if snap, ok := usableSnap(snaps, SignalUnemployment); ok {
		switch snap.Trend {
		case indicator.TrendRising:
			add(SignalUnemployment, snap, "rising", map[Phase]float64{
				PhaseRecession: r.Votes.Strong, PhaseLateCycle: r.Votes.Weak,
			})
		case indicator.TrendFalling:
			add(SignalUnemployment, snap, "falling", map[Phase]float64{
				PhaseEarlyCycle: r.Votes.Strong, PhaseMidCycle: r.Votes.Weak,
			})
		default:
			add(SignalUnemployment, snap, "stable", map[Phase]float64{
				PhaseMidCycle: r.Votes.Moderate,
			})
		}
	}

	if snap, ok := usableSnap(snaps, SignalLeadingIndex); ok {
		switch snap.Trend {
		case indicator.TrendRising:
			add(SignalLeadingIndex, snap, "rising", map[Phase]float64{
				PhaseEarlyCycle: r.Votes.Moderate, PhaseMidCycle: r.Votes.Weak,
			})
		case indicator.TrendFalling:
			add(SignalLeadingIndex, snap, "falling", map[Phase]float64{
				PhaseRecession: r.Votes.Moderate, PhaseLateCycle: r.Votes.Weak,
			})
		}
	}

	if snap, ok := usableSnap(snaps, SignalIndustrialProduction); ok {
		switch snap.Trend {
		case indicator.TrendRising:
			add(SignalIndustrialProduction, snap, "rising", map[Phase]float64{
				PhaseMidCycle: r.Votes.Moderate, PhaseEarlyCycle: r.Votes.Weak,
			})
		case indicator.TrendFalling:
			add(SignalIndustrialProduction, snap, "falling", map[Phase]float64{
				PhaseRecession: r.Votes.Moderate, PhaseLateCycle: r.Votes.Weak,
			})
		}
	}

	if snap, ok := usableSnap(snaps, SignalCreditSpread); ok {
		switch {
		case snap.Value > r.CreditSpread.High:
			add(SignalCreditSpread, snap, "high", map[Phase]float64{
				PhaseRecession: r.Votes.Strong,
			})
		case snap.Value > r.CreditSpread.Elevated:
			add(SignalCreditSpread, snap, "elevated", map[Phase]float64{
				PhaseLateCycle: r.Votes.Moderate,
			})
		case snap.Value < r.CreditSpread.Low:
			add(SignalCreditSpread, snap, "low", map[Phase]float64{
				PhaseMidCycle: r.Votes.Moderate,
			})
		}
	}

	if snap, ok := usableSnap(snaps, SignalInflation); ok {
		switch snap.Trend {
		case indicator.TrendRising:
			add(SignalInflation, snap, "accelerating", map[Phase]float64{
				PhaseLateCycle: r.Votes.Weak,
			})
		case indicator.TrendFalling:
			add(SignalInflation, snap, "decelerating", map[Phase]float64{
				PhaseEarlyCycle: r.Votes.Weak,
			})
		}
	}

	if usable == 0 {
		phase := lastKnown
		if !phase.Valid() {
			phase = r.FallbackPhase
		}
		return Assessment{Phase: phase, Confidence: 0, AsOf: asOf, Votes: votes, Signals: signals}
	}

	phase, confidence := tally(votes)
	return Assessment{Phase: phase, Confidence: confidence, AsOf: asOf, Votes: votes, Signals: signals}
}

// tally picks the phase with the highest vote and derives confidence as
// its share of the total, which keeps confidence in [0,1] and makes it
// monotone in signal agreement.
func tally(votes map[Phase]float64) (Phase, float64) {
	total := 0.0
	for _, v := range votes {
		total += v
	}

	best := PhaseMidCycle
	bestVote := -1.0
	for _, phase := range Phases {
		if v := votes[phase]; v > bestVote {
			best = phase
			bestVote = v
		}
	}

	if total <= 0 || bestVote <= 0 {
		return best, 0
	}
	confidence := bestVote / total
	if confidence > 1 {
		confidence = 1
	}
	return best, confidence
}

func usableSnap(snaps map[string]indicator.Snapshot, name string) (indicator.Snapshot, bool) {
	snap, ok := snaps[name]
	if !ok || !snap.Available {
		return indicator.Snapshot{}, false
	}
	return snap, true
}

// String implements fmt.Stringer for log output.
func (a Assessment) String() string {
	return fmt.Sprintf("%s (%.0f%% confidence)", a.Phase, a.Confidence*100)
}

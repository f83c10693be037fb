package cycle

import "time"

// Phase is one of the four business cycle regimes (Fidelity model).
type Phase string

const (
	PhaseEarlyCycle Phase = "early_cycle"
	PhaseMidCycle   Phase = "mid_cycle"
	PhaseLateCycle  Phase = "late_cycle"
	PhaseRecession  Phase = "recession"
)

// Phases lists all phases in canonical order. The order also breaks ties
// when two phases collect equal votes, keeping classification
// deterministic.
var Phases = []Phase{PhaseEarlyCycle, PhaseMidCycle, PhaseLateCycle, PhaseRecession}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	for _, q := range Phases {
		if p == q {
			return true
		}
	}
	return false
}

// Assessment is the classifier output for one date. Assessments are
// recomputed per date and never mutated.
type Assessment struct {
	Phase      Phase              `json:"phase"`
	Confidence float64            `json:"confidence"`
	AsOf       time.Time          `json:"as_of"`
	Votes      map[Phase]float64  `json:"votes"`
	Signals    []Signal           `json:"signals"`
}

// Signal records how one indicator voted, for attribution.
type Signal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Trend string  `json:"trend"`
	Note  string  `json:"note,omitempty"`
}

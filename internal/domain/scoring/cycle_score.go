package scoring

import (
	"github.com/sectorrun/sectorrun/internal/domain/cycle"
	"github.com/sectorrun/sectorrun/internal/domain/sectors"
)

// CycleScores maps the detected phase to per-sector scores on the
// [0,100] scale using the historical phase preference table. Unknown
// phases fall back to mid-cycle, the least opinionated row.
func CycleScores(phase cycle.Phase) map[string]float64 {
	table, ok := sectors.PhaseScores[phase]
	if !ok {
		table = sectors.PhaseScores[cycle.PhaseMidCycle]
	}

	out := make(map[string]float64, len(table))
	for _, symbol := range sectors.Symbols() {
		pref, ok := table[symbol]
		if !ok {
			pref = 0.5
		}
		out[symbol] = pref * 100
	}
	return out
}

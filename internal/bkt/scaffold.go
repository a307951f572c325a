package bkt

// Scaffold levels control hint intensity: higher means heavier support.
// The level moves with hysteresis so one noisy attempt doesn't flip it.
const (
	ScaffoldMax = 3
	ScaffoldMin = 0
)

// scaffoldBands are the belief levels at which support steps down.
// Crossing a band upward removes one level of scaffolding.
var scaffoldBands = []float64{0.4, 0.6, 0.8}

// ScaffoldForBelief returns the scaffold level implied by a belief alone,
// ignoring history. Used to seed new learner state.
func ScaffoldForBelief(pMastery float64) int {
	level := ScaffoldMax
	for _, band := range scaffoldBands {
		if pMastery >= band {
			level--
		}
	}
	return level
}

// AdjustScaffold applies the hysteresis rule after an attempt:
//   - stepping up through a band lowers scaffolding by one level,
//   - two consecutive wrong answers raise it by one level.
//
// consecutiveWrong is the count including the current attempt.
func AdjustScaffold(level int, prevBelief, newBelief float64, consecutiveWrong int) int {
	if crossedBandUp(prevBelief, newBelief) && level > ScaffoldMin {
		level--
	}
	if consecutiveWrong >= 2 && level < ScaffoldMax {
		level++
	}
	return level
}

func crossedBandUp(prev, next float64) bool {
	for _, band := range scaffoldBands {
		if prev < band && next >= band {
			return true
		}
	}
	return false
}

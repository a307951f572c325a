package bkt

import (
	"fmt"
	"math"
)

// MinFitSamples is the smallest observation count for which a per-skill
// fit is accepted. Below this, global defaults remain in force.
const MinFitSamples = 30

// InsufficientDataError signals that a fit was requested with too few
// observations. Non-fatal: callers keep the default parameters.
type InsufficientDataError struct {
	Samples int
	Needed  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("bkt: %d observations, need at least %d for a fit", e.Samples, e.Needed)
}

// FitResult carries fitted parameters plus how well they calibrate.
type FitResult struct {
	Params      Params
	Samples     int
	LogLik      float64
	Calibration Calibration
}

// fitGrid is the search grid per parameter. Coarse on purpose: BKT
// likelihood surfaces are flat and a finer grid buys noise, not signal.
var fitGrid = struct {
	init, learn, slip, guess []float64
}{
	init:  []float64{0.1, 0.2, 0.3, 0.4, 0.5},
	learn: []float64{0.05, 0.1, 0.2, 0.3, 0.4},
	slip:  []float64{0.05, 0.1, 0.2, 0.3},
	guess: []float64{0.05, 0.1, 0.2, 0.3},
}

// Fit estimates per-skill parameters from observation sequences (one
// sequence per learner, each a series of correct/incorrect attempts) by
// maximizing the observed-sequence likelihood over a grid.
func Fit(sequences [][]bool) (*FitResult, error) {
	total := 0
	for _, seq := range sequences {
		total += len(seq)
	}
	if total < MinFitSamples {
		return nil, &InsufficientDataError{Samples: total, Needed: MinFitSamples}
	}

	best := FitResult{LogLik: math.Inf(-1)}
	for _, pi := range fitGrid.init {
		for _, pl := range fitGrid.learn {
			for _, ps := range fitGrid.slip {
				for _, pg := range fitGrid.guess {
					p := Params{PInit: pi, PLearn: pl, PSlip: ps, PGuess: pg}
					ll := logLikelihood(sequences, p)
					if ll > best.LogLik {
						best.Params = p
						best.LogLik = ll
					}
				}
			}
		}
	}

	best.Samples = total
	best.Calibration = Calibrate(sequences, best.Params)
	return &best, nil
}

// logLikelihood sums log P(observation | belief-so-far) over every
// observation in every sequence, advancing belief with Update as it goes.
func logLikelihood(sequences [][]bool, p Params) float64 {
	ll := 0.0
	for _, seq := range sequences {
		belief := p.PInit
		for _, correct := range seq {
			pc := PredictCorrect(belief, p)
			if correct {
				ll += math.Log(math.Max(pc, MinBelief))
			} else {
				ll += math.Log(math.Max(1-pc, MinBelief))
			}
			belief = Update(belief, p, correct)
		}
	}
	return ll
}

package bkt

// Probability clamp bounds. Keeping belief strictly inside (0,1) ensures
// later updates can still move it.
const (
	MinBelief = 1e-6
	MaxBelief = 1 - 1e-6
)

// Update applies one observed attempt to a mastery belief and returns the
// new belief. Standard two-step BKT: condition on the evidence, then apply
// the learning transition.
func Update(pMastery float64, params Params, correct bool) float64 {
	p := clamp(pMastery)
	s := params.PSlip
	g := params.PGuess

	var posterior float64
	if correct {
		num := p * (1 - s)
		den := num + (1-p)*g
		posterior = safeDiv(num, den, p)
	} else {
		num := p * s
		den := num + (1-p)*(1-g)
		posterior = safeDiv(num, den, p)
	}

	return clamp(posterior + (1-posterior)*params.PLearn)
}

// PredictCorrect returns the probability of a correct answer given the
// current belief. Used for calibration scoring and grade derivation.
func PredictCorrect(pMastery float64, params Params) float64 {
	p := clamp(pMastery)
	return p*(1-params.PSlip) + (1-p)*params.PGuess
}

func clamp(p float64) float64 {
	switch {
	case p != p: // NaN guard; callers validate inputs but never propagate NaN
		return MinBelief
	case p < MinBelief:
		return MinBelief
	case p > MaxBelief:
		return MaxBelief
	}
	return p
}

// safeDiv guards the Bayes denominator. A zero denominator can only happen
// with degenerate parameters; fall back to the prior rather than emit NaN.
func safeDiv(num, den, fallback float64) float64 {
	if den <= 0 {
		return fallback
	}
	return num / den
}

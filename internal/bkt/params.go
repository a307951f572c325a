package bkt

import "fmt"

// Params are the four Bayesian Knowledge Tracing probabilities for a skill.
// They come either from global defaults or from a per-skill fit.
type Params struct {
	PInit  float64 // prior probability the skill is already known
	PLearn float64 // probability of learning on each opportunity
	PSlip  float64 // probability of answering wrong despite knowing
	PGuess float64 // probability of answering right without knowing
}

// DefaultParams are the global fallback parameters, used until a skill has
// enough observations for a per-skill fit.
func DefaultParams() Params {
	return Params{PInit: 0.25, PLearn: 0.2, PSlip: 0.1, PGuess: 0.2}
}

// Validate checks each parameter is a probability and that slip/guess stay
// out of the degenerate region where evidence becomes uninformative.
func (p Params) Validate() error {
	check := func(name string, v float64) error {
		if v != v || v < 0 || v > 1 {
			return fmt.Errorf("bkt: %s = %v out of [0,1]", name, v)
		}
		return nil
	}
	if err := check("pInit", p.PInit); err != nil {
		return err
	}
	if err := check("pLearn", p.PLearn); err != nil {
		return err
	}
	if err := check("pSlip", p.PSlip); err != nil {
		return err
	}
	if err := check("pGuess", p.PGuess); err != nil {
		return err
	}
	if p.PSlip >= 0.5 {
		return fmt.Errorf("bkt: pSlip = %v must be below 0.5", p.PSlip)
	}
	if p.PGuess >= 0.5 {
		return fmt.Errorf("bkt: pGuess = %v should be below 0.5", p.PGuess)
	}
	return nil
}

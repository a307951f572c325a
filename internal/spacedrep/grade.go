package spacedrep

// Grade is an SM-2 recall quality in 0..5.
type Grade int

func (g Grade) clamp() Grade {
	if g < 0 {
		return 0
	}
	if g > 5 {
		return 5
	}
	return g
}

// Passing reports whether the grade counts as successful recall.
func (g Grade) Passing() bool {
	return g >= 3
}

// DeriveGrade maps an attempt outcome to a recall grade.
//
// Correct answers grade on latency: faster than expected earns 5, within
// double the expected time 4, slower 3. When timing is unknown the answer
// grades 4. Incorrect answers grade on how surprising the miss was: a miss
// at high prior belief means decayed recall and grades lowest.
func DeriveGrade(correct bool, responseTimeMs, expectedTimeMs int, priorBelief float64) Grade {
	if !correct {
		switch {
		case priorBelief < 0.5:
			return 2
		case priorBelief < 0.75:
			return 1
		default:
			return 0
		}
	}

	if responseTimeMs <= 0 || expectedTimeMs <= 0 {
		return 4
	}
	ratio := float64(responseTimeMs) / float64(expectedTimeMs)
	switch {
	case ratio <= 1.0:
		return 5
	case ratio <= 2.0:
		return 4
	default:
		return 3
	}
}

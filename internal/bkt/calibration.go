package bkt

import "sort"

// Calibration compares predicted correctness (from belief before each
// attempt) against what actually happened. Descriptive only.
type Calibration struct {
	AUC     float64
	Brier   float64
	Samples int
}

// Calibrate replays the sequences under the given parameters and scores
// the pre-attempt predictions.
func Calibrate(sequences [][]bool, p Params) Calibration {
	var preds []float64
	var outcomes []bool

	for _, seq := range sequences {
		belief := p.PInit
		for _, correct := range seq {
			preds = append(preds, PredictCorrect(belief, p))
			outcomes = append(outcomes, correct)
			belief = Update(belief, p, correct)
		}
	}

	return Calibration{
		AUC:     auc(preds, outcomes),
		Brier:   brier(preds, outcomes),
		Samples: len(preds),
	}
}

// brier is the mean squared error of probabilistic predictions.
func brier(preds []float64, outcomes []bool) float64 {
	if len(preds) == 0 {
		return 0
	}
	sum := 0.0
	for i, p := range preds {
		y := 0.0
		if outcomes[i] {
			y = 1.0
		}
		d := p - y
		sum += d * d
	}
	return sum / float64(len(preds))
}

// auc computes the area under the ROC curve via the rank-sum formulation,
// with the midrank correction for tied predictions. Returns 0.5 when one
// class is absent (AUC undefined).
func auc(preds []float64, outcomes []bool) float64 {
	n := len(preds)
	pos := 0
	for _, o := range outcomes {
		if o {
			pos++
		}
	}
	neg := n - pos
	if pos == 0 || neg == 0 {
		return 0.5
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return preds[idx[a]] < preds[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && preds[idx[j]] == preds[idx[i]] {
			j++
		}
		mid := float64(i+j+1) / 2.0 // average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[idx[k]] = mid
		}
		i = j
	}

	rankSum := 0.0
	for i, o := range outcomes {
		if o {
			rankSum += ranks[i]
		}
	}
	return (rankSum - float64(pos)*float64(pos+1)/2.0) / (float64(pos) * float64(neg))
}

package stitch

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// pairwiseCompleteCorr computes the Pearson correlation of x and y,
// dropping any index where either value is NaN first (spec 4.F:
// "pairwise-complete on NaNs"). Returns NaN if fewer than two complete
// pairs remain or either remaining series has zero variance — gonum's
// stat.Correlation itself yields NaN/Inf in the zero-variance case, which
// we normalize to NaN so the caller's -∞ substitution (spec 4.F failure
// handling) is uniform.
func pairwiseCompleteCorr(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}

	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	c := stat.Correlation(xs, ys, nil)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return math.NaN()
	}
	return c
}

// withNegInfForNaN substitutes -Inf for NaN correlations (spec 4.F: "NaN
// results replaced with −∞"), so a candidate with an undefined
// correlation can never win an argmax.
func withNegInfForNaN(c float64) float64 {
	if math.IsNaN(c) {
		return math.Inf(-1)
	}
	return c
}

// Package classify turns solved bin edges into a threshold-based drift
// classifier: per-transition aggregated-bin PSI values, threshold selection
// on training data, and evaluation against held-out datasets.
package classify

import (
	"driftbin/domain/histogram"
	"driftbin/domain/psi"
)

// BinSums aggregates one day's density row into per-bin mass given the edge
// sequence. Edges are absolute support values; densities cover
// [minEdge, maxEdge) with step 1.
func BinSums(density []float64, edges []int, minEdge int) []float64 {
	sums := make([]float64, len(edges)-1)
	for b := 0; b < len(sums); b++ {
		lo, hi := edges[b]-minEdge, edges[b+1]-minEdge
		for p := lo; p < hi; p++ {
			sums[b] += density[p]
		}
	}
	return sums
}

// PSI computes the aggregated-bin PSI between two consecutive days.
func PSI(cur, prev []float64, edges []int, minEdge int, eps float64) float64 {
	curBins := BinSums(cur, edges, minEdge)
	prevBins := BinSums(prev, edges, minEdge)
	total := 0.0
	for b := range curBins {
		total += psi.Value(curBins[b], prevBins[b], eps)
	}
	return total
}

// TransitionPSIs computes one PSI value per day-to-day transition of a
// dataset under fixed edges. Result length is Days()-1, aligned with Labels.
func TransitionPSIs(d *histogram.Dataset, edges []int, eps float64) []float64 {
	psis := make([]float64, d.Days()-1)
	for t := 1; t < d.Days(); t++ {
		psis[t-1] = PSI(d.Densities[t], d.Densities[t-1], edges, d.MinEdge, eps)
	}
	return psis
}

// Predict derives transition labels from PSI values alone: a transition is
// drifted when its PSI reaches the threshold.
func Predict(psis []float64, threshold float64) []int {
	pred := make([]int, len(psis))
	for t, v := range psis {
		if v >= threshold {
			pred[t] = 1
		}
	}
	return pred
}

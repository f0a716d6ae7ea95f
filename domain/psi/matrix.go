// Package psi computes Population Stability Index matrices over interval
// sums of consecutive days, and aggregates them per transition class.
package psi

import (
	"math"

	"driftbin/domain/core"
	"driftbin/domain/histogram"
)

// Value computes the smoothed PSI contribution of one interval:
// (p-q) * ln((p+eps)/(q+eps)). The smoothing constant keeps empty
// intervals finite.
func Value(p, q, eps float64) float64 {
	return (p - q) * math.Log((p+eps)/(q+eps))
}

// ClassMatrices holds the per-class mean PSI matrices over all transitions.
// Stable aggregates transitions labeled 0, Drifted transitions labeled 1.
// Both are BxB with only i<j populated.
type ClassMatrices struct {
	Stable  [][]float64
	Drifted [][]float64
	B       int
}

// BuildClassMatrices computes, for each transition t, the elementwise PSI
// between day t and day t-1 interval sums, then averages the transition
// matrices by label. A label class with zero transitions makes its mean
// undefined; that surfaces as core.ErrDegenerateClass rather than NaN.
func BuildClassMatrices(cache *histogram.CumulativeCache, labels []int, eps float64) (*ClassMatrices, error) {
	if cache.Days() < 2 {
		return nil, core.NewDataShapeError("need at least two days to form a transition")
	}
	if len(labels) != cache.Days()-1 {
		return nil, core.NewDataShapeError("label count does not match transition count")
	}

	counts := [2]int{}
	for _, l := range labels {
		counts[l]++
	}
	if counts[0] == 0 {
		return nil, core.NewDegenerateClassError(0)
	}
	if counts[1] == 0 {
		return nil, core.NewDegenerateClassError(1)
	}

	b := cache.B
	cm := &ClassMatrices{
		Stable:  newTriangular(b),
		Drifted: newTriangular(b),
		B:       b,
	}

	for t := 1; t < cache.Days(); t++ {
		dst := cm.Stable
		if labels[t-1] == 1 {
			dst = cm.Drifted
		}
		cur, prev := cache.Percent[t], cache.Percent[t-1]
		for i := 0; i < b; i++ {
			for j := i + 1; j < b; j++ {
				dst[i][j] += Value(cur[i][j], prev[i][j], eps)
			}
		}
	}

	scale(cm.Stable, 1/float64(counts[0]))
	scale(cm.Drifted, 1/float64(counts[1]))
	return cm, nil
}

func newTriangular(b int) [][]float64 {
	m := make([][]float64, b)
	for i := range m {
		m[i] = make([]float64, b)
	}
	return m
}

func scale(m [][]float64, f float64) {
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			m[i][j] *= f
		}
	}
}

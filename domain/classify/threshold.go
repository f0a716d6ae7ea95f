package classify

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// defaultThreshold is the cutoff used when neither the configured sweep nor
// the quantile fallback yields any candidate.
const defaultThreshold = 0.1

// ThresholdSelector sweeps candidate cutoffs over training PSI values and
// keeps the one maximizing the inverse-weighted F-beta score.
type ThresholdSelector struct {
	Candidates []float64
	Beta       float64
}

// NewThresholdSelector creates a selector. With no explicit candidates the
// sweep is derived from the deciles of the observed training PSI values.
func NewThresholdSelector(candidates []float64, beta float64) *ThresholdSelector {
	return &ThresholdSelector{Candidates: candidates, Beta: beta}
}

// CandidatesFromQuantiles derives a candidate sweep from the deciles of the
// observed PSI distribution, deduplicated and sorted.
func CandidatesFromQuantiles(psis []float64) []float64 {
	seen := make(map[float64]bool)
	var candidates []float64
	for p := 10.0; p <= 90.0; p += 10.0 {
		q, err := stats.Percentile(stats.Float64Data(psis), p)
		if err != nil {
			continue
		}
		if !seen[q] {
			seen[q] = true
			candidates = append(candidates, q)
		}
	}
	sort.Float64s(candidates)
	return candidates
}

// Select evaluates every candidate threshold against the training
// transitions and returns the best cutoff with its metrics. Candidates whose
// score is undefined (NaN from an empty class) only win when no candidate
// scores at all. When the sweep and the quantile fallback are both empty,
// the default cutoff is used.
func (s *ThresholdSelector) Select(psis []float64, labels []int) (float64, Metrics) {
	candidates := s.Candidates
	if len(candidates) == 0 {
		candidates = CandidatesFromQuantiles(psis)
	}
	if len(candidates) == 0 {
		candidates = []float64{defaultThreshold}
	}

	bestThreshold := candidates[0]
	bestMetrics := Score(Predict(psis, bestThreshold), labels, s.Beta)
	bestScore := bestMetrics.InverseWeightedFBeta

	for _, threshold := range candidates[1:] {
		m := Score(Predict(psis, threshold), labels, s.Beta)
		score := m.InverseWeightedFBeta
		if math.IsNaN(bestScore) || score > bestScore {
			bestThreshold, bestMetrics, bestScore = threshold, m, score
		}
	}
	return bestThreshold, bestMetrics
}

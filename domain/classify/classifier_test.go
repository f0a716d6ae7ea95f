package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftbin/domain/histogram"
)

func TestBinSums_PreservesMass(t *testing.T) {
	density := []float64{0.1, 0.05, 0.2, 0.15, 0.1, 0.25, 0.15}
	edges := []int{300, 302, 305, 307}

	sums := BinSums(density, edges, 300)
	require.Len(t, sums, 3)

	total := 0.0
	for _, v := range density {
		total += v
	}
	binned := 0.0
	for _, v := range sums {
		binned += v
	}
	assert.InDelta(t, total, binned, 1e-12)
	assert.InDelta(t, 0.15, sums[0], 1e-12)
	assert.InDelta(t, 0.45, sums[1], 1e-12)
	assert.InDelta(t, 0.40, sums[2], 1e-12)
}

func TestPSI_ZeroForIdenticalDays(t *testing.T) {
	day := []float64{0.2, 0.3, 0.5}
	edges := []int{0, 1, 3}
	assert.InDelta(t, 0.0, PSI(day, day, edges, 0, 1e-8), 1e-12)
}

func TestPredict(t *testing.T) {
	psis := []float64{0.0, 0.09, 0.1, 2.5}
	assert.Equal(t, []int{0, 0, 1, 1}, Predict(psis, 0.1))
}

func TestScore_PerfectClassifier(t *testing.T) {
	actual := []int{0, 0, 1, 0, 1}
	m := Score(actual, actual, 2.0)

	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 1.0, m.Precision0)
	assert.Equal(t, 1.0, m.Recall1)
	assert.Equal(t, Confusion{TN: 3, FP: 0, FN: 0, TP: 2}, m.Confusion)
	assert.Equal(t, [2][2]int{{3, 0}, {0, 2}}, m.Confusion.Matrix())
	// F0 = F1 = 1, supports 3/5 and 2/5: weighted sum is exactly 1.
	assert.InDelta(t, 1.0, m.InverseWeightedFBeta, 1e-12)
}

func TestScore_InverseWeighting(t *testing.T) {
	// 8 stable, 2 drifted; predictor nails the majority class but misses
	// both drift transitions.
	actual := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
	predicted := []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	m := Score(predicted, actual, 2.0)

	assert.InDelta(t, 0.8, m.Accuracy, 1e-12)
	// F0 is high but weighted by the tiny drift support; F1 is NaN (class 1
	// never predicted), so the combined score reflects the miss.
	assert.True(t, math.IsNaN(m.InverseWeightedFBeta))
	assert.True(t, math.IsNaN(m.Recall1) || m.Recall1 == 0.0)
}

func TestScore_MissingClassYieldsNaN(t *testing.T) {
	actual := []int{0, 0, 0}
	predicted := []int{0, 0, 0}
	m := Score(predicted, actual, 2.0)

	assert.Equal(t, 1.0, m.Accuracy)
	assert.True(t, math.IsNaN(m.Recall1), "recall over an absent class is undefined")
}

func TestThresholdSelector_PicksSeparatingCutoff(t *testing.T) {
	psis := []float64{0.01, 0.02, 0.03, 0.9, 1.1}
	labels := []int{0, 0, 0, 1, 1}

	sel := NewThresholdSelector([]float64{0.001, 0.1, 2.0}, 2.0)
	threshold, m := sel.Select(psis, labels)

	assert.Equal(t, 0.1, threshold)
	assert.Equal(t, 1.0, m.Accuracy)
	assert.InDelta(t, 1.0, m.InverseWeightedFBeta, 1e-12)
}

func TestThresholdSelector_QuantileFallback(t *testing.T) {
	psis := []float64{0.01, 0.02, 0.03, 0.9, 1.1}
	labels := []int{0, 0, 0, 1, 1}

	sel := NewThresholdSelector(nil, 2.0)
	threshold, m := sel.Select(psis, labels)

	// Some decile of the observed values separates the two groups.
	assert.Greater(t, threshold, 0.03)
	assert.LessOrEqual(t, threshold, 0.9)
	assert.Equal(t, 1.0, m.Accuracy)
}

func TestThresholdSelector_NoCandidatesAtAll(t *testing.T) {
	// Nothing configured and nothing to take quantiles of: the selector
	// falls back to the default cutoff instead of panicking.
	sel := NewThresholdSelector(nil, 2.0)
	threshold, _ := sel.Select(nil, nil)
	assert.Equal(t, 0.1, threshold)
}

func TestEvaluator(t *testing.T) {
	d := &histogram.Dataset{
		MinEdge: 0,
		MaxEdge: 4,
		Densities: [][]float64{
			{0.5, 0.5, 0, 0},
			{0.5, 0.5, 0, 0}, // stable
			{0, 0, 0.5, 0.5}, // drifted
		},
		Labels: []int{0, 1},
	}
	require.NoError(t, d.Validate())

	e := &Evaluator{
		Edges:     []int{0, 2, 4},
		Threshold: 0.1,
		Alpha:     0.5,
		Epsilon:   1e-8,
		Beta:      2.0,
	}
	ev, err := e.Evaluate(d)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, ev.Objective0, 1e-12)
	assert.Greater(t, ev.Objective1, 0.0)
	assert.InDelta(t, 0.5*ev.Objective1, ev.Combined, 1e-12)
	assert.Equal(t, 1.0, ev.Accuracy)
	assert.Equal(t, Confusion{TN: 1, TP: 1}, ev.Confusion)
}

func TestEvaluator_SingleClassDataset(t *testing.T) {
	d := &histogram.Dataset{
		MinEdge: 0,
		MaxEdge: 4,
		Densities: [][]float64{
			{0.5, 0.5, 0, 0},
			{0.5, 0.5, 0, 0},
		},
		Labels: []int{0},
	}
	e := &Evaluator{Edges: []int{0, 2, 4}, Threshold: 0.1, Alpha: 0.5, Epsilon: 1e-8, Beta: 2.0}
	ev, err := e.Evaluate(d)
	require.NoError(t, err)

	// No drifted transitions: the class-1 objective is explicitly undefined.
	assert.True(t, math.IsNaN(ev.Objective1))
	assert.False(t, math.IsNaN(ev.Objective0))
}

package classify

import (
	"math"

	"driftbin/domain/histogram"
)

// Evaluator applies fixed edges and a fixed threshold to any dataset. Edges
// and threshold come from the training solve and are read-only here.
type Evaluator struct {
	Edges     []int
	Threshold float64
	Alpha     float64
	Epsilon   float64
	Beta      float64
}

// Evaluation reports objective and classification figures for one dataset.
// Objective0 and Objective1 are per-class mean PSI under the fixed bins;
// either is NaN when the dataset has no transitions of that class.
type Evaluation struct {
	Objective0 float64
	Objective1 float64
	Combined   float64
	Metrics
}

// Evaluate computes per-transition PSI values, predicted labels, per-class
// normalized PSI sums, and classification metrics.
func (e *Evaluator) Evaluate(d *histogram.Dataset) (*Evaluation, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	psis := TransitionPSIs(d, e.Edges, e.Epsilon)
	predicted := Predict(psis, e.Threshold)
	metrics := Score(predicted, d.Labels, e.Beta)

	var sum [2]float64
	var count [2]int
	for t, v := range psis {
		sum[d.Labels[t]] += v
		count[d.Labels[t]]++
	}
	obj0 := math.NaN()
	if count[0] > 0 {
		obj0 = sum[0] / float64(count[0])
	}
	obj1 := math.NaN()
	if count[1] > 0 {
		obj1 = sum[1] / float64(count[1])
	}

	return &Evaluation{
		Objective0: obj0,
		Objective1: obj1,
		Combined:   e.Alpha*obj1 - (1-e.Alpha)*obj0,
		Metrics:    metrics,
	}, nil
}

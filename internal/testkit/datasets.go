// Package testkit builds synthetic drift datasets with known ground truth
// for tests: exact day repeats for stable transitions and distribution
// shifts for drifted ones.
package testkit

import (
	"math"

	"driftbin/domain/histogram"
)

// DriftSpec describes a synthetic dataset: a discretized logistic density
// whose location jumps at each drifted transition and holds still otherwise.
type DriftSpec struct {
	Meta    histogram.Meta
	MinEdge int
	MaxEdge int
	Days    int
	DriftAt []int      // transition indices labeled 1
	Centers [2]float64 // locations toggled by each drift
	Scale   float64
}

// LogisticDriftDataset generates the dataset of a DriftSpec. Stable
// transitions are exact repeats of the previous day (PSI exactly zero);
// drifted transitions toggle the logistic location between the two centers.
func LogisticDriftDataset(spec DriftSpec) *histogram.Dataset {
	drift := make(map[int]bool, len(spec.DriftAt))
	for _, t := range spec.DriftAt {
		drift[t] = true
	}

	densities := make([][]float64, spec.Days)
	labels := make([]int, spec.Days-1)

	center := 0
	densities[0] = logisticRow(spec.MinEdge, spec.MaxEdge, spec.Centers[center], spec.Scale)
	for day := 1; day < spec.Days; day++ {
		if drift[day-1] {
			labels[day-1] = 1
			center = 1 - center
			densities[day] = logisticRow(spec.MinEdge, spec.MaxEdge, spec.Centers[center], spec.Scale)
		} else {
			row := make([]float64, len(densities[day-1]))
			copy(row, densities[day-1])
			densities[day] = row
		}
	}

	return &histogram.Dataset{
		Meta:      spec.Meta,
		MinEdge:   spec.MinEdge,
		MaxEdge:   spec.MaxEdge,
		Densities: densities,
		Labels:    labels,
	}
}

// ReferenceDataset reproduces the documented baseline: distribution
// "logistic", 30 days, 1000 samples, ratio 70, with 7 of the 29 transitions
// drifted. Densities live on a narrow support so optimization stays fast.
func ReferenceDataset() *histogram.Dataset {
	return LogisticDriftDataset(DriftSpec{
		Meta:    histogram.Meta{Distribution: "logistic", Days: 30, Samples: 1000, Ratio: 70},
		MinEdge: 300,
		MaxEdge: 312,
		Days:    30,
		DriftAt: []int{3, 7, 11, 15, 19, 23, 27},
		Centers: [2]float64{304.5, 307.5},
		Scale:   1.2,
	})
}

// MassShiftDataset builds the minimal drift scenario: one stable repeat,
// then every unit of mass moving from position p to p+1.
func MassShiftDataset(positions, p int) *histogram.Dataset {
	day := make([]float64, positions-1)
	day[p] = 1
	shifted := make([]float64, positions-1)
	shifted[p+1] = 1
	return &histogram.Dataset{
		Meta:      histogram.Meta{Distribution: "massshift", Days: 3},
		MinEdge:   0,
		MaxEdge:   positions - 1,
		Densities: [][]float64{day, day, shifted},
		Labels:    []int{0, 1},
	}
}

// logisticRow discretizes a logistic density over the integer support,
// normalized to unit mass.
func logisticRow(minEdge, maxEdge int, mu, s float64) []float64 {
	row := make([]float64, maxEdge-minEdge)
	total := 0.0
	for p := range row {
		x := float64(minEdge+p) + 0.5
		e := math.Exp(-(x - mu) / s)
		row[p] = e / (s * (1 + e) * (1 + e))
		total += row[p]
	}
	for p := range row {
		row[p] /= total
	}
	return row
}

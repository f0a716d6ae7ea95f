package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftbin/adapters/solver/bnb"
	"driftbin/domain/binning"
	"driftbin/domain/core"
	"driftbin/domain/histogram"
	"driftbin/internal"
	"driftbin/internal/testkit"
)

func referenceService() *SolveService {
	return NewSolveService(bnb.New(), SolveConfig{
		Bounds:     binning.Bounds{Min: 5, Max: 25},
		Epsilon:    1e-8,
		Beta:       2.0,
		Thresholds: []float64{0.1},
	}, internal.NewLogger(internal.LogLevelError))
}

// The documented baseline: logistic, 30 days, 1000 samples, ratio 70, solved
// with alpha 0.5 and the sweep fixed to {0.1}, classifies every training
// transition correctly.
func TestSolveService_ReferenceBaseline(t *testing.T) {
	train := testkit.ReferenceDataset()
	svc := referenceService()

	rec, err := svc.Solve(context.Background(), SolveRequest{Train: train, Alpha: 0.5})
	require.NoError(t, err)

	assert.Equal(t, "logistic", rec.Distribution)
	assert.Equal(t, 30, rec.Days)
	assert.Equal(t, 1000, rec.Samples)
	assert.Equal(t, 70, rec.Ratio)

	assert.InDelta(t, 1.0, rec.TrainAccuracy, 1e-6)
	assert.InDelta(t, 1.0, rec.TrainRecall1, 1e-6)
	assert.Equal(t, 22, rec.ConfusionTN)
	assert.Equal(t, 0, rec.ConfusionFP)
	assert.Equal(t, 0, rec.ConfusionFN)
	assert.Equal(t, 7, rec.ConfusionTP)

	assert.InDelta(t, 0.1, rec.BestThreshold, 1e-12)
	assert.Greater(t, rec.TotalCost, 0.0)

	// Edge invariants of a successful solve.
	assert.GreaterOrEqual(t, rec.NumBins, 5)
	assert.LessOrEqual(t, rec.NumBins, 25)
	assert.Equal(t, train.MinEdge, rec.Edges[0])
	assert.Equal(t, train.MaxEdge, rec.Edges[len(rec.Edges)-1])
	for i := 1; i < len(rec.Edges); i++ {
		assert.Greater(t, rec.Edges[i], rec.Edges[i-1])
	}
}

func TestSolveService_EvaluatesTestSets(t *testing.T) {
	train := testkit.ReferenceDataset()
	held := testkit.LogisticDriftDataset(testkit.DriftSpec{
		Meta:    train.Meta,
		MinEdge: train.MinEdge,
		MaxEdge: train.MaxEdge,
		Days:    10,
		DriftAt: []int{2, 6},
		Centers: [2]float64{304.5, 307.5},
		Scale:   1.2,
	})
	held.Meta.Distribution = "logistic-held"
	held.Meta.Days = 10

	svc := referenceService()
	rec, err := svc.Solve(context.Background(), SolveRequest{
		Train: train,
		Tests: []*histogram.Dataset{held},
		Alpha: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, rec.TestResults, 1)

	tr := rec.TestResults[0]
	assert.Equal(t, held.Meta.Name(), tr.Dataset)
	// The held-out drifts use the same centers, so the frozen threshold
	// still separates them perfectly.
	assert.InDelta(t, 1.0, tr.Accuracy, 1e-6)
	assert.InDelta(t, 1.0, tr.Recall1, 1e-6)
}

func TestSolveService_DegenerateTrainingLabels(t *testing.T) {
	train := testkit.ReferenceDataset()
	for i := range train.Labels {
		train.Labels[i] = 0 // no drifted transitions at all
	}

	svc := referenceService()
	_, err := svc.Solve(context.Background(), SolveRequest{Train: train, Alpha: 0.5})
	require.Error(t, err)
	assert.True(t, core.IsDegenerateClassError(err))
}

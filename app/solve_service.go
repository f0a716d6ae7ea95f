package app

import (
	"context"
	"time"

	"driftbin/domain/binning"
	"driftbin/domain/classify"
	"driftbin/domain/core"
	"driftbin/domain/histogram"
	"driftbin/domain/psi"
	"driftbin/internal"
	"driftbin/models"
	"driftbin/ports"
)

// SolveService runs the full single-dataset pipeline: cumulative matrices,
// class PSI matrices, the edge-selection solve, threshold search on training
// data, and evaluation of every dataset under the frozen edges and threshold.
type SolveService struct {
	solver       ports.SolverPort
	bounds       binning.Bounds
	epsilon      float64
	beta         float64
	thresholds   []float64
	solveTimeout time.Duration
	log          *internal.Logger
}

// SolveConfig carries the fixed configuration of a solve service.
type SolveConfig struct {
	Bounds       binning.Bounds
	Epsilon      float64
	Beta         float64
	Thresholds   []float64
	SolveTimeout time.Duration
}

// NewSolveService creates the pipeline service over a solver backend.
func NewSolveService(solver ports.SolverPort, cfg SolveConfig, logger *internal.Logger) *SolveService {
	return &SolveService{
		solver:       solver,
		bounds:       cfg.Bounds,
		epsilon:      cfg.Epsilon,
		beta:         cfg.Beta,
		thresholds:   cfg.Thresholds,
		solveTimeout: cfg.SolveTimeout,
		log:          logger.WithComponent("SolveService"),
	}
}

// SolveRequest is one unit of work: a training dataset, the held-out test
// datasets, and the objective weight.
type SolveRequest struct {
	RunID core.RunID
	Train *histogram.Dataset
	Tests []*histogram.Dataset
	Alpha float64
}

// Solve executes the pipeline for one (dataset, alpha) pair and returns a
// self-contained record. Any failure aborts this solve only.
func (s *SolveService) Solve(ctx context.Context, req SolveRequest) (*models.Record, error) {
	train := req.Train
	s.log.Info("solving %s alpha=%v", train.Meta.Name(), req.Alpha)

	prepStart := time.Now()
	if err := train.Validate(); err != nil {
		return nil, err
	}
	cache := histogram.BuildCumulative(train)
	matrices, err := psi.BuildClassMatrices(cache, train.Labels, s.epsilon)
	if err != nil {
		return nil, err
	}
	prepTime := time.Since(prepStart)

	solveCtx := ctx
	if s.solveTimeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, s.solveTimeout)
		defer cancel()
	}
	opt := binning.NewOptimizer(s.solver, s.bounds)
	res, err := opt.Solve(solveCtx, matrices, req.Alpha, train.MinEdge, train.MaxEdge)
	if err != nil {
		return nil, err
	}
	s.log.Debug("solved %s: %d bins, cost %.6f, status %s",
		train.Meta.Name(), res.NumBins(), res.TotalCost, res.Status)

	// Threshold search on training transitions only.
	trainPSIs := classify.TransitionPSIs(train, res.Edges, s.epsilon)
	selector := classify.NewThresholdSelector(s.thresholds, s.beta)
	threshold, _ := selector.Select(trainPSIs, train.Labels)

	evaluator := &classify.Evaluator{
		Edges:     res.Edges,
		Threshold: threshold,
		Alpha:     req.Alpha,
		Epsilon:   s.epsilon,
		Beta:      s.beta,
	}
	trainEval, err := evaluator.Evaluate(train)
	if err != nil {
		return nil, err
	}

	rec := &models.Record{
		ID:    core.NewID().String(),
		RunID: req.RunID.String(),

		Distribution: train.Meta.Distribution,
		Days:         train.Meta.Days,
		Samples:      train.Meta.Samples,
		Ratio:        train.Meta.Ratio,
		Alpha:        req.Alpha,

		DataPrepMs: prepTime.Milliseconds(),
		BuildMs:    res.BuildTime.Milliseconds(),
		SolveMs:    res.SolveTime.Milliseconds(),
		Status:     res.Status.String(),

		Objective0: trainEval.Objective0,
		Objective1: trainEval.Objective1,
		TotalCost:  res.TotalCost,

		NumBins:       res.NumBins(),
		Edges:         res.Edges,
		BestThreshold: threshold,

		TrainAccuracy:   trainEval.Accuracy,
		TrainPrecision0: trainEval.Precision0,
		TrainRecall1:    trainEval.Recall1,
		TrainFBeta:      trainEval.InverseWeightedFBeta,

		ConfusionTN: trainEval.Confusion.TN,
		ConfusionFP: trainEval.Confusion.FP,
		ConfusionFN: trainEval.Confusion.FN,
		ConfusionTP: trainEval.Confusion.TP,

		CreatedAt: time.Now().UTC(),
	}

	for _, test := range req.Tests {
		testEval, err := evaluator.Evaluate(test)
		if err != nil {
			return nil, err
		}
		rec.TestResults = append(rec.TestResults, models.TestResult{
			Dataset:    test.Meta.Name(),
			Objective0: testEval.Objective0,
			Objective1: testEval.Objective1,
			Combined:   testEval.Combined,
			Accuracy:   testEval.Accuracy,
			Precision0: testEval.Precision0,
			Recall1:    testEval.Recall1,
			FBeta:      testEval.InverseWeightedFBeta,
		})
	}
	return rec, nil
}

package app

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"driftbin/domain/core"
	"driftbin/domain/histogram"
	"driftbin/internal"
	"driftbin/models"
	"driftbin/ports"
)

// BatchService fans independent (dataset, alpha) solves out over a bounded
// worker pool. Workers return self-contained records over a channel and one
// aggregator goroutine collects them, so no result structure is ever shared
// mutable across workers. One solve's failure is logged and skipped; the
// batch carries on.
type BatchService struct {
	reader  ports.DatasetReader
	solves  *SolveService
	sinks   []ports.ResultSink
	workers int
	log     *internal.Logger
}

// NewBatchService creates the orchestrator.
func NewBatchService(reader ports.DatasetReader, solves *SolveService, sinks []ports.ResultSink, workers int, logger *internal.Logger) *BatchService {
	if workers < 1 {
		workers = 1
	}
	return &BatchService{
		reader:  reader,
		solves:  solves,
		sinks:   sinks,
		workers: workers,
		log:     logger.WithComponent("BatchService"),
	}
}

// Failure records one solve that did not produce a record.
type Failure struct {
	Dataset string
	Alpha   float64
	Err     error
}

// Summary is the outcome of one batch run.
type Summary struct {
	RunID    core.RunID
	Records  []*models.Record
	Failures []Failure
	Elapsed  time.Duration
}

// job pairs a training source with one alpha value.
type job struct {
	trainPath string
	alpha     float64
}

// outcome is the message a worker sends to the aggregator.
type outcome struct {
	record  *models.Record
	failure *Failure
}

// Run loads the shared test datasets once, then solves every
// (training source, alpha) pair in parallel and writes the collected
// records to every sink.
func (b *BatchService) Run(ctx context.Context, trainPaths, testPaths []string, alphas []float64) (*Summary, error) {
	start := time.Now()
	runID := core.RunID(core.NewID())

	tests, err := b.loadTests(ctx, testPaths)
	if err != nil {
		return nil, err
	}

	jobs := make([]job, 0, len(trainPaths)*len(alphas))
	for _, path := range trainPaths {
		for _, alpha := range alphas {
			jobs = append(jobs, job{trainPath: path, alpha: alpha})
		}
	}
	b.log.Info("run %s: %d solves across %d workers", runID, len(jobs), b.workers)

	outcomes := make(chan outcome)
	done := make(chan struct{})
	summary := &Summary{RunID: runID}

	go func() {
		defer close(done)
		for out := range outcomes {
			if out.failure != nil {
				summary.Failures = append(summary.Failures, *out.failure)
				continue
			}
			summary.Records = append(summary.Records, out.record)
		}
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)
	for _, j := range jobs {
		j := j
		eg.Go(func() error {
			outcomes <- b.runJob(egCtx, runID, j, tests)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		close(outcomes)
		<-done
		return nil, err
	}
	close(outcomes)
	<-done

	// Workers finish in arbitrary order; sinks get stable row order.
	sort.Slice(summary.Records, func(i, k int) bool {
		a, b := summary.Records[i], summary.Records[k]
		if a.Distribution != b.Distribution {
			return a.Distribution < b.Distribution
		}
		if a.Days != b.Days {
			return a.Days < b.Days
		}
		if a.Samples != b.Samples {
			return a.Samples < b.Samples
		}
		if a.Ratio != b.Ratio {
			return a.Ratio < b.Ratio
		}
		return a.Alpha < b.Alpha
	})

	for _, sink := range b.sinks {
		if err := sink.Write(ctx, runID, summary.Records); err != nil {
			return nil, err
		}
	}

	summary.Elapsed = time.Since(start)
	b.log.Info("run %s: %d records, %d failures in %s",
		runID, len(summary.Records), len(summary.Failures), summary.Elapsed)
	return summary, nil
}

// runJob executes one solve end to end inside a worker. The worker owns its
// training dataset exclusively; test datasets are shared read-only.
func (b *BatchService) runJob(ctx context.Context, runID core.RunID, j job, tests []*histogram.Dataset) outcome {
	train, err := b.reader.Read(ctx, j.trainPath)
	if err != nil {
		b.log.Error("load %s failed: %v", j.trainPath, err)
		return outcome{failure: &Failure{Dataset: j.trainPath, Alpha: j.alpha, Err: err}}
	}

	rec, err := b.solves.Solve(ctx, SolveRequest{
		RunID: runID,
		Train: train,
		Tests: tests,
		Alpha: j.alpha,
	})
	if err != nil {
		b.log.Error("solve %s alpha=%v failed: %v", train.Meta.Name(), j.alpha, err)
		return outcome{failure: &Failure{Dataset: train.Meta.Name(), Alpha: j.alpha, Err: err}}
	}
	return outcome{record: rec}
}

func (b *BatchService) loadTests(ctx context.Context, paths []string) ([]*histogram.Dataset, error) {
	tests := make([]*histogram.Dataset, 0, len(paths))
	for _, path := range paths {
		ds, err := b.reader.Read(ctx, path)
		if err != nil {
			return nil, err
		}
		tests = append(tests, ds)
	}
	return tests, nil
}

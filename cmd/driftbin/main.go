package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"driftbin/adapters/postgres"
	"driftbin/adapters/solver/bnb"
	"driftbin/adapters/tabular"
	"driftbin/app"
	"driftbin/domain/binning"
	"driftbin/internal"
	"driftbin/internal/config"
	"driftbin/internal/report"
	"driftbin/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driftbin",
		Short: "Drift-separating histogram binning: MILP edge selection and PSI threshold classification",
	}

	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var trainPath string
	var testDir string
	var outFile string
	var reportFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Solve every training dataset against every alpha and write the results table",
		Long: `Solve the bin-edge program for every (training dataset, alpha) pair,
select the PSI threshold on training data, evaluate all held-out test sets,
and write one results row per solve.

Support bounds, bin cardinality, epsilon, alphas, beta, thresholds, worker
count, and the solve timeout come from the environment (see .env).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; explicit environment always wins.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if trainPath == "" {
				trainPath = cfg.Paths.TrainFile
			}
			if testDir == "" {
				testDir = cfg.Paths.TestDir
			}
			if outFile == "" {
				outFile = cfg.Paths.ResultsFile
			}
			if trainPath == "" {
				return fmt.Errorf("no training data: pass --train or set TRAIN_FILE")
			}
			return runBatch(cmd, cfg, trainPath, testDir, outFile, reportFile)
		},
	}

	cmd.Flags().StringVar(&trainPath, "train", "", "Training dataset file, or a directory of them")
	cmd.Flags().StringVar(&testDir, "tests", "", "Directory of held-out test datasets")
	cmd.Flags().StringVar(&outFile, "out", "", "Results workbook path (default results.xlsx)")
	cmd.Flags().StringVar(&reportFile, "report", "", "Optional markdown report path")

	return cmd
}

func runBatch(cmd *cobra.Command, cfg *config.Config, trainPath, testDir, outFile, reportFile string) error {
	logger := internal.NewDefaultLogger()

	trainPaths, err := discoverDatasets(trainPath)
	if err != nil {
		return err
	}
	var testPaths []string
	if testDir != "" {
		testPaths, err = discoverDatasets(testDir)
		if err != nil {
			return err
		}
	}

	reader := tabular.NewDataReader(cfg.Support.MinEdge, cfg.Support.MaxEdge)
	solves := app.NewSolveService(bnb.New(), app.SolveConfig{
		Bounds:       binning.Bounds{Min: cfg.Bins.MinBins, Max: cfg.Bins.MaxBins},
		Epsilon:      cfg.Model.Epsilon,
		Beta:         cfg.Model.Beta,
		Thresholds:   cfg.Model.Thresholds,
		SolveTimeout: cfg.Batch.SolveTimeout,
	}, logger)

	sinks := []ports.ResultSink{tabular.NewResultsWriter(outFile)}
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to result database: %w", err)
		}
		defer db.Close()
		repo := postgres.NewResultRepository(db)
		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		sinks = append(sinks, repo)
	}

	batch := app.NewBatchService(reader, solves, sinks, cfg.Batch.Workers, logger)
	summary, err := batch.Run(cmd.Context(), trainPaths, testPaths, cfg.Model.Alphas)
	if err != nil {
		return err
	}

	if reportFile != "" {
		failures := make([]string, 0, len(summary.Failures))
		for _, f := range summary.Failures {
			failures = append(failures, fmt.Sprintf("%s (alpha %.2f): %v", f.Dataset, f.Alpha, f.Err))
		}
		md := report.Build(summary.RunID, summary.Records, failures)
		if err := os.WriteFile(reportFile, []byte(md), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	fmt.Printf("run %s: %d records, %d failures in %s -> %s\n",
		summary.RunID, len(summary.Records), len(summary.Failures), summary.Elapsed, outFile)
	for _, f := range summary.Failures {
		fmt.Printf("  failed: %s (alpha %.2f): %v\n", f.Dataset, f.Alpha, f.Err)
	}
	return nil
}

// discoverDatasets accepts a single dataset file or a directory and returns
// the sorted list of dataset paths.
func discoverDatasets(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", path, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .csv or .xlsx datasets in %s", path)
	}
	sort.Strings(paths)
	return paths, nil
}

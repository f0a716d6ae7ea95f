package tabular

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"driftbin/domain/core"
	apperrors "driftbin/internal/errors"
	"driftbin/models"
)

// baseHeaders are the fixed per-record columns; per-test-set column groups
// follow them, one group per distinct test dataset seen in the batch.
var baseHeaders = []string{
	"run_id", "record_id", "status",
	"distribution", "days", "samples", "ratio", "alpha",
	"data_prep_ms", "build_ms", "solve_ms",
	"objective_0", "objective_1", "total_cost",
	"num_bins", "best_threshold",
	"train_accuracy", "train_precision_0", "train_recall_1", "train_f2",
	"confusion_tn", "confusion_fp", "confusion_fn", "confusion_tp",
}

var testHeaders = []string{
	"objective_0", "objective_1", "combined",
	"accuracy", "precision_0", "recall_1", "f2",
}

// ResultsWriter persists a batch run as one workbook, one row per
// (dataset, alpha) record.
type ResultsWriter struct {
	path string
}

// NewResultsWriter creates a writer targeting the given .xlsx path.
func NewResultsWriter(path string) *ResultsWriter {
	return &ResultsWriter{path: path}
}

// Write renders all records into Sheet1 and saves the workbook. Undefined
// metric values (NaN) become empty cells rather than spreadsheet errors.
func (w *ResultsWriter) Write(ctx context.Context, runID core.RunID, records []*models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	testSets := collectTestSets(records)
	headers := append([]string{}, baseHeaders...)
	for _, name := range testSets {
		for _, h := range testHeaders {
			headers = append(headers, name+"_"+h)
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return apperrors.ResultsWriteError(w.path, err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return apperrors.ResultsWriteError(w.path, err)
		}
	}

	for i, rec := range records {
		if err := w.writeRow(f, sheet, i+2, rec, testSets); err != nil {
			return apperrors.ResultsWriteError(w.path, err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return apperrors.ResultsWriteError(w.path, err)
	}
	log.Printf("[ResultsWriter] wrote %d records to %s", len(records), w.path)
	return nil
}

func (w *ResultsWriter) writeRow(f *excelize.File, sheet string, row int, rec *models.Record, testSets []string) error {
	values := []interface{}{
		rec.RunID, rec.ID, rec.Status,
		rec.Distribution, rec.Days, rec.Samples, rec.Ratio, rec.Alpha,
		rec.DataPrepMs, rec.BuildMs, rec.SolveMs,
		rec.Objective0, rec.Objective1, rec.TotalCost,
		rec.NumBins, rec.BestThreshold,
		rec.TrainAccuracy, rec.TrainPrecision0, rec.TrainRecall1, rec.TrainFBeta,
		rec.ConfusionTN, rec.ConfusionFP, rec.ConfusionFN, rec.ConfusionTP,
	}

	byName := make(map[string]models.TestResult, len(rec.TestResults))
	for _, tr := range rec.TestResults {
		byName[tr.Dataset] = tr
	}
	for _, name := range testSets {
		tr, ok := byName[name]
		if !ok {
			values = append(values, nil, nil, nil, nil, nil, nil, nil)
			continue
		}
		values = append(values,
			tr.Objective0, tr.Objective1, tr.Combined,
			tr.Accuracy, tr.Precision0, tr.Recall1, tr.FBeta)
	}

	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if fv, ok := v.(float64); ok && math.IsNaN(fv) {
			continue // undefined metric stays an empty cell
		}
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// collectTestSets returns the sorted union of test dataset names across the
// batch, so the column layout is stable regardless of record order.
func collectTestSets(records []*models.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, tr := range rec.TestResults {
			seen[tr.Dataset] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String describes the sink target, used in batch logs.
func (w *ResultsWriter) String() string {
	return fmt.Sprintf("xlsx:%s", w.path)
}

package tabular

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"driftbin/domain/core"
	"driftbin/models"
)

func sampleRecord() *models.Record {
	return &models.Record{
		ID:            "rec-1",
		RunID:         "run-1",
		Status:        "optimal",
		Distribution:  "logistic",
		Days:          30,
		Samples:       1000,
		Ratio:         70,
		Alpha:         0.5,
		Objective0:    0.01,
		Objective1:    1.25,
		TotalCost:     0.62,
		NumBins:       7,
		BestThreshold: 0.1,
		TrainAccuracy: 1.0,
		TestResults: []models.TestResult{
			{Dataset: "logistic_30_days_500_samples_70", Accuracy: 0.9, Recall1: math.NaN()},
		},
	}
}

func TestResultsWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	w := NewResultsWriter(path)

	err := w.Write(context.Background(), core.RunID("run-1"), []*models.Record{sampleRecord()})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.Equal(t, "run_id", header[0])
	assert.Contains(t, header, "best_threshold")
	assert.Contains(t, header, "logistic_30_days_500_samples_70_accuracy")

	// NaN recall on the test set must surface as an empty cell, which
	// excelize trims from the trailing row edge.
	recallCol := -1
	for i, h := range header {
		if h == "logistic_30_days_500_samples_70_recall_1" {
			recallCol = i
		}
	}
	require.GreaterOrEqual(t, recallCol, 0)
	if recallCol < len(rows[1]) {
		assert.Empty(t, rows[1][recallCol])
	}
}

func TestResultsWriter_StableColumnsAcrossRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	w := NewResultsWriter(path)

	first := sampleRecord()
	second := sampleRecord()
	second.ID = "rec-2"
	second.TestResults = []models.TestResult{
		{Dataset: "cauchy_30_days_500_samples_50", Accuracy: 0.8},
	}

	err := w.Write(context.Background(), core.RunID("run-1"), []*models.Record{first, second})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Union of test sets, sorted: cauchy columns precede logistic columns.
	header := rows[0]
	cauchyIdx, logisticIdx := -1, -1
	for i, h := range header {
		switch h {
		case "cauchy_30_days_500_samples_50_accuracy":
			cauchyIdx = i
		case "logistic_30_days_500_samples_70_accuracy":
			logisticIdx = i
		}
	}
	require.GreaterOrEqual(t, cauchyIdx, 0)
	require.GreaterOrEqual(t, logisticIdx, 0)
	assert.Less(t, cauchyIdx, logisticIdx)
}

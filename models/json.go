package models

import (
	"math"
	"time"
)

// JSON views of the record types: undefined metrics (NaN) are not valid
// JSON numbers, so they surface as explicit nulls instead.

type TestResultJSON struct {
	Dataset    string   `json:"dataset"`
	Objective0 *float64 `json:"objective_0"`
	Objective1 *float64 `json:"objective_1"`
	Combined   *float64 `json:"combined"`
	Accuracy   *float64 `json:"accuracy"`
	Precision0 *float64 `json:"precision_0"`
	Recall1    *float64 `json:"recall_1"`
	FBeta      *float64 `json:"f_beta"`
}

type RecordJSON struct {
	ID    string `json:"id"`
	RunID string `json:"run_id"`

	Distribution string  `json:"distribution"`
	Days         int     `json:"days"`
	Samples      int     `json:"samples"`
	Ratio        int     `json:"ratio"`
	Alpha        float64 `json:"alpha"`

	DataPrepMs int64  `json:"data_prep_ms"`
	BuildMs    int64  `json:"build_ms"`
	SolveMs    int64  `json:"solve_ms"`
	Status     string `json:"status"`

	Objective0 *float64 `json:"objective_0"`
	Objective1 *float64 `json:"objective_1"`
	TotalCost  *float64 `json:"total_cost"`

	NumBins       int     `json:"num_bins"`
	Edges         []int   `json:"edges"`
	BestThreshold float64 `json:"best_threshold"`

	TrainAccuracy   *float64 `json:"train_accuracy"`
	TrainPrecision0 *float64 `json:"train_precision_0"`
	TrainRecall1    *float64 `json:"train_recall_1"`
	TrainFBeta      *float64 `json:"train_f_beta"`

	ConfusionTN int `json:"confusion_tn"`
	ConfusionFP int `json:"confusion_fp"`
	ConfusionFN int `json:"confusion_fn"`
	ConfusionTP int `json:"confusion_tp"`

	TestResults []TestResultJSON `json:"test_results"`

	CreatedAt time.Time `json:"created_at"`
}

// JSONView converts a record into its JSON-safe form.
func (r *Record) JSONView() RecordJSON {
	out := RecordJSON{
		ID:              r.ID,
		RunID:           r.RunID,
		Distribution:    r.Distribution,
		Days:            r.Days,
		Samples:         r.Samples,
		Ratio:           r.Ratio,
		Alpha:           r.Alpha,
		DataPrepMs:      r.DataPrepMs,
		BuildMs:         r.BuildMs,
		SolveMs:         r.SolveMs,
		Status:          r.Status,
		Objective0:      defined(r.Objective0),
		Objective1:      defined(r.Objective1),
		TotalCost:       defined(r.TotalCost),
		NumBins:         r.NumBins,
		Edges:           r.Edges,
		BestThreshold:   r.BestThreshold,
		TrainAccuracy:   defined(r.TrainAccuracy),
		TrainPrecision0: defined(r.TrainPrecision0),
		TrainRecall1:    defined(r.TrainRecall1),
		TrainFBeta:      defined(r.TrainFBeta),
		ConfusionTN:     r.ConfusionTN,
		ConfusionFP:     r.ConfusionFP,
		ConfusionFN:     r.ConfusionFN,
		ConfusionTP:     r.ConfusionTP,
		CreatedAt:       r.CreatedAt,
	}
	for _, tr := range r.TestResults {
		out.TestResults = append(out.TestResults, TestResultJSON{
			Dataset:    tr.Dataset,
			Objective0: defined(tr.Objective0),
			Objective1: defined(tr.Objective1),
			Combined:   defined(tr.Combined),
			Accuracy:   defined(tr.Accuracy),
			Precision0: defined(tr.Precision0),
			Recall1:    defined(tr.Recall1),
			FBeta:      defined(tr.FBeta),
		})
	}
	return out
}

// JSONViews converts a record slice.
func JSONViews(records []*Record) []RecordJSON {
	out := make([]RecordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, r.JSONView())
	}
	return out
}

func defined(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

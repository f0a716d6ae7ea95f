package models

import (
	"time"
)

// TestResult holds the evaluation of fixed edges and threshold against one
// held-out test dataset.
type TestResult struct {
	Dataset    string  `db:"dataset" json:"dataset"`
	Objective0 float64 `db:"objective_0" json:"objective_0"`
	Objective1 float64 `db:"objective_1" json:"objective_1"`
	Combined   float64 `db:"combined" json:"combined"`
	Accuracy   float64 `db:"accuracy" json:"accuracy"`
	Precision0 float64 `db:"precision_0" json:"precision_0"`
	Recall1    float64 `db:"recall_1" json:"recall_1"`
	FBeta      float64 `db:"f_beta" json:"f_beta"`
}

// Record is the self-contained result of one (dataset, alpha) solve. Workers
// produce Records and hand them to the aggregator; nothing in a Record is
// shared mutable state.
type Record struct {
	ID    string `db:"id" json:"id"`
	RunID string `db:"run_id" json:"run_id"`

	Distribution string  `db:"distribution" json:"distribution"`
	Days         int     `db:"days" json:"days"`
	Samples      int     `db:"samples" json:"samples"`
	Ratio        int     `db:"ratio" json:"ratio"`
	Alpha        float64 `db:"alpha" json:"alpha"`

	DataPrepMs int64  `db:"data_prep_ms" json:"data_prep_ms"`
	BuildMs    int64  `db:"build_ms" json:"build_ms"`
	SolveMs    int64  `db:"solve_ms" json:"solve_ms"`
	Status     string `db:"status" json:"status"`

	Objective0 float64 `db:"objective_0" json:"objective_0"`
	Objective1 float64 `db:"objective_1" json:"objective_1"`
	TotalCost  float64 `db:"total_cost" json:"total_cost"`

	NumBins       int     `db:"num_bins" json:"num_bins"`
	Edges         []int   `db:"-" json:"edges"`
	BestThreshold float64 `db:"best_threshold" json:"best_threshold"`

	TrainAccuracy   float64 `db:"train_accuracy" json:"train_accuracy"`
	TrainPrecision0 float64 `db:"train_precision_0" json:"train_precision_0"`
	TrainRecall1    float64 `db:"train_recall_1" json:"train_recall_1"`
	TrainFBeta      float64 `db:"train_f_beta" json:"train_f_beta"`

	// Confusion matrix at the selected threshold on training data,
	// [[TN, FP], [FN, TP]].
	ConfusionTN int `db:"confusion_tn" json:"confusion_tn"`
	ConfusionFP int `db:"confusion_fp" json:"confusion_fp"`
	ConfusionFN int `db:"confusion_fn" json:"confusion_fn"`
	ConfusionTP int `db:"confusion_tp" json:"confusion_tp"`

	TestResults []TestResult `db:"-" json:"test_results"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

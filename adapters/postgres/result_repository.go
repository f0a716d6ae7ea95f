// Package postgres persists batch results to PostgreSQL as an optional sink
// alongside the results workbook.
package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"driftbin/domain/core"
	apperrors "driftbin/internal/errors"
	"driftbin/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS solve_records (
	id                TEXT PRIMARY KEY,
	run_id            TEXT NOT NULL,
	status            TEXT NOT NULL,
	distribution      TEXT NOT NULL,
	days              INTEGER NOT NULL,
	samples           INTEGER NOT NULL,
	ratio             INTEGER NOT NULL,
	alpha             DOUBLE PRECISION NOT NULL,
	data_prep_ms      BIGINT NOT NULL,
	build_ms          BIGINT NOT NULL,
	solve_ms          BIGINT NOT NULL,
	objective_0       DOUBLE PRECISION,
	objective_1       DOUBLE PRECISION,
	total_cost        DOUBLE PRECISION,
	num_bins          INTEGER NOT NULL,
	edges             TEXT NOT NULL,
	best_threshold    DOUBLE PRECISION NOT NULL,
	train_accuracy    DOUBLE PRECISION,
	train_precision_0 DOUBLE PRECISION,
	train_recall_1    DOUBLE PRECISION,
	train_f_beta      DOUBLE PRECISION,
	confusion_tn      INTEGER NOT NULL,
	confusion_fp      INTEGER NOT NULL,
	confusion_fn      INTEGER NOT NULL,
	confusion_tp      INTEGER NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS solve_test_results (
	record_id   TEXT NOT NULL REFERENCES solve_records(id) ON DELETE CASCADE,
	dataset     TEXT NOT NULL,
	objective_0 DOUBLE PRECISION,
	objective_1 DOUBLE PRECISION,
	combined    DOUBLE PRECISION,
	accuracy    DOUBLE PRECISION,
	precision_0 DOUBLE PRECISION,
	recall_1    DOUBLE PRECISION,
	f_beta      DOUBLE PRECISION,
	PRIMARY KEY (record_id, dataset)
);
`

// ResultRepository implements the result sink over PostgreSQL.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a PostgreSQL result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// EnsureSchema creates the result tables when missing.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return apperrors.DatabaseError(fmt.Sprintf("failed to create result schema: %v", err))
	}
	return nil
}

// Write inserts all records of one run in a single transaction. Undefined
// metrics (NaN) are stored as NULL.
func (r *ResultRepository) Write(ctx context.Context, runID core.RunID, records []*models.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.DatabaseError(fmt.Sprintf("failed to begin transaction: %v", err))
	}
	defer tx.Rollback()

	for _, rec := range records {
		if err := insertRecord(ctx, tx, rec); err != nil {
			return apperrors.DatabaseError(fmt.Sprintf("failed to insert record %s: %v", rec.ID, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.DatabaseError(fmt.Sprintf("failed to commit results: %v", err))
	}
	return nil
}

func insertRecord(ctx context.Context, tx *sqlx.Tx, rec *models.Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO solve_records (
			id, run_id, status, distribution, days, samples, ratio, alpha,
			data_prep_ms, build_ms, solve_ms,
			objective_0, objective_1, total_cost,
			num_bins, edges, best_threshold,
			train_accuracy, train_precision_0, train_recall_1, train_f_beta,
			confusion_tn, confusion_fp, confusion_fn, confusion_tp, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14,
			$15, $16, $17,
			$18, $19, $20, $21,
			$22, $23, $24, $25, $26
		)
	`,
		rec.ID, rec.RunID, rec.Status, rec.Distribution, rec.Days, rec.Samples, rec.Ratio, rec.Alpha,
		rec.DataPrepMs, rec.BuildMs, rec.SolveMs,
		nullable(rec.Objective0), nullable(rec.Objective1), nullable(rec.TotalCost),
		rec.NumBins, edgesText(rec.Edges), rec.BestThreshold,
		nullable(rec.TrainAccuracy), nullable(rec.TrainPrecision0), nullable(rec.TrainRecall1), nullable(rec.TrainFBeta),
		rec.ConfusionTN, rec.ConfusionFP, rec.ConfusionFN, rec.ConfusionTP, createdAt,
	)
	if err != nil {
		return err
	}

	for _, tr := range rec.TestResults {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO solve_test_results (
				record_id, dataset, objective_0, objective_1, combined,
				accuracy, precision_0, recall_1, f_beta
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			rec.ID, tr.Dataset,
			nullable(tr.Objective0), nullable(tr.Objective1), nullable(tr.Combined),
			nullable(tr.Accuracy), nullable(tr.Precision0), nullable(tr.Recall1), nullable(tr.FBeta),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListRecords returns every record of a run with its test results attached,
// ordered by creation time.
func (r *ResultRepository) ListRecords(ctx context.Context, runID core.RunID) ([]*models.Record, error) {
	var records []*models.Record
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, run_id, status, distribution, days, samples, ratio, alpha,
		       data_prep_ms, build_ms, solve_ms,
		       COALESCE(objective_0, 'NaN'::float8) AS objective_0,
		       COALESCE(objective_1, 'NaN'::float8) AS objective_1,
		       COALESCE(total_cost, 'NaN'::float8) AS total_cost,
		       num_bins, best_threshold,
		       COALESCE(train_accuracy, 'NaN'::float8) AS train_accuracy,
		       COALESCE(train_precision_0, 'NaN'::float8) AS train_precision_0,
		       COALESCE(train_recall_1, 'NaN'::float8) AS train_recall_1,
		       COALESCE(train_f_beta, 'NaN'::float8) AS train_f_beta,
		       confusion_tn, confusion_fp, confusion_fn, confusion_tp, created_at
		FROM solve_records
		WHERE run_id = $1
		ORDER BY created_at
	`, runID.String())
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Sprintf("failed to list records: %v", err))
	}

	for _, rec := range records {
		err := r.db.SelectContext(ctx, &rec.TestResults, `
			SELECT dataset,
			       COALESCE(objective_0, 'NaN'::float8) AS objective_0,
			       COALESCE(objective_1, 'NaN'::float8) AS objective_1,
			       COALESCE(combined, 'NaN'::float8) AS combined,
			       COALESCE(accuracy, 'NaN'::float8) AS accuracy,
			       COALESCE(precision_0, 'NaN'::float8) AS precision_0,
			       COALESCE(recall_1, 'NaN'::float8) AS recall_1,
			       COALESCE(f_beta, 'NaN'::float8) AS f_beta
			FROM solve_test_results
			WHERE record_id = $1
			ORDER BY dataset
		`, rec.ID)
		if err != nil {
			return nil, apperrors.DatabaseError(fmt.Sprintf("failed to list test results: %v", err))
		}
	}
	return records, nil
}

// nullable maps NaN to NULL so undefined metrics stay explicit in storage.
func nullable(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// edgesText renders the edge sequence as a comma-separated list.
func edgesText(edges []int) string {
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = fmt.Sprint(e)
	}
	return strings.Join(parts, ",")
}

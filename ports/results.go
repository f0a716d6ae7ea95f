package ports

import (
	"context"

	"driftbin/domain/core"
	"driftbin/models"
)

// ResultSink persists the records of one batch run. Implementations must be
// safe to call once per run with the complete record set; the aggregator is
// the only writer.
type ResultSink interface {
	Write(ctx context.Context, runID core.RunID, records []*models.Record) error
}

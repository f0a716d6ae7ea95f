package ports

import (
	"context"

	"driftbin/domain/histogram"
)

// DatasetReader loads one density matrix with trailing transition labels
// from an external source and parses its metadata from the source name.
type DatasetReader interface {
	Read(ctx context.Context, path string) (*histogram.Dataset, error)
}

// Package tabular reads density datasets from CSV or Excel sources and
// writes the combined results workbook.
package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"driftbin/domain/core"
	"driftbin/domain/histogram"
	apperrors "driftbin/internal/errors"
)

// DataReader loads one dataset file: each row holds the per-position density
// values over the configured support, plus one trailing transition label on
// every row except the first (the reference day).
type DataReader struct {
	minEdge int
	maxEdge int
}

// NewDataReader creates a reader for datasets over [minEdge, maxEdge).
func NewDataReader(minEdge, maxEdge int) *DataReader {
	return &DataReader{minEdge: minEdge, maxEdge: maxEdge}
}

// Read loads, validates, and normalizes the dataset at path. Metadata is
// parsed from the file name; a name outside the expected pattern only costs
// the metadata, not the dataset.
func (r *DataReader) Read(ctx context.Context, path string) (*histogram.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.DataSourceError(path, err)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readExcelRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, apperrors.DataSourceError(path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	meta, err := histogram.ParseMeta(name)
	if err != nil {
		log.Printf("[DataReader] name %q not parseable, keeping it as distribution only: %v", name, err)
		meta = histogram.Meta{Distribution: name}
	}

	ds, err := r.parseRows(rows, meta)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	log.Printf("[DataReader] loaded %s: %d days, %d positions", name, ds.Days(), ds.Positions())
	return ds, nil
}

// parseRows converts string cells into the normalized density matrix and the
// transition labels. The first row carries no label.
func (r *DataReader) parseRows(rows [][]string, meta histogram.Meta) (*histogram.Dataset, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need a reference day and at least one transition", core.ErrEmptyDataset)
	}
	width := r.maxEdge - r.minEdge

	densities := make([][]float64, len(rows))
	labels := make([]int, 0, len(rows)-1)
	for day, row := range rows {
		want := width
		if day > 0 {
			want = width + 1 // trailing transition label
		}
		if len(row) != want {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", core.ErrRaggedRows, day, len(row), want)
		}

		values := make([]float64, width)
		for p := 0; p < width; p++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[p]), 64)
			if err != nil {
				return nil, core.NewDataShapeError(fmt.Sprintf("row %d cell %d: %v", day, p, err))
			}
			values[p] = v
		}
		densities[day] = values

		if day > 0 {
			l, err := parseLabel(row[width])
			if err != nil {
				return nil, core.NewDataShapeError(fmt.Sprintf("row %d label: %v", day, err))
			}
			labels = append(labels, l)
		}
	}

	normalize(densities)

	ds := &histogram.Dataset{
		Meta:      meta,
		MinEdge:   r.minEdge,
		MaxEdge:   r.maxEdge,
		Densities: densities,
		Labels:    labels,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// normalize rescales every day by the reference day's total mass, the fixed
// per-dataset normalization constant.
func normalize(densities [][]float64) {
	total := 0.0
	for _, v := range densities[0] {
		total += v
	}
	if total == 0 || math.Abs(total-1) < 1e-12 {
		return
	}
	for _, row := range densities {
		for p := range row {
			row[p] /= total
		}
	}
}

func parseLabel(cell string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, err
	}
	switch v {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, fmt.Errorf("non-binary label %v", v)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows legitimately differ by the label cell
	return reader.ReadAll()
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(0))
}

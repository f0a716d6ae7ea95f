package histogram

import (
	"fmt"
	"regexp"
	"strconv"

	"driftbin/domain/core"
)

// Meta identifies a dataset, parsed from its file name.
type Meta struct {
	Distribution string
	Days         int
	Samples      int
	Ratio        int
}

// metaPattern matches {distribution}_{days}_days_{samples}_samples_{ratio}
var metaPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9-]*)_(\d+)_days_(\d+)_samples_(\d+)$`)

// ParseMeta extracts dataset metadata from a structured name such as
// "logistic_30_days_1000_samples_70".
func ParseMeta(name string) (Meta, error) {
	m := metaPattern.FindStringSubmatch(name)
	if m == nil {
		return Meta{}, fmt.Errorf("%w: %q", core.ErrBadDatasetName, name)
	}
	days, _ := strconv.Atoi(m[2])
	samples, _ := strconv.Atoi(m[3])
	ratio, _ := strconv.Atoi(m[4])
	return Meta{Distribution: m[1], Days: days, Samples: samples, Ratio: ratio}, nil
}

// Name renders the metadata back into the structured dataset name.
func (m Meta) Name() string {
	return fmt.Sprintf("%s_%d_days_%d_samples_%d", m.Distribution, m.Days, m.Samples, m.Ratio)
}

// Dataset holds one data source: a per-day density matrix over the fixed
// integer support [MinEdge, MaxEdge) plus one binary label per day-to-day
// transition. Densities are normalized so that day 0 sums to 1; the same
// normalization constant applies to every later day. Immutable after load.
type Dataset struct {
	Meta      Meta
	MinEdge   int
	MaxEdge   int
	Densities [][]float64 // days x (MaxEdge-MinEdge)
	Labels    []int       // len = days-1, 0 = stable, 1 = drifted
}

// Days returns the number of observed days.
func (d *Dataset) Days() int {
	return len(d.Densities)
}

// Positions returns B, the number of discrete boundary positions in
// [MinEdge, MaxEdge]. Each day's density row has B-1 cells.
func (d *Dataset) Positions() int {
	return d.MaxEdge - d.MinEdge + 1
}

// Validate checks the dataset shape before any model work. All violations
// surface as core.ErrDataShape wrapped with detail.
func (d *Dataset) Validate() error {
	if len(d.Densities) == 0 {
		return core.ErrEmptyDataset
	}
	if d.MaxEdge <= d.MinEdge {
		return core.NewDataShapeError(fmt.Sprintf("support [%d, %d) is empty", d.MinEdge, d.MaxEdge))
	}
	width := d.MaxEdge - d.MinEdge
	for day, row := range d.Densities {
		if len(row) != width {
			return fmt.Errorf("%w: day %d has %d cells, want %d", core.ErrRaggedRows, day, len(row), width)
		}
		for pos, v := range row {
			if v < 0 {
				return fmt.Errorf("%w: day %d position %d", core.ErrNegativeMass, day, pos)
			}
		}
	}
	if len(d.Labels) != len(d.Densities)-1 {
		return core.NewDataShapeError(fmt.Sprintf("%d labels for %d days, want days-1", len(d.Labels), len(d.Densities)))
	}
	for t, l := range d.Labels {
		if l != 0 && l != 1 {
			return core.NewDataShapeError(fmt.Sprintf("transition %d has non-binary label %d", t, l))
		}
	}
	return nil
}

// ClassCounts returns how many transitions carry each label.
func (d *Dataset) ClassCounts() (stable, drifted int) {
	for _, l := range d.Labels {
		if l == 1 {
			drifted++
		} else {
			stable++
		}
	}
	return stable, drifted
}

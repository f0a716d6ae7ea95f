package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftbin/domain/core"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_Read(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "logistic_3_days_100_samples_70.csv",
		"0.2,0.3,0.5\n"+
			"0.2,0.3,0.5,0\n"+
			"0.5,0.3,0.2,1\n")

	r := NewDataReader(300, 303)
	ds, err := r.Read(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "logistic", ds.Meta.Distribution)
	assert.Equal(t, 3, ds.Meta.Days)
	assert.Equal(t, 100, ds.Meta.Samples)
	assert.Equal(t, 70, ds.Meta.Ratio)
	assert.Equal(t, 3, ds.Days())
	assert.Equal(t, []int{0, 1}, ds.Labels)
	assert.InDelta(t, 0.2, ds.Densities[0][0], 1e-12)
}

func TestDataReader_NormalizesByReferenceDay(t *testing.T) {
	dir := t.TempDir()
	// Reference day sums to 2, so everything halves.
	path := writeCSV(t, dir, "raw_counts.csv",
		"0.4,0.6,1.0\n"+
			"1.0,0.6,0.4,1\n")

	r := NewDataReader(0, 3)
	ds, err := r.Read(context.Background(), path)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, ds.Densities[0][0], 1e-12)
	assert.InDelta(t, 0.5, ds.Densities[1][0], 1e-12)
	assert.Equal(t, "raw_counts", ds.Meta.Distribution)
}

func TestDataReader_ShapeErrors(t *testing.T) {
	dir := t.TempDir()
	r := NewDataReader(0, 3)

	t.Run("missing label cell", func(t *testing.T) {
		path := writeCSV(t, dir, "short.csv", "0.5,0.5,0\n0.5,0.5,0\n")
		_, err := r.Read(context.Background(), path)
		require.Error(t, err)
		assert.True(t, core.IsDataShapeError(err))
	})

	t.Run("non-numeric cell", func(t *testing.T) {
		path := writeCSV(t, dir, "text.csv", "0.5,abc,0\n0.5,0.5,0,1\n")
		_, err := r.Read(context.Background(), path)
		require.Error(t, err)
		assert.True(t, core.IsDataShapeError(err))
	})

	t.Run("non-binary label", func(t *testing.T) {
		path := writeCSV(t, dir, "label.csv", "0.5,0.5,0\n0.5,0.5,0,2\n")
		_, err := r.Read(context.Background(), path)
		require.Error(t, err)
		assert.True(t, core.IsDataShapeError(err))
	})

	t.Run("single row", func(t *testing.T) {
		path := writeCSV(t, dir, "one.csv", "0.5,0.5,0\n")
		_, err := r.Read(context.Background(), path)
		require.Error(t, err)
		assert.True(t, core.IsDataShapeError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := r.Read(context.Background(), filepath.Join(dir, "missing.csv"))
		assert.Error(t, err)
	})
}

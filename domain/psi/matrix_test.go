package psi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftbin/domain/core"
	"driftbin/domain/histogram"
)

const eps = 1e-8

func TestValue(t *testing.T) {
	// Identical masses contribute nothing.
	assert.Equal(t, 0.0, Value(0.3, 0.3, eps))

	// Direction of the shift does not change the sign: both factors flip.
	assert.InDelta(t, Value(0.1, 0.4, eps), Value(0.4, 0.1, eps), 1e-12)
	assert.Greater(t, Value(0.4, 0.1, eps), 0.0)

	// Smoothing keeps empty intervals finite.
	v := Value(0.5, 0, eps)
	assert.False(t, math.IsInf(v, 0))
	assert.False(t, math.IsNaN(v))
}

func TestBuildClassMatrices(t *testing.T) {
	d := &histogram.Dataset{
		MinEdge: 0,
		MaxEdge: 3,
		Densities: [][]float64{
			{0.5, 0.5, 0.0},
			{0.5, 0.5, 0.0}, // stable transition
			{0.0, 0.5, 0.5}, // drifted transition
		},
		Labels: []int{0, 1},
	}
	require.NoError(t, d.Validate())
	cache := histogram.BuildCumulative(d)

	cm, err := BuildClassMatrices(cache, d.Labels, eps)
	require.NoError(t, err)

	// The stable transition is an exact repeat: zero PSI everywhere.
	for i := 0; i < cm.B; i++ {
		for j := i + 1; j < cm.B; j++ {
			assert.InDelta(t, 0.0, cm.Stable[i][j], 1e-12, "stable[%d][%d]", i, j)
		}
	}

	// The drifted transition moved mass out of [0,1) and into [2,3).
	assert.Greater(t, cm.Drifted[0][1], 0.0)
	assert.Greater(t, cm.Drifted[2][3], 0.0)
	// The full-support interval is invariant mass, so its PSI stays zero.
	assert.InDelta(t, 0.0, cm.Drifted[0][3], 1e-9)
}

func TestBuildClassMatrices_DegenerateClass(t *testing.T) {
	d := &histogram.Dataset{
		MinEdge: 0,
		MaxEdge: 3,
		Densities: [][]float64{
			{0.5, 0.5, 0.0},
			{0.4, 0.5, 0.1},
		},
		Labels: []int{0}, // no drifted transitions at all
	}
	cache := histogram.BuildCumulative(d)

	_, err := BuildClassMatrices(cache, d.Labels, eps)
	require.Error(t, err)
	assert.True(t, core.IsDegenerateClassError(err))
}

func TestBuildClassMatrices_SingleDay(t *testing.T) {
	d := &histogram.Dataset{
		MinEdge:   0,
		MaxEdge:   3,
		Densities: [][]float64{{0.5, 0.5, 0.0}},
		Labels:    []int{},
	}
	cache := histogram.BuildCumulative(d)
	_, err := BuildClassMatrices(cache, d.Labels, eps)
	assert.True(t, core.IsDataShapeError(err))
}

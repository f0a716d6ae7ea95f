package histogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *Dataset {
	return &Dataset{
		MinEdge: 300,
		MaxEdge: 305,
		Densities: [][]float64{
			{0.1, 0.2, 0.3, 0.25, 0.15},
			{0.15, 0.25, 0.2, 0.25, 0.15},
		},
		Labels: []int{0},
	}
}

func TestBuildCumulative_IntervalSums(t *testing.T) {
	d := testDataset()
	require.NoError(t, d.Validate())

	cache := BuildCumulative(d)
	require.Equal(t, 2, cache.Days())
	require.Equal(t, 6, cache.B)

	// Full-support interval equals the total mass of the day.
	assert.InDelta(t, 1.0, cache.Interval(0, 0, 5), 1e-12)

	// Single-position intervals reproduce the raw densities.
	for p := 0; p < 5; p++ {
		assert.InDelta(t, d.Densities[0][p], cache.Interval(0, p, p+1), 1e-12)
	}

	// Arbitrary interval matches a direct sum.
	direct := d.Densities[1][1] + d.Densities[1][2] + d.Densities[1][3]
	assert.InDelta(t, direct, cache.Interval(1, 1, 4), 1e-12)
}

func TestBuildCumulative_DifferencingRoundTrip(t *testing.T) {
	d := testDataset()
	cache := BuildCumulative(d)

	// Differencing two cumulative entries sharing a left endpoint recovers
	// the per-position sum over the gap.
	for i := 0; i < 4; i++ {
		for j := i + 2; j < 6; j++ {
			diff := cache.Interval(0, i, j) - cache.Interval(0, i, j-1)
			assert.InDelta(t, d.Densities[0][j-1], diff, 1e-12)
		}
	}
}

func TestBuildCumulative_MonotonicInJ(t *testing.T) {
	d := testDataset()
	cache := BuildCumulative(d)
	for i := 0; i < 5; i++ {
		prev := math.Inf(-1)
		for j := i + 1; j < 6; j++ {
			v := cache.Interval(0, i, j)
			assert.GreaterOrEqual(t, v, prev)
			prev = v
		}
	}
}

func TestDataset_Validate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		d := &Dataset{MinEdge: 0, MaxEdge: 5}
		assert.Error(t, d.Validate())
	})

	t.Run("ragged rows", func(t *testing.T) {
		d := testDataset()
		d.Densities[1] = d.Densities[1][:3]
		assert.Error(t, d.Validate())
	})

	t.Run("negative density", func(t *testing.T) {
		d := testDataset()
		d.Densities[0][2] = -0.1
		assert.Error(t, d.Validate())
	})

	t.Run("label count mismatch", func(t *testing.T) {
		d := testDataset()
		d.Labels = []int{0, 1}
		assert.Error(t, d.Validate())
	})

	t.Run("non-binary label", func(t *testing.T) {
		d := testDataset()
		d.Labels = []int{2}
		assert.Error(t, d.Validate())
	})
}

func TestParseMeta(t *testing.T) {
	meta, err := ParseMeta("logistic_30_days_1000_samples_70")
	require.NoError(t, err)
	assert.Equal(t, Meta{Distribution: "logistic", Days: 30, Samples: 1000, Ratio: 70}, meta)

	_, err = ParseMeta("not_a_dataset_name")
	assert.Error(t, err)
}

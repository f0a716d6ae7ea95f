package report

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"driftbin/domain/core"
	"driftbin/models"
)

func TestBuild(t *testing.T) {
	records := []*models.Record{{
		Distribution:  "logistic",
		Days:          30,
		Samples:       1000,
		Ratio:         70,
		Alpha:         0.5,
		NumBins:       7,
		BestThreshold: 0.1,
		TotalCost:     0.62,
		TrainAccuracy: 1.0,
		TrainRecall1:  math.NaN(),
	}}

	md := Build(core.RunID("run-1"), records, []string{"cauchy: infeasible"})

	assert.Contains(t, md, "run-1")
	assert.Contains(t, md, "logistic_30_days_1000_samples_70")
	assert.Contains(t, md, "cauchy: infeasible")
	// NaN recall renders as an empty table cell, not "NaN".
	assert.NotContains(t, md, "NaN")
}

func TestRenderHTML(t *testing.T) {
	md := Build(core.RunID("run-1"), nil, nil)
	out := string(RenderHTML(md))
	assert.True(t, strings.Contains(out, "<h1"))
	assert.Contains(t, out, "run-1")
}

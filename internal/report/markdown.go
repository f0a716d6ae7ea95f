// Package report renders a batch run as a markdown summary and as HTML for
// the results API.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"driftbin/domain/core"
	"driftbin/models"
)

// Build renders the run summary as markdown: one table row per record plus
// a failure list.
func Build(runID core.RunID, records []*models.Record, failures []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Drift binning run %s\n\n", runID)
	fmt.Fprintf(&b, "%d records, %d failures.\n\n", len(records), len(failures))

	if len(records) > 0 {
		b.WriteString("## Results\n\n")
		b.WriteString("| dataset | alpha | bins | threshold | total cost | train acc | train recall_1 | solve ms |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, rec := range records {
			fmt.Fprintf(&b, "| %s_%d_days_%d_samples_%d | %.2f | %d | %.4f | %s | %s | %s | %d |\n",
				rec.Distribution, rec.Days, rec.Samples, rec.Ratio,
				rec.Alpha, rec.NumBins, rec.BestThreshold,
				cell(rec.TotalCost), cell(rec.TrainAccuracy), cell(rec.TrainRecall1),
				rec.SolveMs)
		}
		b.WriteString("\n")
	}

	if len(failures) > 0 {
		b.WriteString("## Failures\n\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML converts the markdown summary to an HTML fragment.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

// cell formats a metric, leaving undefined values visibly empty.
func cell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.4f", v)
}

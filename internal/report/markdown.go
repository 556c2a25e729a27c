package report

import (
	"context"
	"fmt"
	"io"

	"github.com/rmoliv/powerfit/internal/model"
)

// MarkdownReporter outputs ranked scenarios as a markdown document. The
// agent host reuses it to hand formatted results back to the model.
type MarkdownReporter struct {
	w io.Writer
}

func (r *MarkdownReporter) Report(ctx context.Context, scenarios []model.Scenario, meta ReportMeta) error {
	fmt.Fprintf(r.w, "## Sizing result\n\n")
	fmt.Fprintf(r.w, "- **Base rPerf:** %.2f\n", meta.BaseRPerf)
	if meta.Projected() {
		fmt.Fprintf(r.w, "- **Growth:** %.1f%%/year over %d years\n",
			meta.GrowthRate*100, meta.GrowthYears)
	}
	fmt.Fprintf(r.w, "- **Required rPerf:** %.2f\n\n", meta.RequiredRPerf)

	if len(scenarios) == 0 {
		fmt.Fprintf(r.w, "No viable configuration meets the requirement.\n")
		return nil
	}

	fmt.Fprintf(r.w, "| # | Model | Family | Servers | Cores/server | Utilization | Total rPerf | Surplus |\n")
	fmt.Fprintf(r.w, "|---|-------|--------|---------|--------------|-------------|-------------|---------|\n")
	for _, sc := range scenarios {
		fmt.Fprintf(r.w, "| %d | %s | %s | %d | %d | %.1f%% | %.2f | %.2f |\n",
			sc.Rank,
			sc.ModelID,
			sc.Family,
			sc.Servers,
			sc.CoresPerServer,
			sc.UtilizationPercent(),
			sc.TotalRPerf,
			sc.SurplusRPerf,
		)
	}
	return nil
}

package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rmoliv/powerfit/internal/model"
)

// TableReporter outputs ranked scenarios as a formatted terminal table.
type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) Report(ctx context.Context, scenarios []model.Scenario, meta ReportMeta) error {
	fmt.Fprintf(r.w, "\n")
	fmt.Fprintf(r.w, "PowerFit Sizing\n")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(r.w, "Base rPerf:      %.2f\n", meta.BaseRPerf)
	if meta.Projected() {
		fmt.Fprintf(r.w, "Growth:          %.1f%%/year over %d years\n",
			meta.GrowthRate*100, meta.GrowthYears)
	}
	fmt.Fprintf(r.w, "Required rPerf:  %.2f\n", meta.RequiredRPerf)
	if len(meta.Generations) > 0 {
		fmt.Fprintf(r.w, "Generations:     %s\n", strings.Join(meta.Generations, ", "))
	}
	fmt.Fprintf(r.w, "Candidates:      %d\n", meta.Candidates)
	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("=", 60))

	if len(scenarios) == 0 {
		fmt.Fprintf(r.w, "No viable configuration meets the requirement.\n\n")
		return nil
	}

	fmt.Fprintf(r.w, "%-4s %-24s %-10s %7s %10s %6s %10s %9s\n",
		"Rank", "Model", "Family", "Servers", "Cores/srv", "Util", "rPerf", "Surplus")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 88))

	for _, sc := range scenarios {
		id := sc.ModelID
		if len(id) > 24 {
			id = id[:21] + "..."
		}
		fmt.Fprintf(r.w, "#%-3d %-24s %-10s %7d %10d %5.0f%% %10.2f %9.2f\n",
			sc.Rank,
			id,
			sc.Family,
			sc.Servers,
			sc.CoresPerServer,
			sc.UtilizationPercent(),
			sc.TotalRPerf,
			sc.SurplusRPerf,
		)
	}

	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 88))

	top := scenarios[0]
	fmt.Fprintf(r.w, "\nRecommended: %s\n", top.ModelID)
	fmt.Fprintf(r.w, "  Servers:          %d\n", top.Servers)
	fmt.Fprintf(r.w, "  Cores per server: %d of %d\n", top.CoresPerServer, top.MaxCores)
	fmt.Fprintf(r.w, "  Core utilization: %.1f%%\n", top.UtilizationPercent())
	fmt.Fprintf(r.w, "  Delivered rPerf:  %.2f\n", top.TotalRPerf)
	fmt.Fprintf(r.w, "  Surplus rPerf:    %.2f\n", top.SurplusRPerf)

	fmt.Fprintf(r.w, "\n")
	return nil
}

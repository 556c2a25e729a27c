package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmoliv/powerfit/internal/model"
	"github.com/rmoliv/powerfit/internal/report"
	"github.com/rmoliv/powerfit/internal/sizing"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size replacement hardware for a given inventory",
	Long: `Computes the rPerf requirement of the given server groups and ranks
the viable target configurations. Each --server flag describes one
group of identical servers.

Example:
  powerfit size --server "S922-8c:8:4:80" --server "E950-32c:24" \
    --growth-rate 20 --growth-years 3`,
	RunE: runSize,
}

func init() {
	f := sizeCmd.Flags()
	f.StringSlice("server", nil, "server group as MODEL:CORES[:COUNT[:UTIL%]] (repeatable)")
	f.Float64("growth-rate", 0, "annual growth rate in percent")
	f.Int("growth-years", 0, "years to project growth over")

	_ = sizeCmd.MarkFlagRequired("server")
	rootCmd.AddCommand(sizeCmd)
}

func runSize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	specs, _ := cmd.Flags().GetStringSlice("server")
	lines := make([]model.InventoryLine, 0, len(specs))
	for _, spec := range specs {
		line, err := parseServerSpec(spec)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	lines = model.Merge(lines)

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	targets, err := cat.Targets(cfg.Catalog.Generations)
	if err != nil {
		return err
	}

	base, err := sizing.BaseRequirement(cat, lines)
	if err != nil {
		return err
	}

	rate, _ := cmd.Flags().GetFloat64("growth-rate")
	years, _ := cmd.Flags().GetInt("growth-years")
	required, err := sizing.ApplyGrowth(base, rate/100, years)
	if err != nil {
		return err
	}

	scenarios := newSizer().Rank(required, targets)

	meta := report.ReportMeta{
		BaseRPerf:     base,
		RequiredRPerf: required,
		GrowthRate:    rate / 100,
		GrowthYears:   years,
		Generations:   cfg.Catalog.Generations,
		CatalogPath:   cfg.Catalog.Path,
		Candidates:    len(targets),
		SkippedRows:   cat.SkippedRows(),
		GeneratedAt:   time.Now().UTC(),
	}
	return report.NewReporter(cfg.Output.Format, os.Stdout).Report(ctx, scenarios, meta)
}

// parseServerSpec parses one MODEL:CORES[:COUNT[:UTIL%]] group. Count
// defaults to 1 and utilization to 100%.
func parseServerSpec(spec string) (model.InventoryLine, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return model.InventoryLine{}, fmt.Errorf("server spec %q must be MODEL:CORES[:COUNT[:UTIL%%]]", spec)
	}

	line := model.InventoryLine{
		ModelRef:    strings.TrimSpace(parts[0]),
		Count:       1,
		Utilization: 1.0,
	}
	if line.ModelRef == "" {
		return model.InventoryLine{}, fmt.Errorf("server spec %q is missing the model id", spec)
	}

	cores, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || cores <= 0 {
		return model.InventoryLine{}, fmt.Errorf("server spec %q has an invalid core count", spec)
	}
	line.ActiveCores = cores

	if len(parts) >= 3 {
		count, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || count <= 0 {
			return model.InventoryLine{}, fmt.Errorf("server spec %q has an invalid server count", spec)
		}
		line.Count = count
	}

	if len(parts) == 4 {
		util, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || util <= 0 || util > 100 {
			return model.InventoryLine{}, fmt.Errorf("server spec %q has an invalid utilization percent", spec)
		}
		line.Utilization = util / 100
	}

	return line, nil
}

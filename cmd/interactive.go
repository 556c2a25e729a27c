package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rmoliv/powerfit/internal/report"
	"github.com/rmoliv/powerfit/internal/sizing"
	"github.com/rmoliv/powerfit/internal/tui"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Collect the inventory through guided prompts",
	Long: `Walks through the installed estate one server group at a time,
searching the catalog by model name, then sizes the replacement
hardware and prints the ranked scenarios.`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	targets, err := cat.Targets(cfg.Catalog.Generations)
	if err != nil {
		return err
	}

	wizard := tui.NewWizard(cat, os.Stdout)
	result, err := wizard.Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	wizard.RenderInventory(result.Lines)

	base, err := sizing.BaseRequirement(cat, result.Lines)
	if err != nil {
		return err
	}
	required, err := sizing.ApplyGrowth(base, result.GrowthRate, result.GrowthYears)
	if err != nil {
		return err
	}

	scenarios := newSizer().Rank(required, targets)

	meta := report.ReportMeta{
		BaseRPerf:     base,
		RequiredRPerf: required,
		GrowthRate:    result.GrowthRate,
		GrowthYears:   result.GrowthYears,
		Generations:   cfg.Catalog.Generations,
		CatalogPath:   cfg.Catalog.Path,
		Candidates:    len(targets),
		SkippedRows:   cat.SkippedRows(),
		GeneratedAt:   time.Now().UTC(),
	}
	return report.NewReporter(cfg.Output.Format, os.Stdout).Report(ctx, scenarios, meta)
}

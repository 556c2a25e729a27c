package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmoliv/powerfit/internal/model"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List or search the rPerf catalog",
	Long: `Loads the ratings CSV and prints the parsed models. Useful for
checking what the sizing commands will see, including rows that were
skipped for bad data.`,
	RunE: runCatalog,
}

func init() {
	f := catalogCmd.Flags()
	f.String("search", "", "only show models whose id contains this text")
	f.String("generation", "", "only show models of this processor generation")
	f.Bool("targets", false, "only show candidate models of the configured target generations")

	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	entries := cat.Search(search)

	generation, _ := cmd.Flags().GetString("generation")
	if generation != "" {
		filtered := make([]model.ServerModel, 0, len(entries))
		for _, e := range entries {
			if e.IsGeneration(generation) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if targetsOnly, _ := cmd.Flags().GetBool("targets"); targetsOnly {
		filtered := make([]model.ServerModel, 0, len(entries))
		for _, e := range entries {
			for _, gen := range cfg.Catalog.Generations {
				if e.IsGeneration(gen) {
					filtered = append(filtered, e)
					break
				}
			}
		}
		entries = filtered
	}

	if cfg.Output.Format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No models match.")
		return nil
	}

	fmt.Printf("%-24s %-12s %-5s %6s %9s %11s %6s\n",
		"Model", "Family", "Gen", "Cores", "rPerf", "rPerf/core", "GHz")
	fmt.Printf("%s\n", strings.Repeat("-", 78))
	for _, e := range entries {
		fmt.Printf("%-24s %-12s %-5s %6d %9.1f %11.2f %6s\n",
			e.ID, e.Family, e.Generation, e.MaxCores, e.TotalRPerf, e.PerfPerCore, e.FrequencyGHz)
	}
	fmt.Printf("\n%d of %d models", len(entries), cat.Len())
	if cat.SkippedRows() > 0 {
		fmt.Printf(" (%d rows skipped on load)", cat.SkippedRows())
	}
	fmt.Println()

	return nil
}

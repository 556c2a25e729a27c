package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmoliv/powerfit/internal/catalog"
	"github.com/rmoliv/powerfit/internal/config"
	"github.com/rmoliv/powerfit/internal/sizing"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "powerfit",
	Short: "IBM Power server consolidation sizing",
	Long: `PowerFit sizes replacement hardware for an installed IBM Power estate.

It converts the current servers into an rPerf requirement, optionally
projects growth, and ranks the fullest viable configuration of every
target model family.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: powerfit.yaml)")

	// Global flags that map to config. Unmarshal writes unchanged flag
	// defaults into cfg, so they must equal the config defaults.
	defaults := config.Default()
	rootCmd.PersistentFlags().String("catalog", defaults.Catalog.Path, "path to the rPerf ratings CSV")
	rootCmd.PersistentFlags().String("delimiter", defaults.Catalog.Delimiter, "CSV field separator")
	rootCmd.PersistentFlags().StringSlice("generations", defaults.Catalog.Generations, "target processor generations")
	rootCmd.PersistentFlags().StringP("output", "o", defaults.Output.Format, "output format: table, json, markdown")

	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("catalog.delimiter", rootCmd.PersistentFlags().Lookup("delimiter"))
	_ = viper.BindPFlag("catalog.generations", rootCmd.PersistentFlags().Lookup("generations"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
}

func loadConfig() error {
	// Start with defaults
	cfg = config.Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("powerfit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.powerfit")
	}

	// Environment variable overrides
	viper.SetEnvPrefix("POWERFIT")
	viper.AutomaticEnv()

	// Read config file (not an error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return cfg.Validate()
}

func loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.DelimiterRune())
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

func newSizer() *sizing.Sizer {
	s := sizing.NewSizer()
	s.UtilizationFloor = cfg.Sizing.UtilizationFloor
	s.MaxResults = cfg.Sizing.TopN
	return s
}

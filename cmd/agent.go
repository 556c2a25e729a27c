package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rmoliv/powerfit/internal/agent"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Chat with a sizing assistant",
	Long: `Starts a conversational assistant that collects the inventory in
natural language and calls the sizing engine as a tool. Requires the
ANTHROPIC_API_KEY environment variable (a .env file is honored).`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	targets, err := cat.Targets(cfg.Catalog.Generations)
	if err != nil {
		return err
	}

	tool := agent.NewTool(cat, targets, newSizer())
	a := agent.New(cfg.Agent, apiKey, tool, os.Stdin, os.Stdout)
	return a.Run(ctx)
}

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/rmoliv/powerfit/internal/config"
	"github.com/rmoliv/powerfit/internal/logger"
	"github.com/rmoliv/powerfit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sizing HTTP API",
	Long: `Loads the catalog once and serves sizing requests over HTTP.

Endpoints:
  POST /api/v1/sizing   compute ranked scenarios for an inventory
  GET  /api/v1/catalog  list or search the loaded catalog
  GET  /healthz         liveness probe
  GET  /metrics         Prometheus metrics`,
	RunE: runServe,
}

func init() {
	defaults := config.Default()
	f := serveCmd.Flags()
	f.String("host", defaults.Server.Host, "address to bind")
	f.Int("port", defaults.Server.Port, "port to listen on")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	slog.Info("catalog loaded",
		"path", cfg.Catalog.Path,
		"models", cat.Len(),
		"skipped_rows", cat.SkippedRows())

	targets, err := cat.Targets(cfg.Catalog.Generations)
	if err != nil {
		return err
	}
	slog.Info("target models selected",
		"generations", cfg.Catalog.Generations,
		"candidates", len(targets))

	h := server.NewHandler(cfg, cat, targets)
	srv := server.New(cfg, h)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr())
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

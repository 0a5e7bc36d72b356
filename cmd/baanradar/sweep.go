package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwillemsen/baanradar/internal/probe"
	"github.com/jwillemsen/baanradar/internal/store"
	"github.com/jwillemsen/baanradar/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Probe stored vacancies once, delete dead ones, then exit",
	Long:  "One-shot sweep: probes every stored vacancy URL and deletes the ones whose posting is definitely gone.",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	sweeper := sweep.NewSweeper(sqlStore, probe.NewHTTPProber(httpClient), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := sweeper.Sweep(ctx)
	if err != nil {
		logger.Error("sweep failed", "error", err)
		os.Exit(1)
	}

	logger.Info("sweep complete", "probed", res.Probed, "removed", res.Removed)
	return nil
}

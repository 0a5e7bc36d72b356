package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwillemsen/baanradar/internal/crawl"
	"github.com/jwillemsen/baanradar/internal/probe"
	"github.com/jwillemsen/baanradar/internal/scheduler"
	"github.com/jwillemsen/baanradar/internal/store"
	"github.com/jwillemsen/baanradar/internal/sweep"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scrape and sweep daemon",
	Long:  "Runs the scheduler daemon: scrapes all brokers and sweeps retired postings at the configured times. Blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"db_path", cfg.DBPath,
		"brokers", len(cfg.Brokers),
		"scrape_times", len(cfg.Schedule.ScrapeTimes),
		"sweep_times", len(cfg.Schedule.SweepTimes),
	)

	sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	scrapers := buildScrapers(cfg, httpClient, logger)
	if len(scrapers) == 0 {
		logger.Error("no brokers to scrape")
		os.Exit(1)
	}

	engine := buildEngine(cfg, sqlStore, httpClient, logger)
	crawler := crawl.NewCrawler(scrapers, engine, logger)
	sweeper := sweep.NewSweeper(sqlStore, probe.NewHTTPProber(httpClient), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The sweep is registered first so that a sweep and a scrape sharing a
	// fire time retire dead postings before new ones come in.
	jobs := []scheduler.Job{
		{
			Name:  "sweep",
			Times: cfg.Schedule.SweepTimes,
			Run: func(ctx context.Context) error {
				_, err := sweeper.Sweep(ctx)
				return err
			},
		},
		{
			Name:  "scrape",
			Times: cfg.Schedule.ScrapeTimes,
			Run: func(ctx context.Context) error {
				_, err := crawler.Crawl(ctx)
				return err
			},
		},
	}

	sched := scheduler.NewScheduler(jobs, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}

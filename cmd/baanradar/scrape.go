package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwillemsen/baanradar/internal/crawl"
	"github.com/jwillemsen/baanradar/internal/model"
	"github.com/jwillemsen/baanradar/internal/store"
)

var scrapeDryRun bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape all brokers once, then exit",
	Long:  "One-shot crawl: scrapes every enabled broker, reconciles the candidates into the store, and exits.",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "scrape and reconcile without persisting anything")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var vacancyStore model.VacancyStore
	if scrapeDryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		vacancyStore = store.NewNopStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		vacancyStore = sqlStore
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	scrapers := buildScrapers(cfg, httpClient, logger)
	if len(scrapers) == 0 {
		logger.Error("no brokers to scrape")
		os.Exit(1)
	}

	engine := buildEngine(cfg, vacancyStore, httpClient, logger)
	crawler := crawl.NewCrawler(scrapers, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := crawler.Crawl(ctx)
	if err != nil {
		logger.Error("crawl failed", "error", err)
		os.Exit(1)
	}

	logger.Info("crawl complete", "created", res.Created, "duplicates", res.Duplicates)
	return nil
}

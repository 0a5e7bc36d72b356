package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwillemsen/baanradar/internal/config"
	"github.com/jwillemsen/baanradar/internal/geo"
	"github.com/jwillemsen/baanradar/internal/model"
	"github.com/jwillemsen/baanradar/internal/notifier"
	"github.com/jwillemsen/baanradar/internal/ratelimit"
	"github.com/jwillemsen/baanradar/internal/reconcile"
	"github.com/jwillemsen/baanradar/internal/retry"
	"github.com/jwillemsen/baanradar/internal/scraper"
	"github.com/jwillemsen/baanradar/internal/skills"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "baanradar",
	Short: "Job radar for Dutch broker sites",
	Long:  "BaanRadar scrapes Dutch job brokers on a schedule, deduplicates the postings, and keeps a local vacancy database.",
	// Default to `start` so that `baanradar` with no args runs the daemon.
	// This preserves compatibility with systemd unit files that invoke the binary directly.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: BAANRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > BAANRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("BAANRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func setupMatcher(cfg *config.Config, logger *slog.Logger) model.SkillMatcher {
	ai := cfg.Skills.AI
	if ai.Enabled {
		logger.Info("using openai skill matcher", "model", ai.Model)
		return skills.NewOpenAIMatcher(ai.APIKey, ai.BaseURL, ai.Model, cfg.Skills.Catalog)
	}
	return skills.NewKeywordMatcher(cfg.Skills.Catalog)
}

func createScraper(broker config.BrokerConfig, httpClient *http.Client, logger *slog.Logger) (model.BrokerScraper, bool) {
	switch broker.Name {
	case "Yacht":
		return scraper.NewYachtScraper(httpClient, logger), true
	case "JobBird":
		return scraper.NewJobBirdScraper(httpClient, logger), true
	case "JobCatcher":
		return scraper.NewJobCatcherScraper(httpClient, logger), true
	default:
		logger.Warn("unsupported broker, skipping", "broker", broker.Name)
		return nil, false
	}
}

// buildScrapers creates one decorated scraper per enabled broker:
// base scraper → retry → rate limit.
func buildScrapers(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.BrokerScraper {
	var scrapers []model.BrokerScraper
	for _, broker := range cfg.Brokers {
		if !broker.Enabled {
			continue
		}

		s, ok := createScraper(broker, httpClient, logger)
		if !ok {
			continue
		}

		s = retry.NewRetryScraper(s, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
		limiter := ratelimit.NewBrokerRateLimiter(cfg.RateLimit.MinDelayFor(broker.Name))
		s = ratelimit.NewRateLimitedScraper(s, limiter)

		scrapers = append(scrapers, s)
		logger.Info("registered broker", "broker", broker.Name)
	}
	return scrapers
}

func buildEngine(cfg *config.Config, store model.VacancyStore, httpClient *http.Client, logger *slog.Logger) *reconcile.Engine {
	geocoder := geo.NewMapQuest(cfg.Geocoder.BaseURL, cfg.Geocoder.APIKey, httpClient)
	resolver := geo.NewResolver(store, geocoder, logger)
	matcher := setupMatcher(cfg, logger)
	n := setupNotifier(cfg, httpClient, logger)
	return reconcile.NewEngine(store, resolver, matcher, n, logger)
}

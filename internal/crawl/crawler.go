package crawl

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jwillemsen/baanradar/internal/model"
	"github.com/jwillemsen/baanradar/internal/reconcile"
)

// Crawler runs every broker scraper concurrently and hands the combined
// candidates to the reconcile engine. A failing broker is logged and skipped;
// the run continues with whatever the other brokers returned.
type Crawler struct {
	scrapers []model.BrokerScraper
	engine   *reconcile.Engine
	logger   *slog.Logger
}

// NewCrawler creates a crawler over the given scrapers.
func NewCrawler(scrapers []model.BrokerScraper, engine *reconcile.Engine, logger *slog.Logger) *Crawler {
	return &Crawler{
		scrapers: scrapers,
		engine:   engine,
		logger:   logger,
	}
}

type scrapeOutcome struct {
	broker   string
	postings []model.Posting
	err      error
}

// Crawl scrapes all brokers in parallel and reconciles the results.
func (c *Crawler) Crawl(ctx context.Context) (reconcile.Result, error) {
	outcomes := make(chan scrapeOutcome, len(c.scrapers))

	var wg sync.WaitGroup
	for _, s := range c.scrapers {
		wg.Add(1)
		go func(s model.BrokerScraper) {
			defer wg.Done()
			postings, err := s.FetchPostings(ctx)
			outcomes <- scrapeOutcome{broker: s.Broker(), postings: postings, err: err}
		}(s)
	}
	wg.Wait()
	close(outcomes)

	var candidates []model.Posting
	for outcome := range outcomes {
		if outcome.err != nil {
			c.logger.Error("broker scrape failed",
				"broker", outcome.broker,
				"error", outcome.err,
			)
			continue
		}
		c.logger.Info("broker scraped",
			"broker", outcome.broker,
			"postings", len(outcome.postings),
		)
		candidates = append(candidates, outcome.postings...)
	}

	return c.engine.Reconcile(ctx, candidates)
}

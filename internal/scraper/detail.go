package scraper

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// defaultDetailFanout bounds concurrent detail-page fetches per broker.
// Per-posting latency dominates a scrape, so details are fetched in parallel.
const defaultDetailFanout = 8

// eachDetailPage fetches the detail page for every URL concurrently and calls
// fn with the parsed document. A failed fetch is logged and skipped; fn is
// never called for it. Distinct indices make fn writes race-free without
// locking.
func eachDetailPage(ctx context.Context, client *http.Client, logger *slog.Logger, broker string, fanout int, urls []string, fn func(i int, doc *goquery.Document)) {
	if fanout <= 0 {
		fanout = defaultDetailFanout
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fanout)
	for i, u := range urls {
		g.Go(func() error {
			doc, err := fetchDocument(ctx, client, u)
			if err != nil {
				logger.Warn("skipping posting, detail page failed",
					"broker", broker,
					"url", u,
					"error", err,
				)
				return nil
			}
			fn(i, doc)
			return nil
		})
	}
	g.Wait()
}

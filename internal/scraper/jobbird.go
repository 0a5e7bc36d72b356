package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jwillemsen/baanradar/internal/model"
)

const (
	jobbirdSearchURL = "https://www.jobbird.com/nl/vacature?s=ict"
	jobbirdURLPrefix = "https://www.jobbird.com"

	// jobbirdMaxPages caps pagination in case the result pager never runs
	// out (the site serves the last page for any higher page number).
	jobbirdMaxPages = 25
)

// jobbirdListing is one vacancy card from a result page, before the detail
// page has been joined.
type jobbirdListing struct {
	url      string
	title    string
	company  string
	location string
	hours    string
	date     string
}

// JobBirdScraper scrapes the JobBird board, which has no JSON API: both the
// paginated result list and the detail pages are plain HTML.
type JobBirdScraper struct {
	searchURL string
	client    *http.Client
	logger    *slog.Logger
	fanout    int
}

// NewJobBirdScraper creates a scraper for the JobBird board.
func NewJobBirdScraper(client *http.Client, logger *slog.Logger) *JobBirdScraper {
	return &JobBirdScraper{
		searchURL: jobbirdSearchURL,
		client:    client,
		logger:    logger,
		fanout:    defaultDetailFanout,
	}
}

// Broker implements model.BrokerScraper.
func (s *JobBirdScraper) Broker() string { return "JobBird" }

// FetchPostings pages through the result list until a page comes back empty,
// then joins the detail pages concurrently.
func (s *JobBirdScraper) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	var listings []jobbirdListing

	for page := 1; page <= jobbirdMaxPages; page++ {
		url := fmt.Sprintf("%s&page=%d", s.searchURL, page)
		doc, err := fetchDocument(ctx, s.client, url)
		if err != nil {
			return nil, fmt.Errorf("jobbird listing page %d: %w", page, err)
		}

		pageListings := jobbirdListings(doc)
		if len(pageListings) == 0 {
			break
		}
		listings = append(listings, pageListings...)
	}
	s.logger.Info("scraping listing", "broker", s.Broker(), "cards", len(listings))

	postings := make([]model.Posting, len(listings))
	found := make([]bool, len(listings))
	urls := make([]string, len(listings))
	for i, l := range listings {
		urls[i] = l.url
	}

	eachDetailPage(ctx, s.client, s.logger, s.Broker(), s.fanout, urls, func(i int, doc *goquery.Document) {
		l := listings[i]
		postings[i] = model.Posting{
			URL:      l.url,
			Title:    l.title,
			Company:  l.company,
			Broker:   s.Broker(),
			Hours:    ParseHours(l.hours),
			PostedAt: ParsePostingDate(l.date),
			Location: NormalizeLocation(l.location),
			About:    jobbirdAbout(doc),
		}
		found[i] = true
	})

	result := make([]model.Posting, 0, len(postings))
	for i, p := range postings {
		if found[i] {
			result = append(result, p)
		}
	}
	s.logger.Info("scrape finished", "broker", s.Broker(), "postings", len(result))
	return result, nil
}

// jobbirdListings extracts the vacancy cards from one result page. Cards
// without a detail link are ignored.
func jobbirdListings(doc *goquery.Document) []jobbirdListing {
	var listings []jobbirdListing
	doc.Find("article.vacancy-card").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a.vacancy-card__title")
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = jobbirdURLPrefix + href
		}
		listings = append(listings, jobbirdListing{
			url:      href,
			title:    strings.TrimSpace(link.Text()),
			company:  strings.TrimSpace(card.Find(".vacancy-card__company").Text()),
			location: strings.TrimSpace(card.Find(".vacancy-card__location").Text()),
			hours:    strings.TrimSpace(card.Find(".vacancy-card__hours").Text()),
			date:     strings.TrimSpace(card.Find(".vacancy-card__date").Text()),
		})
	})
	return listings
}

func jobbirdAbout(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("section.vacancy-description").First().Text())
}

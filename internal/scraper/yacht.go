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
	yachtSearchURL = "https://www.yacht.nl/vacatures?_hn:type=resource&_hn:ref=r2_r1_r1&vakgebiedProf=IT"
	yachtURLPrefix = "https://www.yacht.nl"
)

// yachtResponse is the paged Yacht vacancy search API response.
type yachtResponse struct {
	CurrentPage int            `json:"currentPage"`
	Pages       int            `json:"pages"`
	Vacancies   []yachtVacancy `json:"vacancies"`
}

type yachtVacancy struct {
	DetailURL string    `json:"detailUrl"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Date      string    `json:"date"`
	Meta      yachtMeta `json:"meta"`
}

type yachtMeta struct {
	Hours    string `json:"hours"`
	Location string `json:"location"`
	Salary   string `json:"salary"`
}

// YachtScraper scrapes IT vacancies from the Yacht search API, joining each
// hit with its HTML detail page for the about text.
type YachtScraper struct {
	searchURL string
	client    *http.Client
	logger    *slog.Logger
	fanout    int
}

// NewYachtScraper creates a scraper for the Yacht vacancy board.
func NewYachtScraper(client *http.Client, logger *slog.Logger) *YachtScraper {
	return &YachtScraper{
		searchURL: yachtSearchURL,
		client:    client,
		logger:    logger,
		fanout:    defaultDetailFanout,
	}
}

// Broker implements model.BrokerScraper.
func (s *YachtScraper) Broker() string { return "Yacht" }

// FetchPostings walks every result page of the search API, then fetches the
// detail pages concurrently. A posting whose detail page fails is skipped;
// a failed listing request fails the whole run.
func (s *YachtScraper) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	var raw []yachtVacancy

	pages := 1
	for page := 1; page <= pages; page++ {
		var resp yachtResponse
		url := fmt.Sprintf("%s&pagina=%d", s.searchURL, page)
		if err := getJSON(ctx, s.client, url, &resp); err != nil {
			return nil, fmt.Errorf("yacht listing page %d: %w", page, err)
		}
		if page == 1 {
			pages = resp.Pages
			s.logger.Info("scraping listing", "broker", s.Broker(), "pages", pages)
		}
		raw = append(raw, resp.Vacancies...)
	}

	postings := make([]model.Posting, len(raw))
	found := make([]bool, len(raw))
	urls := make([]string, len(raw))
	for i, v := range raw {
		urls[i] = yachtCanonicalURL(v.DetailURL)
	}

	eachDetailPage(ctx, s.client, s.logger, s.Broker(), s.fanout, urls, func(i int, doc *goquery.Document) {
		v := raw[i]
		postings[i] = model.Posting{
			URL:      urls[i],
			Title:    v.Title,
			Company:  v.Company,
			Broker:   s.Broker(),
			Hours:    ParseHours(v.Meta.Hours),
			PostedAt: ParsePostingDate(v.Date),
			Location: NormalizeLocation(v.Meta.Location),
			Salary:   v.Meta.Salary,
			About:    yachtAbout(doc),
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

// yachtCanonicalURL strips tracking query parameters and makes relative
// detail links absolute. The result is the system-wide dedup key.
func yachtCanonicalURL(detailURL string) string {
	if i := strings.Index(detailURL, "?"); i >= 0 {
		detailURL = detailURL[:i]
	}
	if !strings.HasPrefix(detailURL, "http") {
		detailURL = yachtURLPrefix + detailURL
	}
	return detailURL
}

// yachtAbout extracts the vacancy body from the detail page.
func yachtAbout(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(".rich-text--vacancy").First().Text())
}

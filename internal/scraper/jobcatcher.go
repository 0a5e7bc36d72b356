package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jwillemsen/baanradar/internal/model"
)

const (
	jobcatcherSearchURL = "https://jobcatcher.nl/api2/v1/requestsearch/search?"
	jobcatcherURLPrefix = "https://www.jobcatcher.nl/opdrachten/"
)

// jobcatcherResponse is the JobCatcher request-search API response. The first
// data element carries the total amount, which drives the real fetch.
type jobcatcherResponse struct {
	Data []jobcatcherData `json:"data"`
}

type jobcatcherData struct {
	Amount int              `json:"amount"`
	List   []jobcatcherItem `json:"list"`
}

type jobcatcherItem struct {
	RequestID    json.Number `json:"requestid"`
	RoleName     string      `json:"jobrolename"`
	Requester    string      `json:"requesterpartyname"`
	Availability string      `json:"availability"`
	LocationName string      `json:"locationname"`
	PublishDate  string      `json:"publishdate"`
	MaxRate      string      `json:"maximumpurchaseprice"`
}

// JobCatcherScraper scrapes the JobCatcher aggregator. JobCatcher relists
// postings from other brokers, so URL-level dedup downstream is what keeps
// the store free of doubles.
type JobCatcherScraper struct {
	searchURL string
	urlPrefix string
	client    *http.Client
	logger    *slog.Logger
	fanout    int
}

// NewJobCatcherScraper creates a scraper for the JobCatcher board.
func NewJobCatcherScraper(client *http.Client, logger *slog.Logger) *JobCatcherScraper {
	return &JobCatcherScraper{
		searchURL: jobcatcherSearchURL,
		urlPrefix: jobcatcherURLPrefix,
		client:    client,
		logger:    logger,
		fanout:    defaultDetailFanout,
	}
}

// Broker implements model.BrokerScraper.
func (s *JobCatcherScraper) Broker() string { return "JobCatcher" }

// FetchPostings asks the search API for the result count, fetches all results
// in one page, then joins the detail pages concurrently.
func (s *JobCatcherScraper) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	count, err := s.resultCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("jobcatcher result count: %w", err)
	}
	s.logger.Info("scraping listing", "broker", s.Broker(), "results", count)

	var resp jobcatcherResponse
	if err := getJSON(ctx, s.client, s.searchURL+"itemsperpage="+strconv.Itoa(count), &resp); err != nil {
		return nil, fmt.Errorf("jobcatcher listing: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	items := resp.Data[0].List

	postings := make([]model.Posting, len(items))
	found := make([]bool, len(items))
	urls := make([]string, len(items))
	for i, item := range items {
		urls[i] = jobcatcherURL(s.urlPrefix, item)
	}

	eachDetailPage(ctx, s.client, s.logger, s.Broker(), s.fanout, urls, func(i int, doc *goquery.Document) {
		item := items[i]
		postings[i] = model.Posting{
			URL:      urls[i],
			Title:    item.RoleName,
			Company:  item.Requester,
			Broker:   s.Broker(),
			Hours:    jobcatcherHours(item.Availability),
			PostedAt: jobcatcherPublishDate(item.PublishDate),
			Location: NormalizeLocation(item.LocationName),
			Salary:   jobcatcherSalary(item.MaxRate),
			About:    jobcatcherAbout(doc),
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

func (s *JobCatcherScraper) resultCount(ctx context.Context) (int, error) {
	var resp jobcatcherResponse
	if err := getJSON(ctx, s.client, s.searchURL+"itemsperpage=0", &resp); err != nil {
		return 0, err
	}
	if len(resp.Data) == 0 {
		return 0, nil
	}
	return resp.Data[0].Amount, nil
}

// jobcatcherURL rebuilds the public detail URL from role, requester and id,
// the way the JobCatcher frontend does.
func jobcatcherURL(prefix string, item jobcatcherItem) string {
	role := strings.ReplaceAll(item.RoleName, "/", "-")
	requester := strings.ReplaceAll(item.Requester, "/", "-")
	u := prefix + role + "/" + requester + "/" + item.RequestID.String()
	u = strings.ToLower(u)
	u = strings.ReplaceAll(u, " ", "-")
	u = strings.ReplaceAll(u, "(", "%28")
	u = strings.ReplaceAll(u, ")", "%29")
	return u
}

// jobcatcherHours parses availability strings like "36,0" into whole hours.
func jobcatcherHours(availability string) *int {
	f, err := strconv.ParseFloat(strings.ReplaceAll(availability, ",", "."), 64)
	if err != nil {
		return nil
	}
	hours := int(f)
	return &hours
}

var jobcatcherDateLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func jobcatcherPublishDate(s string) *time.Time {
	for _, layout := range jobcatcherDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func jobcatcherSalary(maxRate string) string {
	if maxRate == "" {
		return ""
	}
	return maxRate + " per uur"
}

// jobcatcherAbout collects the section bodies that follow each h3 heading on
// the detail page.
func jobcatcherAbout(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("h3").Each(func(_ int, h *goquery.Selection) {
		h.Parent().NextAll().Each(func(_ int, sec *goquery.Selection) {
			b.WriteString(strings.TrimSpace(sec.Text()))
			b.WriteString("\n")
		})
		b.WriteString("\n")
	})
	return strings.TrimSpace(b.String())
}

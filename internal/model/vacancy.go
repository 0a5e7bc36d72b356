package model

import (
	"context"
	"time"
)

// Vacancy is a reconciled job posting as persisted in the store.
// Vacancies are immutable once created: a changed posting upstream is only
// picked up by retiring the old record and scraping the new one.
type Vacancy struct {
	ID       string     // surrogate id, assigned by the store
	URL      string     // canonical posting URL, unique across all brokers
	Title    string     // job title
	Company  string     // hiring company
	Broker   string     // source broker name
	Hours    *int       // weekly hours, nil when unknown
	PostedAt *time.Time // nullable (not all brokers provide this)
	About    string     // free-text description from the detail page
	Salary   string     // raw salary text, may be empty
	Location *Location  // resolved location, nil until resolution succeeds
	Skills   []Skill    // skills matched against the about text
}

// Location is a geocoded place. Name is unique; locations are shared by all
// vacancies that reference them and are never mutated after creation.
type Location struct {
	ID   string  `db:"id"`
	Name string  `db:"name"`
	Lon  float64 `db:"lon"`
	Lat  float64 `db:"lat"`
}

// Skill is an entry from the curated skill catalog.
type Skill struct {
	Name string
}

// Posting is a freshly scraped candidate record, prior to reconciliation.
// Location is still a free-text string; nothing is persisted yet.
type Posting struct {
	URL      string
	Title    string
	Company  string
	Broker   string
	Hours    *int
	PostedAt *time.Time
	Location string // free text, normalized by the scraper
	Salary   string
	About    string
}

// BrokerScraper fetches current postings from a single broker site.
type BrokerScraper interface {
	// Broker returns the broker name used in logs and stored vacancies.
	Broker() string
	// FetchPostings scrapes the broker's listing and detail pages.
	// A failed detail page drops that posting only; a failed listing
	// fetch fails the whole call.
	FetchPostings(ctx context.Context) ([]Posting, error)
}

// VacancyStore is the persistence boundary. Implementations must enforce
// uniqueness of Vacancy.URL and Location.Name at the storage level, since
// check-then-create is not atomic across concurrent callers.
type VacancyStore interface {
	// FindByURL returns the vacancy with the given URL, or nil when absent.
	FindByURL(ctx context.Context, url string) (*Vacancy, error)
	// FindLocationByName returns the location with the given name, or nil.
	FindLocationByName(ctx context.Context, name string) (*Location, error)
	// CreateVacancy persists a new vacancy and assigns its ID.
	// Returns ErrDuplicateURL when the URL already exists.
	CreateVacancy(ctx context.Context, v *Vacancy) error
	// CreateLocation persists a new location and assigns its ID.
	// Returns ErrDuplicateLocation when the name already exists.
	CreateLocation(ctx context.Context, l *Location) error
	// DeleteVacancy removes a vacancy by id.
	DeleteVacancy(ctx context.Context, id string) error
	// ListVacancies returns every stored vacancy.
	ListVacancies(ctx context.Context) ([]Vacancy, error)
}

// ProbeStatus is the outcome of a liveness probe against a vacancy URL.
type ProbeStatus int

const (
	// StatusAlive means the URL still serves the posting.
	StatusAlive ProbeStatus = iota
	// StatusGone means the URL definitively no longer exists (404/410).
	StatusGone
	// StatusUnknown means the probe itself failed; the vacancy must be
	// kept to avoid false-positive deletion.
	StatusUnknown
)

// Prober checks whether a vacancy URL is still live upstream.
type Prober interface {
	Probe(ctx context.Context, url string) (ProbeStatus, error)
}

// SkillMatcher selects the subset of the skill catalog present in a
// posting's text.
type SkillMatcher interface {
	Match(ctx context.Context, text string) ([]Skill, error)
}

// Notifier announces vacancies created during a crawl run.
type Notifier interface {
	Notify(vacancies []Vacancy) error
}

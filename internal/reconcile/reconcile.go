package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwillemsen/baanradar/internal/geo"
	"github.com/jwillemsen/baanradar/internal/model"
	"github.com/jwillemsen/baanradar/internal/scraper"
)

// Result reports what one reconcile run did to the store.
type Result struct {
	Created    int
	Duplicates int
}

// Engine merges scraped candidates into the store: create-if-absent keyed on
// URL, with location resolution and skill matching on the way in. Existing
// vacancies are never updated from a later scrape; a changed posting is
// picked up when the sweep retires the old URL.
type Engine struct {
	store    model.VacancyStore
	resolver *geo.Resolver
	matcher  model.SkillMatcher
	notifier model.Notifier
	logger   *slog.Logger
}

// NewEngine creates an engine wired with all its collaborators.
func NewEngine(
	store model.VacancyStore,
	resolver *geo.Resolver,
	matcher model.SkillMatcher,
	notifier model.Notifier,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		store:    store,
		resolver: resolver,
		matcher:  matcher,
		notifier: notifier,
		logger:   logger,
	}
}

// Reconcile processes every candidate independently. A failing candidate is
// logged and dropped for this run; its URL comes back on the next scrape and
// is retried then. Only context cancellation aborts the batch.
func (e *Engine) Reconcile(ctx context.Context, candidates []model.Posting) (Result, error) {
	var res Result
	var created []model.Vacancy

	for _, c := range candidates {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		v, err := e.reconcileOne(ctx, c)
		if err != nil {
			if errors.Is(err, model.ErrDuplicateURL) {
				// Lost a check-then-create race; same outcome as
				// finding the vacancy up front.
				res.Duplicates++
				continue
			}
			e.logger.Error("dropping candidate",
				"broker", c.Broker,
				"url", c.URL,
				"error", err,
			)
			continue
		}
		if v == nil {
			res.Duplicates++
			continue
		}
		res.Created++
		created = append(created, *v)
	}

	if len(created) > 0 && e.notifier != nil {
		if err := e.notifier.Notify(created); err != nil {
			e.logger.Error("notifying new vacancies", "error", err)
		}
	}

	e.logger.Info("reconcile finished",
		"candidates", len(candidates),
		"created", res.Created,
		"duplicates", res.Duplicates,
	)
	return res, nil
}

// reconcileOne merges a single candidate. Returns the created vacancy, or
// nil when the URL already exists.
func (e *Engine) reconcileOne(ctx context.Context, c model.Posting) (*model.Vacancy, error) {
	existing, err := e.store.FindByURL(ctx, c.URL)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", c.URL, err)
	}
	if existing != nil {
		return nil, nil
	}

	v := &model.Vacancy{
		URL:      c.URL,
		Title:    c.Title,
		Company:  c.Company,
		Broker:   c.Broker,
		Hours:    c.Hours,
		PostedAt: c.PostedAt,
		About:    c.About,
		Salary:   c.Salary,
	}

	// Scrapers normalize before emitting, but candidates can come from
	// anywhere; re-normalizing here keeps the location business key stable.
	if name := scraper.NormalizeLocation(c.Location); name != "" {
		loc, err := e.resolver.Resolve(ctx, name)
		if err != nil {
			e.logger.Warn("location resolution failed, persisting without location",
				"broker", c.Broker,
				"url", c.URL,
				"location", name,
				"error", err,
			)
		} else {
			v.Location = loc
		}
	}

	matched, err := e.matcher.Match(ctx, c.About)
	if err != nil {
		e.logger.Warn("skill matching failed, persisting without skills",
			"broker", c.Broker,
			"url", c.URL,
			"error", err,
		)
	} else {
		v.Skills = matched
	}

	if err := e.store.CreateVacancy(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

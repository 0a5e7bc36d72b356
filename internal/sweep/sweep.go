package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jwillemsen/baanradar/internal/model"
)

const defaultProbeFanout = 8

// Result reports what one sweep did.
type Result struct {
	Probed  int
	Removed int
}

// Sweeper retires vacancies whose posting has disappeared from its broker.
// It probes every stored URL and deletes only the ones that are definitely
// gone; an unreachable or erroring broker leaves its records untouched.
type Sweeper struct {
	store  model.VacancyStore
	prober model.Prober
	logger *slog.Logger
	fanout int
}

// NewSweeper creates a sweeper wired with its store and prober.
func NewSweeper(store model.VacancyStore, prober model.Prober, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:  store,
		prober: prober,
		logger: logger,
		fanout: defaultProbeFanout,
	}
}

// Sweep probes all stored vacancies concurrently and deletes the gone ones.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	vacancies, err := s.store.ListVacancies(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing vacancies: %w", err)
	}

	statuses := make([]model.ProbeStatus, len(vacancies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, v := range vacancies {
		g.Go(func() error {
			status, err := s.prober.Probe(ctx, v.URL)
			if err != nil {
				s.logger.Warn("probe failed, keeping vacancy",
					"broker", v.Broker,
					"url", v.URL,
					"error", err,
				)
			}
			statuses[i] = status
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Probed: len(vacancies)}
	for i, v := range vacancies {
		if statuses[i] != model.StatusGone {
			continue
		}
		if err := s.store.DeleteVacancy(ctx, v.ID); err != nil {
			s.logger.Error("deleting retired vacancy",
				"url", v.URL,
				"error", err,
			)
			continue
		}
		res.Removed++
		s.logger.Info("retired vacancy",
			"broker", v.Broker,
			"title", v.Title,
			"url", v.URL,
		)
	}

	s.logger.Info("sweep finished",
		"probed", res.Probed,
		"removed", res.Removed,
	)
	return res, nil
}

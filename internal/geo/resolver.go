package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwillemsen/baanradar/internal/model"
)

// Resolver maps normalized place names to persisted Locations. The store is
// consulted first so a name is only ever geocoded once; new names are
// geocoded, persisted and shared by every vacancy that mentions them.
type Resolver struct {
	store    model.VacancyStore
	geocoder Geocoder
	logger   *slog.Logger
}

// NewResolver creates a resolver backed by the given store and geocoder.
func NewResolver(store model.VacancyStore, geocoder Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Resolve returns the Location for a normalized place name, creating it on
// first sighting. When geocoding fails or finds nothing the location is
// persisted with the (0,0) sentinel instead of failing the caller; use
// Unresolved to detect it.
func (r *Resolver) Resolve(ctx context.Context, name string) (*model.Location, error) {
	existing, err := r.store.FindLocationByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up location %q: %w", name, err)
	}
	if existing != nil {
		return existing, nil
	}

	result, err := r.geocoder.Geocode(ctx, name)
	if err != nil {
		r.logger.Warn("geocoding failed, storing unresolved location",
			"name", name,
			"error", err,
		)
		result = Result{}
	}
	if !result.Found {
		r.logger.Debug("no geocoding result", "name", name)
	}

	loc := &model.Location{Name: name, Lon: result.Lon, Lat: result.Lat}
	if err := r.store.CreateLocation(ctx, loc); err != nil {
		// A concurrent candidate with the same place name won the race;
		// use the row it created.
		if errors.Is(err, model.ErrDuplicateLocation) {
			winner, ferr := r.store.FindLocationByName(ctx, name)
			if ferr != nil {
				return nil, fmt.Errorf("re-reading location %q after conflict: %w", name, ferr)
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("creating location %q: %w", name, err)
	}
	return loc, nil
}

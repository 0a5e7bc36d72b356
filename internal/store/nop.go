package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwillemsen/baanradar/internal/model"
)

// Ensure NopStore implements model.VacancyStore.
var _ model.VacancyStore = (*NopStore)(nil)

// NopStore persists nothing. Used by dry runs so a full crawl can report what
// it would create without touching the database; every candidate looks new.
type NopStore struct{}

// NewNopStore returns a NopStore.
func NewNopStore() *NopStore {
	return &NopStore{}
}

func (s *NopStore) FindByURL(context.Context, string) (*model.Vacancy, error) { return nil, nil }

func (s *NopStore) FindLocationByName(context.Context, string) (*model.Location, error) {
	return nil, nil
}

func (s *NopStore) CreateVacancy(_ context.Context, v *model.Vacancy) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

func (s *NopStore) CreateLocation(_ context.Context, l *model.Location) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (s *NopStore) DeleteVacancy(context.Context, string) error { return nil }

func (s *NopStore) ListVacancies(context.Context) ([]model.Vacancy, error) { return nil, nil }

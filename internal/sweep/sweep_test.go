package sweep

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jwillemsen/baanradar/internal/model"
)

type memStore struct {
	mu        sync.Mutex
	vacancies map[string]model.Vacancy // by ID
}

func newMemStore(vacancies ...model.Vacancy) *memStore {
	s := &memStore{vacancies: make(map[string]model.Vacancy)}
	for _, v := range vacancies {
		s.vacancies[v.ID] = v
	}
	return s
}

func (s *memStore) FindByURL(context.Context, string) (*model.Vacancy, error) { return nil, nil }

func (s *memStore) FindLocationByName(context.Context, string) (*model.Location, error) {
	return nil, nil
}

func (s *memStore) CreateVacancy(context.Context, *model.Vacancy) error { return nil }

func (s *memStore) CreateLocation(context.Context, *model.Location) error { return nil }

func (s *memStore) DeleteVacancy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vacancies, id)
	return nil
}

func (s *memStore) ListVacancies(context.Context) ([]model.Vacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Vacancy
	for _, v := range s.vacancies {
		all = append(all, v)
	}
	return all, nil
}

// mapProber answers per URL; unlisted URLs report alive.
type mapProber struct {
	mu       sync.Mutex
	statuses map[string]model.ProbeStatus
	errs     map[string]error
	probed   []string
}

func (p *mapProber) Probe(_ context.Context, url string) (model.ProbeStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = append(p.probed, url)
	if err, ok := p.errs[url]; ok {
		return model.StatusUnknown, err
	}
	if status, ok := p.statuses[url]; ok {
		return status, nil
	}
	return model.StatusAlive, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func vacancy(id, url string) model.Vacancy {
	return model.Vacancy{ID: id, URL: url, Title: "Developer", Broker: "Yacht"}
}

func TestSweepRemovesGoneOnly(t *testing.T) {
	store := newMemStore(vacancy("a", "u1"), vacancy("b", "u2"), vacancy("c", "u3"))
	prober := &mapProber{statuses: map[string]model.ProbeStatus{"u2": model.StatusGone}}

	res, err := NewSweeper(store, prober, discardLogger()).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Probed != 3 || res.Removed != 1 {
		t.Errorf("result = %+v, want 3 probed / 1 removed", res)
	}

	remaining, _ := store.ListVacancies(context.Background())
	if len(remaining) != 2 {
		t.Fatalf("store has %d vacancies, want 2", len(remaining))
	}
	for _, v := range remaining {
		if v.URL == "u2" {
			t.Error("u2 must have been deleted")
		}
	}
}

func TestSweepKeepsUnknown(t *testing.T) {
	// 500s and transport errors say nothing definite; no deletes.
	store := newMemStore(vacancy("a", "u1"), vacancy("b", "u2"))
	prober := &mapProber{
		statuses: map[string]model.ProbeStatus{"u1": model.StatusUnknown},
		errs:     map[string]error{"u2": errors.New("connection refused")},
	}

	res, err := NewSweeper(store, prober, discardLogger()).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Removed != 0 {
		t.Errorf("removed = %d, want 0", res.Removed)
	}

	remaining, _ := store.ListVacancies(context.Background())
	if len(remaining) != 2 {
		t.Errorf("store has %d vacancies, want 2 untouched", len(remaining))
	}
}

func TestSweepProbesEveryVacancy(t *testing.T) {
	store := newMemStore(vacancy("a", "u1"), vacancy("b", "u2"), vacancy("c", "u3"), vacancy("d", "u4"))
	prober := &mapProber{}

	if _, err := NewSweeper(store, prober, discardLogger()).Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(prober.probed) != 4 {
		t.Errorf("probed %d URLs, want 4", len(prober.probed))
	}
}

func TestSweepEmptyStore(t *testing.T) {
	res, err := NewSweeper(newMemStore(), &mapProber{}, discardLogger()).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Probed != 0 || res.Removed != 0 {
		t.Errorf("result = %+v, want empty", res)
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jwillemsen/baanradar/internal/model"
)

// Ensure SQLiteStore implements model.VacancyStore.
var _ model.VacancyStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS locations (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	lon  REAL NOT NULL,
	lat  REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS vacancies (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	broker      TEXT NOT NULL,
	hours       INTEGER,
	posted_at   TIMESTAMP,
	about       TEXT NOT NULL DEFAULT '',
	salary      TEXT NOT NULL DEFAULT '',
	location_id TEXT REFERENCES locations(id),
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS vacancy_skills (
	vacancy_id TEXT NOT NULL REFERENCES vacancies(id) ON DELETE CASCADE,
	skill      TEXT NOT NULL,
	PRIMARY KEY (vacancy_id, skill)
);`

// SQLiteStore persists vacancies and locations in a SQLite database.
// The UNIQUE constraints on vacancies.url and locations.name are the
// authoritative guard against duplicate creation under concurrent writers;
// the in-memory check-then-create in the engine is only an optimization.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// vacancyRow is the flat scan target for a vacancy joined with its location.
type vacancyRow struct {
	ID       string          `db:"id"`
	URL      string          `db:"url"`
	Title    string          `db:"title"`
	Company  string          `db:"company"`
	Broker   string          `db:"broker"`
	Hours    sql.NullInt64   `db:"hours"`
	PostedAt sql.NullTime    `db:"posted_at"`
	About    string          `db:"about"`
	Salary   string          `db:"salary"`
	LocID    sql.NullString  `db:"loc_id"`
	LocName  sql.NullString  `db:"loc_name"`
	LocLon   sql.NullFloat64 `db:"loc_lon"`
	LocLat   sql.NullFloat64 `db:"loc_lat"`
}

const vacancySelect = `
SELECT v.id, v.url, v.title, v.company, v.broker, v.hours, v.posted_at,
       v.about, v.salary,
       l.id AS loc_id, l.name AS loc_name, l.lon AS loc_lon, l.lat AS loc_lat
FROM vacancies v
LEFT JOIN locations l ON l.id = v.location_id`

func (r vacancyRow) toVacancy() model.Vacancy {
	v := model.Vacancy{
		ID:      r.ID,
		URL:     r.URL,
		Title:   r.Title,
		Company: r.Company,
		Broker:  r.Broker,
		About:   r.About,
		Salary:  r.Salary,
	}
	if r.Hours.Valid {
		hours := int(r.Hours.Int64)
		v.Hours = &hours
	}
	if r.PostedAt.Valid {
		t := r.PostedAt.Time
		v.PostedAt = &t
	}
	if r.LocID.Valid {
		v.Location = &model.Location{
			ID:   r.LocID.String,
			Name: r.LocName.String,
			Lon:  r.LocLon.Float64,
			Lat:  r.LocLat.Float64,
		}
	}
	return v
}

// FindByURL returns the vacancy with the given URL, or nil when absent.
func (s *SQLiteStore) FindByURL(ctx context.Context, url string) (*model.Vacancy, error) {
	var row vacancyRow
	err := s.db.GetContext(ctx, &row, vacancySelect+" WHERE v.url = ?", url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding vacancy by url: %w", err)
	}

	v := row.toVacancy()
	if err := s.loadSkills(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindLocationByName returns the location with the given name, or nil.
func (s *SQLiteStore) FindLocationByName(ctx context.Context, name string) (*model.Location, error) {
	var loc model.Location
	err := s.db.GetContext(ctx, &loc, "SELECT id, name, lon, lat FROM locations WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding location by name: %w", err)
	}
	return &loc, nil
}

// CreateVacancy persists a new vacancy with its skill set and assigns its id.
// A concurrent create with the same URL surfaces as model.ErrDuplicateURL.
func (s *SQLiteStore) CreateVacancy(ctx context.Context, v *model.Vacancy) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("creating vacancy %s: %w", v.URL, err)
	}
	defer tx.Rollback()

	var hours any
	if v.Hours != nil {
		hours = *v.Hours
	}
	var postedAt any
	if v.PostedAt != nil {
		postedAt = *v.PostedAt
	}
	var locationID any
	if v.Location != nil {
		locationID = v.Location.ID
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO vacancies (id, url, title, company, broker, hours, posted_at, about, salary, location_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING`,
		v.ID, v.URL, v.Title, v.Company, v.Broker, hours, postedAt, v.About, v.Salary, locationID)
	if err != nil {
		return fmt.Errorf("creating vacancy %s: %w", v.URL, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("creating vacancy %s: %w", v.URL, err)
	}
	if affected == 0 {
		return fmt.Errorf("creating vacancy %s: %w", v.URL, model.ErrDuplicateURL)
	}

	for _, skill := range v.Skills {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO vacancy_skills (vacancy_id, skill) VALUES (?, ?)",
			v.ID, skill.Name); err != nil {
			return fmt.Errorf("attaching skill %q to %s: %w", skill.Name, v.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("creating vacancy %s: %w", v.URL, err)
	}
	return nil
}

// CreateLocation persists a new location and assigns its id. A concurrent
// create with the same name surfaces as model.ErrDuplicateLocation.
func (s *SQLiteStore) CreateLocation(ctx context.Context, l *model.Location) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (id, name, lon, lat) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		l.ID, l.Name, l.Lon, l.Lat)
	if err != nil {
		return fmt.Errorf("creating location %q: %w", l.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("creating location %q: %w", l.Name, err)
	}
	if affected == 0 {
		return fmt.Errorf("creating location %q: %w", l.Name, model.ErrDuplicateLocation)
	}
	return nil
}

// DeleteVacancy removes a vacancy; its skill rows go with it via cascade.
func (s *SQLiteStore) DeleteVacancy(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM vacancies WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting vacancy %s: %w", id, err)
	}
	return nil
}

// ListVacancies returns every stored vacancy with locations and skills
// attached. Ordered by creation time so output is stable across calls.
func (s *SQLiteStore) ListVacancies(ctx context.Context) ([]model.Vacancy, error) {
	var rows []vacancyRow
	if err := s.db.SelectContext(ctx, &rows, vacancySelect+" ORDER BY v.created_at, v.url"); err != nil {
		return nil, fmt.Errorf("listing vacancies: %w", err)
	}

	skills, err := s.allSkills(ctx)
	if err != nil {
		return nil, err
	}

	vacancies := make([]model.Vacancy, 0, len(rows))
	for _, r := range rows {
		v := r.toVacancy()
		v.Skills = skills[v.ID]
		vacancies = append(vacancies, v)
	}
	return vacancies, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) loadSkills(ctx context.Context, v *model.Vacancy) error {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		"SELECT skill FROM vacancy_skills WHERE vacancy_id = ? ORDER BY skill", v.ID)
	if err != nil {
		return fmt.Errorf("loading skills for %s: %w", v.URL, err)
	}
	for _, name := range names {
		v.Skills = append(v.Skills, model.Skill{Name: name})
	}
	return nil
}

// allSkills loads the whole skill join table in one query to avoid an N+1
// per vacancy during listing.
func (s *SQLiteStore) allSkills(ctx context.Context) (map[string][]model.Skill, error) {
	var rows []struct {
		VacancyID string `db:"vacancy_id"`
		Skill     string `db:"skill"`
	}
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT vacancy_id, skill FROM vacancy_skills ORDER BY skill"); err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	skills := make(map[string][]model.Skill)
	for _, r := range rows {
		skills[r.VacancyID] = append(skills[r.VacancyID], model.Skill{Name: r.Skill})
	}
	return skills, nil
}

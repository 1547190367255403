package store

import (
	"database/sql"
	"fmt"

	"inkwell/internal/models"
)

// CityStore handles the cities table, which acts as a local cache of
// geocoding results.
type CityStore struct {
	db *sql.DB
}

// NewCityStore creates a new CityStore with the given database connection.
func NewCityStore(db *sql.DB) *CityStore {
	return &CityStore{db: db}
}

// FindByName retrieves a city by its unique name. Returns nil if not found.
func (s *CityStore) FindByName(name string) (*models.City, error) {
	c := &models.City{}
	err := s.db.QueryRow(`
		SELECT id, name, latitude, longitude, timezone FROM cities WHERE name = $1
	`, name).Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.Timezone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find city by name: %w", err)
	}
	return c, nil
}

// FindByID retrieves a city by id. Returns nil if not found.
func (s *CityStore) FindByID(id int64) (*models.City, error) {
	c := &models.City{}
	err := s.db.QueryRow(`
		SELECT id, name, latitude, longitude, timezone FROM cities WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.Timezone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find city by id: %w", err)
	}
	return c, nil
}

// Create inserts a newly geocoded city. Racing inserts of the same name
// collapse onto the existing row.
func (s *CityStore) Create(name string, latitude, longitude float64, timezone string) (*models.City, error) {
	c := &models.City{}
	err := s.db.QueryRow(`
		INSERT INTO cities (name, latitude, longitude, timezone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, latitude, longitude, timezone
	`, name, latitude, longitude, timezone).Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("create city: %w", err)
	}
	return c, nil
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"fuel-route-service/internal/domain"
)

// Postgres-backed implementation of the StationRepository port, for
// deployments where the station feed is seeded once via dbtool instead of
// shipping the CSV alongside the service.
type PGStationRepository struct {
	DB *sql.DB
}

func NewPGStationRepository(db *sql.DB) *PGStationRepository {
	return &PGStationRepository{DB: db}
}

// Initialize the stations and coordinate cache schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStationsQuery := `
	CREATE TABLE IF NOT EXISTS stations (
		cache_key TEXT PRIMARY KEY,
		opis_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		rack_id TEXT NOT NULL,
		retail_price DOUBLE PRECISION NOT NULL
	);
	`

	createCoordCacheQuery := `
	CREATE TABLE IF NOT EXISTS station_coords (
        cache_key TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_stations_state ON stations(state);
	`

	statements := []string{
		createStationsQuery,
		createCoordCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the stations table from an OPIS price CSV. Existing rows are
// replaced, preserving the dedupe-keep-cheapest invariant of the feed.
func SeedFromCSV(db *sql.DB, csvPath string) error {
	repo := NewCSVStationRepository(csvPath)
	stations, err := repo.ListStations()
	if err != nil {
		return fmt.Errorf("seed stations: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed stations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO stations (cache_key, opis_id, name, address, city, state, rack_id, retail_price)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (cache_key) DO UPDATE
	SET retail_price = LEAST(stations.retail_price, EXCLUDED.retail_price);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed stations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stations {
		if _, err := stmt.Exec(s.CacheKey(), s.OPISID, s.Name, s.Address, s.City, s.State, s.RackID, s.RetailPrice); err != nil {
			return fmt.Errorf("seed stations: insert key=%q: %w", s.CacheKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stations: commit tx: %w", err)
	}

	return nil
}

// Return all stations stored in the database.
func (r *PGStationRepository) ListStations() ([]*domain.Station, error) {
	if r.DB == nil {
		return nil, errors.New("pg station repository: DB is nil")
	}

	query := `
	SELECT
		opis_id,
		name,
		address,
		city,
		state,
		rack_id,
		retail_price
	FROM stations
	ORDER BY cache_key;
	`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list stations: query stations table: %w", err)
	}
	defer rows.Close()

	stations := make([]*domain.Station, 0, 64)
	for rows.Next() {
		var s domain.Station
		err := rows.Scan(&s.OPISID, &s.Name, &s.Address, &s.City, &s.State, &s.RackID, &s.RetailPrice)
		if err != nil {
			return nil, fmt.Errorf("list stations: scan row: %w", err)
		}
		stations = append(stations, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stations: row iteration: %w", err)
	}

	return stations, nil
}

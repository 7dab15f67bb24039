package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"fuel-route-service/internal/domain"
)

// SQLCoordCache is a Postgres-backed durable cache mapping station cache
// keys to coordinates. Like the SQLite variant, storage failures degrade
// to cache misses.
type SQLCoordCache struct {
	DB *sql.DB
}

func NewSQLCoordCache(db *sql.DB) *SQLCoordCache {
	return &SQLCoordCache{DB: db}
}

// Initialize the coordinate cache schema on a Postgres database.
func InitSQLCoordSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init coord cache schema: DB is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS station_coords (
        cache_key TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL
    );
	`
	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init coord cache schema: %w", err)
	}
	return nil
}

// Get fetches the cached coordinate for a station cache key.
func (s *SQLCoordCache) Get(ctx context.Context, key string) (domain.Coordinates, bool) {
	if s.DB == nil || strings.TrimSpace(key) == "" {
		return domain.Coordinates{}, false
	}

	q := `
	SELECT lat, lon
    FROM station_coords
    WHERE cache_key = $1;
	`

	var lat, lon float64
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&lat, &lon)
	if err == sql.ErrNoRows {
		return domain.Coordinates{}, false
	}
	if err != nil {
		log.Printf("coord cache read failed key=%q err=%v", key, err)
		return domain.Coordinates{}, false
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, true
}

// Set stores a coordinate for a station cache key.
func (s *SQLCoordCache) Set(ctx context.Context, key string, coords domain.Coordinates) {
	if s.DB == nil || strings.TrimSpace(key) == "" {
		return
	}

	q := `
	INSERT INTO station_coords (cache_key, lat, lon)
    VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`

	if _, err := s.DB.ExecContext(ctx, q, key, coords.Lat, coords.Lon); err != nil {
		log.Printf("coord cache write failed key=%q err=%v", key, err)
	}
}

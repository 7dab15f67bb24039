package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"fuel-route-service/internal/adapters/cache"
	"fuel-route-service/internal/adapters/mapbox"
	"fuel-route-service/internal/adapters/repositories"
	"fuel-route-service/internal/api"
	"fuel-route-service/internal/api/handlers"
	"fuel-route-service/internal/config"
	"fuel-route-service/internal/platform/db"
	"fuel-route-service/internal/ports"
	"fuel-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Mapbox, CSV or Postgres stations, a durable
// coordinate cache) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	token := os.Getenv("MAPBOX_ACCESS_TOKEN")
	if strings.TrimSpace(token) == "" {
		log.Fatal("MAPBOX_ACCESS_TOKEN is required")
	}

	port := config.Get("PORT", "8080")
	defaults := handlers.PlanDefaults{
		RangeMiles: config.GetFloat("DEFAULT_RANGE_MILES", 500),
		MPG:        config.GetFloat("DEFAULT_MPG", 10),
	}

	provider, err := mapbox.NewProvider(token)
	if err != nil {
		log.Fatal(err)
	}

	coordCache, closeCache, err := openCoordCache()
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	repo, err := openStationRepository()
	if err != nil {
		log.Fatal(err)
	}

	// Warm the coordinate cache in the background; planning works without it.
	if limit := config.GetInt("PRELOAD_STATION_LIMIT", 0); limit > 0 {
		go services.PreloadStationCoords(context.Background(), repo, coordCache, provider, limit)
	}

	router := api.NewRouter(repo, provider, coordCache, defaults)

	// Timeouts are tuned for cold-cache planning (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openCoordCache selects the durable coordinate cache backend from
// CACHE_BACKEND: sqlite (default), postgres, or redis.
func openCoordCache() (ports.CoordinateCache, func(), error) {
	switch backend := config.Get("CACHE_BACKEND", "sqlite"); backend {
	case "sqlite":
		path := config.Get("CACHE_DB_PATH", "data/station_cache.db")
		sqliteDB, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, nil, fmt.Errorf("open coord cache: sqlite %q: %w", path, err)
		}
		if err := cache.InitSqliteCoordSchema(sqliteDB); err != nil {
			sqliteDB.Close()
			return nil, nil, err
		}
		return cache.NewSqliteCoordCache(sqliteDB), func() { sqliteDB.Close() }, nil

	case "postgres":
		pgDB, err := db.Open(os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, nil, fmt.Errorf("open coord cache: %w", err)
		}
		if err := cache.InitSQLCoordSchema(pgDB); err != nil {
			pgDB.Close()
			return nil, nil, err
		}
		return cache.NewSQLCoordCache(pgDB), func() { pgDB.Close() }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: config.Get("REDIS_ADDR", "localhost:6379"),
		})
		return cache.NewRedisCoordCache(client), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("open coord cache: unknown CACHE_BACKEND %q", backend)
	}
}

// openStationRepository selects the station source from STATION_SOURCE:
// csv (default) or postgres.
func openStationRepository() (ports.StationRepository, error) {
	switch source := config.Get("STATION_SOURCE", "csv"); source {
	case "csv":
		return repositories.NewCSVStationRepository(config.Get("FUEL_DATA_PATH", "data/fuel-prices.csv")), nil

	case "postgres":
		pgDB, err := db.Open(os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, fmt.Errorf("open station repository: %w", err)
		}
		return repositories.NewPGStationRepository(pgDB), nil

	default:
		return nil, fmt.Errorf("open station repository: unknown STATION_SOURCE %q", source)
	}
}

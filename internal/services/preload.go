package services

import (
	"context"
	"log"

	"fuel-route-service/internal/ports"
)

// PreloadStationCoords warms the durable coordinate cache for up to limit
// stations that have neither an inline coordinate nor a cached one. It is
// meant to run in the background at startup; every failure is logged and
// skipped so a bad feed or provider outage never blocks serving.
func PreloadStationCoords(
	ctx context.Context,
	repo ports.StationRepository,
	cache ports.CoordinateCache,
	provider ports.GeoProvider,
	limit int,
) {
	if limit <= 0 {
		return
	}

	stations, err := repo.ListStations()
	if err != nil {
		log.Printf("coord preload skipped err=%v", err)
		return
	}

	// The limit bounds geocode attempts, not successes.
	attempts := 0
	warmed := 0
	for _, station := range stations {
		if attempts >= limit {
			break
		}
		if station.Coord != nil {
			continue
		}
		key := station.CacheKey()
		if cache != nil {
			if _, ok := cache.Get(ctx, key); ok {
				continue
			}
		}

		attempts++
		coords, err := provider.Geocode(ctx, station.GeocodeQuery())
		if err != nil {
			log.Printf("coord preload geocode failed key=%q err=%v", key, err)
			continue
		}
		if coords == nil {
			continue
		}
		if cache != nil {
			cache.Set(ctx, key, *coords)
		}
		warmed++
	}

	log.Printf("coord preload done warmed=%d attempts=%d limit=%d", warmed, attempts, limit)
}

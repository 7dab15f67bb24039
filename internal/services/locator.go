package services

import (
	"context"
	"log"
	"math"

	gocache "github.com/patrickmn/go-cache"

	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/geo"
	"fuel-route-service/internal/ports"
)

// StationLocator answers spatial queries over one planning request's
// station set and owns the coordinate resolution chain.
//
// Coordinates are resolved through the cheapest source first: the station
// itself, the request-scoped session cache, the durable cache, and only
// then the remote provider (full address, then city/state centroid).
// Remote lookups are gated by the caller's allow flag and budget.
//
// A locator belongs to a single planning request and is not safe for
// concurrent use; the durable cache behind it may be shared.
type StationLocator struct {
	stations       []*domain.Station
	sortedByPrice  []*domain.Station
	cityStateIndex map[string][]*domain.Station
	stateIndex     map[string][]*domain.Station

	cache    ports.CoordinateCache
	provider ports.GeoProvider
	session  *gocache.Cache
}

func NewStationLocator(
	stations []*domain.Station,
	durable ports.CoordinateCache,
	provider ports.GeoProvider,
) *StationLocator {
	return &StationLocator{
		stations:       stations,
		sortedByPrice:  domain.SortStationsByPrice(stations),
		cityStateIndex: domain.IndexByCityState(stations),
		stateIndex:     domain.IndexByState(stations),
		cache:          durable,
		provider:       provider,
		session:        gocache.New(gocache.NoExpiration, 0),
	}
}

// ensureCoords resolves a station coordinate through the source chain and
// reports whether a remote lookup was attempted. A failed address geocode
// falls through to the city/state centroid within the same attempt.
//
// Provider failures are logged and degrade to "no coordinate"; they never
// abort the scan that issued them.
func (l *StationLocator) ensureCoords(
	ctx context.Context,
	station *domain.Station,
	allowRemote bool,
) (*domain.Coordinates, bool) {
	if station.Coord != nil {
		return station.Coord, false
	}

	key := station.CacheKey()
	if v, ok := l.session.Get(key); ok {
		coords := v.(domain.Coordinates)
		station.Coord = &coords
		return station.Coord, false
	}
	if l.cache != nil {
		if coords, ok := l.cache.Get(ctx, key); ok {
			station.Coord = &coords
			l.session.Set(key, coords, gocache.NoExpiration)
			return station.Coord, false
		}
	}

	if !allowRemote {
		return nil, false
	}

	coords, err := l.provider.Geocode(ctx, station.GeocodeQuery())
	if err != nil {
		log.Printf("station geocode failed key=%q err=%v", key, err)
		coords = nil
	}
	if coords != nil {
		l.storeCoords(ctx, station, *coords)
		return station.Coord, true
	}

	// Looser match: city/state centroid when the precise address failed.
	centroid, err := l.provider.Geocode(ctx, station.CentroidQuery())
	if err != nil {
		log.Printf("station centroid geocode failed key=%q err=%v", key, err)
		return nil, true
	}
	if centroid == nil {
		return nil, true
	}
	l.storeCoords(ctx, station, *centroid)
	return station.Coord, true
}

func (l *StationLocator) storeCoords(ctx context.Context, station *domain.Station, coords domain.Coordinates) {
	station.Coord = &coords
	l.session.Set(station.CacheKey(), coords, gocache.NoExpiration)
	if l.cache != nil {
		l.cache.Set(ctx, station.CacheKey(), coords)
	}
}

// StationsForCityState returns the stations indexed under the given city
// and state. Missing inputs or keys yield an empty, non-nil slice.
func (l *StationLocator) StationsForCityState(city, state string) []*domain.Station {
	if domain.StateKey(city) == "" || domain.StateKey(state) == "" {
		return []*domain.Station{}
	}
	if stations, ok := l.cityStateIndex[domain.CityStateKey(city, state)]; ok {
		return stations
	}
	return []*domain.Station{}
}

// StationsForState returns the stations indexed under the given state.
// A missing input or key yields an empty, non-nil slice.
func (l *StationLocator) StationsForState(state string) []*domain.Station {
	if domain.StateKey(state) == "" {
		return []*domain.Station{}
	}
	if stations, ok := l.stateIndex[domain.StateKey(state)]; ok {
		return stations
	}
	return []*domain.Station{}
}

// CheapestNearby returns the cheapest station within radiusMiles of the
// target.
//
// The pool is scanned in ascending price order and the scan stops at the
// first in-range hit, so a station only needs its coordinate resolved if
// it is cheaper than every already-confirmed match. Each remote resolution
// attempt consumes one unit of budget. If the primary pool yields nothing
// and budget remains, a budget-sized prefix of the globally cheapest
// stations is tried as a secondary fallback.
//
// A nil candidates slice means the full station set; an empty non-nil
// slice is a genuinely empty primary pool.
func (l *StationLocator) CheapestNearby(
	ctx context.Context,
	target domain.Coordinates,
	radiusMiles float64,
	allowRemote bool,
	remoteBudget int,
	candidates []*domain.Station,
) *domain.Station {
	budgetLeft := remoteBudget

	pool := l.sortedByPrice
	if candidates != nil {
		pool = domain.SortStationsByPrice(candidates)
	}

	for _, station := range pool {
		coords, attempted := l.ensureCoords(ctx, station, allowRemote && budgetLeft > 0)
		if attempted {
			budgetLeft--
		}
		if coords == nil {
			continue
		}
		if geo.Haversine(*coords, target) <= radiusMiles {
			return station
		}
	}

	// Secondary fallback: spend the remaining budget on the globally
	// cheapest stations.
	if allowRemote && budgetLeft > 0 {
		limit := budgetLeft
		if limit > len(l.sortedByPrice) {
			limit = len(l.sortedByPrice)
		}
		for _, station := range l.sortedByPrice[:limit] {
			coords, _ := l.ensureCoords(ctx, station, true)
			if coords == nil {
				continue
			}
			if geo.Haversine(*coords, target) <= radiusMiles {
				return station
			}
		}
	}

	return nil
}

// CheapestWithCoords returns the first station in price order whose
// coordinate resolves without a remote lookup.
func (l *StationLocator) CheapestWithCoords(ctx context.Context) *domain.Station {
	for _, station := range l.sortedByPrice {
		if coords, _ := l.ensureCoords(ctx, station, false); coords != nil {
			return station
		}
	}
	return nil
}

// NearestOnRoute returns the station closest to the polyline, using only
// coordinates resolvable without remote lookups. A maxDistanceMiles of 0
// means no ceiling.
func (l *StationLocator) NearestOnRoute(
	ctx context.Context,
	polyline []domain.Coordinates,
	maxDistanceMiles float64,
) *domain.Station {
	var closest *domain.Station
	closestDistance := math.Inf(1)

	for _, station := range l.stations {
		coords, _ := l.ensureCoords(ctx, station, false)
		if coords == nil {
			continue
		}
		distance := geo.MinDistanceToPolyline(*coords, polyline)
		if maxDistanceMiles > 0 && distance > maxDistanceMiles {
			continue
		}
		if distance < closestDistance {
			closestDistance = distance
			closest = station
		}
	}
	return closest
}

// NearestToPoint returns the station closest to the target by great-circle
// distance, using only coordinates resolvable without remote lookups.
func (l *StationLocator) NearestToPoint(ctx context.Context, target domain.Coordinates) *domain.Station {
	var closest *domain.Station
	closestDistance := math.Inf(1)

	for _, station := range l.stations {
		coords, _ := l.ensureCoords(ctx, station, false)
		if coords == nil {
			continue
		}
		if d := geo.Haversine(*coords, target); d < closestDistance {
			closestDistance = d
			closest = station
		}
	}
	return closest
}

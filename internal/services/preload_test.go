package services

import (
	"context"
	"errors"
	"testing"

	"fuel-route-service/internal/adapters/mapbox"
	"fuel-route-service/internal/domain"
)

type stubStationRepo struct {
	stations []*domain.Station
	err      error
}

func (r *stubStationRepo) ListStations() ([]*domain.Station, error) {
	return r.stations, r.err
}

func TestPreloadStationCoords(t *testing.T) {
	hasCoords := testStation("1", 3.00, &domain.Coordinates{Lat: 1, Lon: 1})
	cached := testStation("2", 3.10, nil)
	needsGeocode := testStation("3", 3.20, nil)
	unresolvable := testStation("4", 3.30, nil)

	cache := newMockCoordCache()
	cache.entries[cached.CacheKey()] = domain.Coordinates{Lat: 2, Lon: 2}

	provider := &mapbox.MockGeoProvider{
		Geocodes: map[string]domain.Coordinates{
			needsGeocode.GeocodeQuery(): {Lat: 3, Lon: 3},
		},
	}

	repo := &stubStationRepo{stations: []*domain.Station{hasCoords, cached, needsGeocode, unresolvable}}
	PreloadStationCoords(context.Background(), repo, cache, provider, 10)

	// Only the two uncached, coordinate-less stations cost geocode calls.
	if provider.GeocodeCalls != 2 {
		t.Fatalf("geocode calls = %d, want 2", provider.GeocodeCalls)
	}
	if _, ok := cache.entries[needsGeocode.CacheKey()]; !ok {
		t.Fatal("resolved station should be written to the cache")
	}
	if _, ok := cache.entries[unresolvable.CacheKey()]; ok {
		t.Fatal("unresolved station should not be cached")
	}
}

func TestPreloadStationCoordsLimit(t *testing.T) {
	stations := make([]*domain.Station, 5)
	for i := range stations {
		stations[i] = testStation(string(rune('a'+i)), 3.00, nil)
	}

	provider := &mapbox.MockGeoProvider{}
	PreloadStationCoords(context.Background(), &stubStationRepo{stations: stations}, newMockCoordCache(), provider, 2)

	if provider.GeocodeCalls != 2 {
		t.Fatalf("geocode calls = %d, want limit of 2", provider.GeocodeCalls)
	}

	provider = &mapbox.MockGeoProvider{}
	PreloadStationCoords(context.Background(), &stubStationRepo{stations: stations}, newMockCoordCache(), provider, 0)
	if provider.GeocodeCalls != 0 {
		t.Fatalf("geocode calls = %d, want 0 when disabled", provider.GeocodeCalls)
	}
}

func TestPreloadStationCoordsRepoFailure(t *testing.T) {
	provider := &mapbox.MockGeoProvider{}
	PreloadStationCoords(context.Background(), &stubStationRepo{err: errors.New("no feed")}, newMockCoordCache(), provider, 10)

	if provider.GeocodeCalls != 0 {
		t.Fatalf("geocode calls = %d, want 0 after repository failure", provider.GeocodeCalls)
	}
}

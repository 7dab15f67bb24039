package services

import (
	"context"
	"fmt"
	"testing"

	"fuel-route-service/internal/adapters/mapbox"
	"fuel-route-service/internal/domain"
)

type mockCoordCache struct {
	entries map[string]domain.Coordinates
	sets    int
}

func newMockCoordCache() *mockCoordCache {
	return &mockCoordCache{entries: map[string]domain.Coordinates{}}
}

func (m *mockCoordCache) Get(_ context.Context, key string) (domain.Coordinates, bool) {
	c, ok := m.entries[key]
	return c, ok
}

func (m *mockCoordCache) Set(_ context.Context, key string, coords domain.Coordinates) {
	m.entries[key] = coords
	m.sets++
}

func testStation(id string, price float64, coord *domain.Coordinates) *domain.Station {
	return &domain.Station{
		OPISID:      id,
		Name:        "STATION " + id,
		Address:     "Exit " + id,
		City:        "Phoenix",
		State:       "AZ",
		RetailPrice: price,
		Coord:       coord,
	}
}

func TestCheapestNearbyPicksCheapestInRange(t *testing.T) {
	target := domain.Coordinates{Lat: 0, Lon: 0}

	near := domain.Coordinates{Lat: 0.1, Lon: 0}  // ~7mi
	far := domain.Coordinates{Lat: 5, Lon: 0}     // ~345mi
	nearer := domain.Coordinates{Lat: 0.05, Lon: 0}

	cheapFar := testStation("1", 2.80, &far)
	midNear := testStation("2", 3.10, &near)
	pricyNearer := testStation("3", 3.40, &nearer)

	locator := NewStationLocator(
		[]*domain.Station{pricyNearer, cheapFar, midNear},
		newMockCoordCache(),
		&mapbox.MockGeoProvider{},
	)

	got := locator.CheapestNearby(context.Background(), target, 50, false, 0, nil)
	if got == nil || got.OPISID != "2" {
		t.Fatalf("got %+v, want cheapest in-range station 2", got)
	}
}

func TestCheapestNearbyEmptyCandidatePool(t *testing.T) {
	target := domain.Coordinates{Lat: 0, Lon: 0}
	near := domain.Coordinates{Lat: 0.1, Lon: 0}
	station := testStation("1", 3.00, &near)

	locator := NewStationLocator(
		[]*domain.Station{station},
		newMockCoordCache(),
		&mapbox.MockGeoProvider{},
	)

	// An empty non-nil pool is a real restriction, not "no restriction".
	if got := locator.CheapestNearby(context.Background(), target, 50, false, 0, []*domain.Station{}); got != nil {
		t.Fatalf("got %+v, want nil for empty candidate pool", got)
	}
	if got := locator.CheapestNearby(context.Background(), target, 50, false, 0, nil); got == nil {
		t.Fatal("nil candidates should fall back to the full pool")
	}
}

func TestCheapestNearbyRespectsGeocodeBudget(t *testing.T) {
	target := domain.Coordinates{Lat: 0, Lon: 0}
	farAway := domain.Coordinates{Lat: 60, Lon: 100}

	provider := &mapbox.MockGeoProvider{Geocodes: map[string]domain.Coordinates{}}

	stations := make([]*domain.Station, 0, 10)
	for i := 0; i < 10; i++ {
		s := testStation(fmt.Sprintf("%d", i), 3.00+float64(i)/100, nil)
		provider.Geocodes[s.GeocodeQuery()] = farAway
		stations = append(stations, s)
	}

	locator := NewStationLocator(stations, newMockCoordCache(), provider)

	got := locator.CheapestNearby(context.Background(), target, 50, true, 2, stations)
	if got != nil {
		t.Fatalf("got %+v, want nil (every resolved station is out of range)", got)
	}
	if provider.GeocodeCalls != 2 {
		t.Fatalf("geocode calls = %d, want exactly 2 (the budget)", provider.GeocodeCalls)
	}
}

func TestEnsureCoordsDurableCacheHit(t *testing.T) {
	target := domain.Coordinates{Lat: 0, Lon: 0}
	station := testStation("1", 3.00, nil)

	durable := newMockCoordCache()
	durable.entries[station.CacheKey()] = domain.Coordinates{Lat: 0.1, Lon: 0}

	provider := &mapbox.MockGeoProvider{}
	locator := NewStationLocator([]*domain.Station{station}, durable, provider)

	got := locator.CheapestNearby(context.Background(), target, 50, true, 10, nil)
	if got == nil {
		t.Fatal("expected cached station to be found")
	}
	if provider.GeocodeCalls != 0 {
		t.Fatalf("geocode calls = %d, want 0 on a cache hit", provider.GeocodeCalls)
	}
	if station.Coord == nil {
		t.Fatal("cache hit should populate the station coordinate")
	}
}

func TestEnsureCoordsCentroidFallback(t *testing.T) {
	target := domain.Coordinates{Lat: 0, Lon: 0}
	station := testStation("1", 3.00, nil)

	provider := &mapbox.MockGeoProvider{
		Geocodes: map[string]domain.Coordinates{
			// Only the city/state centroid resolves; the address does not.
			station.CentroidQuery(): {Lat: 0.1, Lon: 0},
		},
	}
	durable := newMockCoordCache()
	locator := NewStationLocator([]*domain.Station{station}, durable, provider)

	got := locator.CheapestNearby(context.Background(), target, 50, true, 10, nil)
	if got == nil {
		t.Fatal("expected centroid-resolved station to be found")
	}
	if provider.GeocodeCalls != 2 {
		t.Fatalf("geocode calls = %d, want 2 (address then centroid)", provider.GeocodeCalls)
	}
	if durable.sets != 1 {
		t.Fatalf("durable cache writes = %d, want 1", durable.sets)
	}
}

func TestStationIndexLookupsReturnEmptySlices(t *testing.T) {
	locator := NewStationLocator(
		[]*domain.Station{testStation("1", 3.00, nil)},
		newMockCoordCache(),
		&mapbox.MockGeoProvider{},
	)

	if got := locator.StationsForCityState("Nowhere", "ZZ"); got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty non-nil slice", got)
	}
	if got := locator.StationsForCityState("", "AZ"); got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty non-nil slice for blank city", got)
	}
	if got := locator.StationsForState("ZZ"); got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty non-nil slice", got)
	}

	if got := locator.StationsForCityState("phoenix", "az"); len(got) != 1 {
		t.Fatalf("got %d stations, want 1 for case-insensitive match", len(got))
	}
}

func TestNearestToPointAndOnRoute(t *testing.T) {
	near := testStation("1", 3.50, &domain.Coordinates{Lat: 0.1, Lon: 0})
	far := testStation("2", 2.80, &domain.Coordinates{Lat: 3, Lon: 0})
	noCoords := testStation("3", 2.50, nil)

	locator := NewStationLocator(
		[]*domain.Station{noCoords, far, near},
		newMockCoordCache(),
		&mapbox.MockGeoProvider{},
	)

	ctx := context.Background()
	if got := locator.NearestToPoint(ctx, domain.Coordinates{Lat: 0, Lon: 0}); got == nil || got.OPISID != "1" {
		t.Fatalf("nearest to point = %+v, want station 1", got)
	}

	polyline := []domain.Coordinates{{Lat: 0, Lon: -1}, {Lat: 0, Lon: 1}}
	if got := locator.NearestOnRoute(ctx, polyline, 0); got == nil || got.OPISID != "1" {
		t.Fatalf("nearest on route = %+v, want station 1", got)
	}
	if got := locator.NearestOnRoute(ctx, polyline, 1); got != nil {
		t.Fatalf("nearest on route with 1mi ceiling = %+v, want nil", got)
	}
}

func TestCheapestWithCoords(t *testing.T) {
	withCoords := testStation("1", 3.50, &domain.Coordinates{Lat: 1, Lon: 1})
	cheapNoCoords := testStation("2", 2.50, nil)

	locator := NewStationLocator(
		[]*domain.Station{withCoords, cheapNoCoords},
		newMockCoordCache(),
		&mapbox.MockGeoProvider{},
	)

	got := locator.CheapestWithCoords(context.Background())
	if got == nil || got.OPISID != "1" {
		t.Fatalf("got %+v, want cheapest station with a resolvable coordinate", got)
	}
}

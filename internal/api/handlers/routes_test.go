package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fuel-route-service/internal/adapters/mapbox"
	"fuel-route-service/internal/api/dto"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/ports"
)

type stubStationRepo struct {
	stations []*domain.Station
	err      error
}

func (r *stubStationRepo) ListStations() ([]*domain.Station, error) {
	return r.stations, r.err
}

type stubCoordCache struct {
	entries map[string]domain.Coordinates
}

func (c *stubCoordCache) Get(_ context.Context, key string) (domain.Coordinates, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *stubCoordCache) Set(_ context.Context, key string, coords domain.Coordinates) {
	c.entries[key] = coords
}

func newTestHandler(repo ports.StationRepository, provider ports.GeoProvider) *RouteHandler {
	return &RouteHandler{
		Repo:     repo,
		Provider: provider,
		Cache:    &stubCoordCache{entries: map[string]domain.Coordinates{}},
		Defaults: PlanDefaults{RangeMiles: 500, MPG: 10},
	}
}

func postRoute(t *testing.T, h *RouteHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/route", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Plan(rec, req)
	return rec
}

// A straight ~40 mile route east along the equator.
func testRoute() *ports.DirectionsResult {
	return &ports.DirectionsResult{
		Geometry: []domain.Coordinates{
			{Lon: 0, Lat: 0},
			{Lon: 0.28945, Lat: 0},
			{Lon: 0.57890, Lat: 0},
		},
		DistanceMeters:  64350, // ~39.99 miles
		DurationSeconds: 3600,
	}
}

func TestRoutePlanEndToEnd(t *testing.T) {
	station := &domain.Station{
		OPISID:      "1",
		Name:        "CHEAP FUEL",
		City:        "Equator",
		State:       "EQ",
		RetailPrice: 3.00,
		Coord:       &domain.Coordinates{Lon: 0.2894, Lat: 0.029},
	}
	provider := &mapbox.MockGeoProvider{Route: testRoute()}
	h := newTestHandler(&stubStationRepo{stations: []*domain.Station{station}}, provider)

	rec := postRoute(t, h, `{"start":[0,0],"end":[0,0.5789],"range_miles":20}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s, want 200", rec.Code, rec.Body.String())
	}

	var res dto.PlanRouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if res.Route.DistanceMiles != 39.99 {
		t.Fatalf("distance = %v, want 39.99", res.Route.DistanceMiles)
	}
	if res.Route.DurationMinutes != 60 {
		t.Fatalf("duration = %v, want 60", res.Route.DurationMinutes)
	}
	if res.Route.Geometry.Type != "LineString" || len(res.Route.Geometry.Coordinates) != 3 {
		t.Fatalf("geometry = %+v, want 3-point LineString", res.Route.Geometry)
	}

	if len(res.FuelPlan.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(res.FuelPlan.Stops))
	}
	for i, stop := range res.FuelPlan.Stops {
		if stop.Station == nil || stop.Station.Name != "CHEAP FUEL" {
			t.Fatalf("stop %d station = %+v, want CHEAP FUEL", i, stop.Station)
		}
	}
	if res.FuelPlan.Summary.TotalCost == nil || *res.FuelPlan.Summary.TotalCost != 12.00 {
		t.Fatalf("total cost = %v, want 12.00", res.FuelPlan.Summary.TotalCost)
	}
	if res.FuelPlan.VehicleRangeMiles != 20 {
		t.Fatalf("range = %v, want request override 20", res.FuelPlan.VehicleRangeMiles)
	}
	if res.FuelPlan.MPG != 10 {
		t.Fatalf("mpg = %v, want default 10", res.FuelPlan.MPG)
	}
}

func TestRoutePlanValidation(t *testing.T) {
	provider := &mapbox.MockGeoProvider{Route: testRoute()}
	h := newTestHandler(&stubStationRepo{}, provider)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"unknown field", `{"start":[0,0],"end":[1,1],"bogus":true}`},
		{"two objects", `{"start":[0,0],"end":[1,1]}{}`},
		{"missing start", `{"end":[1,1]}`},
		{"missing end", `{"start":[0,0]}`},
		{"bad range", `{"start":[0,0],"end":[1,1],"range_miles":-5}`},
		{"bad radius", `{"start":[0,0],"end":[1,1],"station_radius_miles":0}`},
		{"bad budget", `{"start":[0,0],"end":[1,1],"geocode_budget_per_stop":-1}`},
		{"ungeocodable start", `{"start":"Atlantis","end":[1,1]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postRoute(t, h, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRoutePlanMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubStationRepo{}, &mapbox.MockGeoProvider{})

	req := httptest.NewRequest(http.MethodGet, "/route", nil)
	rec := httptest.NewRecorder()
	h.Plan(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("allow header = %q, want POST", rec.Header().Get("Allow"))
	}
}

func TestRoutePlanDirectionsFailure(t *testing.T) {
	provider := &mapbox.MockGeoProvider{DirectionsErr: errors.New("upstream down")}
	h := newTestHandler(&stubStationRepo{}, provider)

	rec := postRoute(t, h, `{"start":[0,0],"end":[1,1]}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestRoutePlanRepositoryFailure(t *testing.T) {
	provider := &mapbox.MockGeoProvider{Route: testRoute()}
	h := newTestHandler(&stubStationRepo{err: errors.New("feed missing")}, provider)

	rec := postRoute(t, h, `{"start":[0,0],"end":[1,1]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestFilterStationsByBBox(t *testing.T) {
	geometry := []domain.Coordinates{
		{Lon: 0, Lat: 0},
		{Lon: 1, Lat: 0},
	}

	inside := &domain.Station{OPISID: "in", Coord: &domain.Coordinates{Lon: 0.5, Lat: 0.5}}
	outside := &domain.Station{OPISID: "out", Coord: &domain.Coordinates{Lon: 0.5, Lat: 30}}
	unknown := &domain.Station{OPISID: "unknown"}

	kept := filterStationsByBBox([]*domain.Station{inside, outside, unknown}, geometry, 100)
	if len(kept) != 2 {
		t.Fatalf("kept = %d, want 2", len(kept))
	}
	for _, s := range kept {
		if s.OPISID == "out" {
			t.Fatal("station far outside the bbox should be dropped")
		}
	}

	all := filterStationsByBBox([]*domain.Station{inside, outside}, nil, 100)
	if len(all) != 2 {
		t.Fatal("empty geometry should keep every station")
	}
}

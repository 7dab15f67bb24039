package mapbox

import (
	"context"
	"fmt"

	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/ports"
)

// MockGeoProvider is an in-memory GeoProvider for tests. Unknown queries
// resolve to "not found" rather than an error.
type MockGeoProvider struct {
	Geocodes map[string]domain.Coordinates
	Reverse  map[string]ports.CityState
	Route    *ports.DirectionsResult

	GeocodeErr    error
	ReverseErr    error
	DirectionsErr error

	GeocodeCalls int
	ReverseCalls int
}

// ReverseKey builds the lookup key MockGeoProvider uses for reverse
// geocode fixtures.
func ReverseKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

func (m *MockGeoProvider) Geocode(_ context.Context, query string) (*domain.Coordinates, error) {
	m.GeocodeCalls++
	if m.GeocodeErr != nil {
		return nil, m.GeocodeErr
	}
	if c, ok := m.Geocodes[query]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *MockGeoProvider) ReverseGeocode(_ context.Context, lat, lon float64) (*ports.CityState, error) {
	m.ReverseCalls++
	if m.ReverseErr != nil {
		return nil, m.ReverseErr
	}
	if cs, ok := m.Reverse[ReverseKey(lat, lon)]; ok {
		return &cs, nil
	}
	return nil, nil
}

func (m *MockGeoProvider) Directions(_ context.Context, _, _ domain.Coordinates) (*ports.DirectionsResult, error) {
	if m.DirectionsErr != nil {
		return nil, m.DirectionsErr
	}
	if m.Route == nil {
		return nil, &ports.ProviderError{Op: "directions", Status: 200, Body: "no routes returned by Mapbox"}
	}
	return m.Route, nil
}

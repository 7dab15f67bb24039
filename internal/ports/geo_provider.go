package ports

import (
	"context"
	"fmt"

	"fuel-route-service/internal/domain"
)

// CityState identifies the locality a coordinate reverse-geocodes to.
type CityState struct {
	City  string
	State string
}

// DirectionsResult is a driving route between two points.
type DirectionsResult struct {
	Geometry        []domain.Coordinates
	DistanceMeters  float64
	DurationSeconds float64
}

// GeoProvider is the contract for remote geocoding and routing lookups.
//
// "Nothing found" is a nil result with a nil error and drives the caller's
// fallback chain; a non-nil error (typically *ProviderError) signals a
// transport or provider failure.
type GeoProvider interface {
	// Geocode resolves a free-form query to a coordinate.
	Geocode(ctx context.Context, query string) (*domain.Coordinates, error)

	// ReverseGeocode resolves a coordinate to a city and state code.
	ReverseGeocode(ctx context.Context, lat, lon float64) (*CityState, error)

	// Directions fetches a driving route from start to end.
	Directions(ctx context.Context, start, end domain.Coordinates) (*DirectionsResult, error)
}

// Optional extension of GeoProvider that can render a route preview image.
type StaticMapBuilder interface {
	GeoProvider
	// Return a URL for a static map with the route and stops drawn.
	BuildStaticMapURL(geometry []domain.Coordinates, stopPoints []domain.Coordinates, start, end domain.Coordinates) string
}

// ProviderError reports a non-success provider response or payload.
type ProviderError struct {
	Op     string
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.Status, e.Body)
}

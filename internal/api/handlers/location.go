package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/ports"
)

// parseLocation turns a raw request location into a coordinate. Accepted
// shapes, tried in order: a {"lat","lon"} object, a [lat, lon] pair, a
// "lat,lon" string, and finally a free-form address sent to the geocoder.
func parseLocation(ctx context.Context, raw json.RawMessage, provider ports.GeoProvider) (domain.Coordinates, error) {
	if len(raw) == 0 {
		return domain.Coordinates{}, fmt.Errorf("location is required")
	}

	var obj struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Lat != nil && obj.Lon != nil {
		return domain.Coordinates{Lat: *obj.Lat, Lon: *obj.Lon}, nil
	}

	var pair []float64
	if err := json.Unmarshal(raw, &pair); err == nil && len(pair) == 2 {
		return domain.Coordinates{Lat: pair[0], Lon: pair[1]}, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Coordinates{}, fmt.Errorf("unsupported location format")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Coordinates{}, fmt.Errorf("location is required")
	}

	if lat, lon, ok := parseLatLonString(s); ok {
		return domain.Coordinates{Lat: lat, Lon: lon}, nil
	}

	coords, err := provider.Geocode(ctx, s)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", s, err)
	}
	if coords == nil {
		return domain.Coordinates{}, fmt.Errorf("could not geocode location: %s", s)
	}
	return *coords, nil
}

// parseLatLonString parses "lat,lon". Non-numeric halves mean the value is
// a free-form address instead.
func parseLatLonString(s string) (lat, lon float64, ok bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

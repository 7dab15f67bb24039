package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/platform/obs"
	"fuel-route-service/internal/ports"
)

// Provider implements GeoProvider using the Mapbox Geocoding and
// Directions APIs.
//
// Each call is bounded by its own timeout; a failed call surfaces a
// *ports.ProviderError and callers decide whether that is fatal
// (directions) or degrades to the next fallback tier (geocoding).
//
// The provider is safe for concurrent use.
type Provider struct {
	session     *http.Client
	accessToken string
	baseURL     string
}

const (
	geocodeTimeout    = 10 * time.Second
	reverseTimeout    = 5 * time.Second
	directionsTimeout = 15 * time.Second
)

func NewProvider(accessToken string) (*Provider, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("mapbox access token is empty")
	}

	return &Provider{
		session:     &http.Client{Timeout: directionsTimeout},
		accessToken: accessToken,
		baseURL:     "https://api.mapbox.com",
	}, nil
}

type geocodeResponse struct {
	Features []struct {
		Text      string    `json:"text"`
		PlaceType []string  `json:"place_type"`
		Center    []float64 `json:"center"`
		Context   []struct {
			ID        string `json:"id"`
			ShortCode string `json:"short_code"`
		} `json:"context"`
	} `json:"features"`
}

// Geocode resolves a free-form query to a coordinate, or nil when Mapbox
// has no match.
func (p *Provider) Geocode(ctx context.Context, query string) (_ *domain.Coordinates, err error) {
	defer obs.Time(ctx, "mapbox.Geocode")(&err)

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", p.baseURL, url.PathEscape(query))
	params := url.Values{}
	params.Set("limit", "1")
	params.Set("country", "US")

	var decoded geocodeResponse
	if err := p.getJSON(ctx, "geocoding", endpoint, params, &decoded); err != nil {
		return nil, err
	}

	if len(decoded.Features) == 0 {
		return nil, nil
	}
	center := decoded.Features[0].Center
	if len(center) != 2 {
		return nil, &ports.ProviderError{Op: "geocoding", Status: http.StatusOK, Body: "malformed feature center"}
	}

	return &domain.Coordinates{Lon: center[0], Lat: center[1]}, nil
}

// ReverseGeocode resolves a coordinate to a city and state short code, or
// nil when Mapbox cannot name the locality.
func (p *Provider) ReverseGeocode(ctx context.Context, lat, lon float64) (*ports.CityState, error) {
	ctx, cancel := context.WithTimeout(ctx, reverseTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%v,%v.json", p.baseURL, lon, lat)
	params := url.Values{}
	params.Set("limit", "1")
	params.Set("types", "place,region,locality")
	params.Set("country", "US")

	var decoded geocodeResponse
	if err := p.getJSON(ctx, "reverse geocoding", endpoint, params, &decoded); err != nil {
		return nil, err
	}

	if len(decoded.Features) == 0 {
		return nil, nil
	}
	feature := decoded.Features[0]

	city := feature.Text
	state := ""
	for _, c := range feature.Context {
		if strings.HasPrefix(c.ID, "region.") && c.ShortCode != "" {
			parts := strings.Split(c.ShortCode, "-")
			state = strings.ToUpper(parts[len(parts)-1])
			break
		}
	}
	if city == "" && len(feature.PlaceType) == 1 && feature.PlaceType[0] == "region" {
		city = feature.Text
	}

	if city == "" || state == "" {
		return nil, nil
	}
	return &ports.CityState{City: city, State: state}, nil
}

type directionsResponse struct {
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Directions fetches a full-overview driving route between two points.
// No route at all is a provider failure: without a geometry there is
// nothing to plan against.
func (p *Provider) Directions(ctx context.Context, start, end domain.Coordinates) (_ *ports.DirectionsResult, err error) {
	defer obs.Time(ctx, "mapbox.Directions")(&err)

	ctx, cancel := context.WithTimeout(ctx, directionsTimeout)
	defer cancel()

	coords := fmt.Sprintf("%v,%v;%v,%v", start.Lon, start.Lat, end.Lon, end.Lat)
	endpoint := fmt.Sprintf("%s/directions/v5/mapbox/driving/%s", p.baseURL, coords)
	params := url.Values{}
	params.Set("geometries", "geojson")
	params.Set("overview", "full")
	params.Set("steps", "true")
	params.Set("annotations", "distance,duration")

	var decoded directionsResponse
	if err := p.getJSON(ctx, "directions", endpoint, params, &decoded); err != nil {
		return nil, err
	}

	if len(decoded.Routes) == 0 {
		return nil, &ports.ProviderError{Op: "directions", Status: http.StatusOK, Body: "no routes returned by Mapbox"}
	}
	route := decoded.Routes[0]

	geometry := make([]domain.Coordinates, 0, len(route.Geometry.Coordinates))
	for _, pair := range route.Geometry.Coordinates {
		if len(pair) != 2 {
			return nil, &ports.ProviderError{Op: "directions", Status: http.StatusOK, Body: "malformed route geometry"}
		}
		geometry = append(geometry, domain.Coordinates{Lon: pair[0], Lat: pair[1]})
	}

	return &ports.DirectionsResult{
		Geometry:        geometry,
		DistanceMeters:  route.Distance,
		DurationSeconds: route.Duration,
	}, nil
}

// getJSON issues a GET with the access token attached and decodes the
// response body, retrying transient failures.
func (p *Provider) getJSON(ctx context.Context, op, endpoint string, params url.Values, out any) error {
	resp, err := p.doWithRetry(ctx, op, func() (*http.Request, error) {
		req, err := p.newRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		q.Set("access_token", p.accessToken)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ports.ProviderError{Op: op, Status: resp.StatusCode, Body: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

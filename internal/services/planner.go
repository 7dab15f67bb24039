package services

import (
	"context"
	"log"
	"math"

	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/geo"
	"fuel-route-service/internal/platform/obs"
	"fuel-route-service/internal/ports"
)

// fallbackPolylinePoints bounds the polyline used for the last-resort
// nearest-on-route search. Scanning every station against the full route
// geometry is quadratic in practice; the downsampled shape is accurate
// enough for a tie-break.
const fallbackPolylinePoints = 400

// FuelPlannerConfig carries the per-request planning knobs.
type FuelPlannerConfig struct {
	VehicleRangeMiles float64
	MPG               float64
	SearchRadiusMiles float64

	// GeocodeBudgetPerStop caps remote station geocodes per mile marker.
	GeocodeBudgetPerStop int

	// ExplicitDistanceMiles overrides the distance derived from the route
	// geometry when set, e.g. with the provider's reported distance.
	ExplicitDistanceMiles *float64

	// UseReverseGeocoding narrows candidate stations to the marker's
	// city/state before falling back to the full pool.
	UseReverseGeocoding bool
}

// FuelPlanner places fuel stops along a route and prices the plan.
//
// Stops are placed at vehicle-range intervals along the geometry; at each
// marker the cheapest station within the search radius wins, with
// progressively looser fallbacks when nothing qualifies.
type FuelPlanner struct {
	locator  *StationLocator
	provider ports.GeoProvider

	geometry         []domain.Coordinates
	cumulative       []float64
	fallbackPolyline []domain.Coordinates
	totalDistance    float64

	cfg FuelPlannerConfig
}

func NewFuelPlanner(
	locator *StationLocator,
	provider ports.GeoProvider,
	geometry []domain.Coordinates,
	cfg FuelPlannerConfig,
) *FuelPlanner {
	cumulative := geo.CumulativeDistances(geometry)

	total := cumulative[len(cumulative)-1]
	if cfg.ExplicitDistanceMiles != nil {
		total = *cfg.ExplicitDistanceMiles
	}

	return &FuelPlanner{
		locator:          locator,
		provider:         provider,
		geometry:         geometry,
		cumulative:       cumulative,
		fallbackPolyline: geo.Downsample(geometry, fallbackPolylinePoints),
		totalDistance:    total,
		cfg:              cfg,
	}
}

// TotalDistanceMiles returns the route distance the plan is built against.
func (p *FuelPlanner) TotalDistanceMiles() float64 {
	return p.totalDistance
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildMileMarkers returns the refuel positions for a route: mile 0, then
// every rangeMiles until the destination, with the route's total distance
// as the final marker. Values are rounded to two decimals.
func BuildMileMarkers(distanceMiles, rangeMiles float64) []float64 {
	markers := []float64{0}
	if distanceMiles <= 0 || rangeMiles <= 0 {
		if distanceMiles > 0 {
			markers = append(markers, round2(distanceMiles))
		}
		return markers
	}
	for m := rangeMiles; m < distanceMiles; m += rangeMiles {
		markers = append(markers, round2(m))
	}
	return append(markers, round2(distanceMiles))
}

// PlanStops selects a fuel stop for each mile marker except the
// destination. allowStationGeocoding gates remote coordinate lookups for
// stations missing coordinates.
//
// Selection order per marker: cheapest in-radius station from the
// reverse-geocoded city/state candidates (when enabled), then from the
// full pool, then the nearest station to the marker, then the nearest
// station to the route shape. A stop is emitted even when every tier
// fails, with a nil station.
func (p *FuelPlanner) PlanStops(ctx context.Context, allowStationGeocoding bool) []*domain.FuelStop {
	defer obs.Time(ctx, "plan fuel stops")(nil)

	markers := BuildMileMarkers(p.totalDistance, p.cfg.VehicleRangeMiles)

	stops := make([]*domain.FuelStop, 0, len(markers))
	for _, marker := range markers[:len(markers)-1] {
		point := geo.Interpolate(p.geometry, p.cumulative, marker)

		// Empty but non-nil: the primary pool stays empty unless reverse
		// geocoding narrows it to a real candidate set.
		candidates := []*domain.Station{}
		if p.cfg.UseReverseGeocoding {
			cs, err := p.provider.ReverseGeocode(ctx, point.Lat, point.Lon)
			if err != nil {
				log.Printf("reverse geocode failed marker=%.2f err=%v", marker, err)
			} else if cs != nil {
				candidates = p.locator.StationsForCityState(cs.City, cs.State)
				if len(candidates) == 0 {
					candidates = p.locator.StationsForState(cs.State)
					if len(candidates) > 0 {
						log.Printf("marker=%.2f falling back to state-only stations state=%q", marker, cs.State)
					}
				}
			}
		}

		note := ""
		station := p.locator.CheapestNearby(
			ctx, point, p.cfg.SearchRadiusMiles,
			allowStationGeocoding, p.cfg.GeocodeBudgetPerStop,
			candidates,
		)
		if station == nil {
			station = p.locator.NearestToPoint(ctx, point)
			note = "Fallback to nearest station to marker; no nearby city/state match with coords."
		}
		if station == nil {
			station = p.locator.NearestOnRoute(ctx, p.fallbackPolyline, 0)
			if note == "" {
				note = "Fallback to nearest station along route; no nearby coordinates available."
			}
		}

		stop := &domain.FuelStop{
			MileMarker:      marker,
			RouteCoordinate: point,
			Station:         station,
			Note:            note,
		}
		if station != nil {
			price := station.RetailPrice
			stop.PricePerGallon = &price
		}
		stops = append(stops, stop)
	}
	return stops
}

// CostBreakdown prices the plan segment by segment. A segment with no
// selected station (or an mpg of zero) has unknown gallons and cost, and
// any unknown segment makes the grand total unknown as well. An empty
// stop list yields a zero-cost summary.
func (p *FuelPlanner) CostBreakdown(stops []*domain.FuelStop) domain.CostSummary {
	markers := make([]float64, 0, len(stops)+1)
	for _, stop := range stops {
		markers = append(markers, stop.MileMarker)
	}
	markers = append(markers, p.totalDistance)

	segments := make([]domain.CostSegment, 0, len(stops))
	totalCost := 0.0
	totalGallons := 0.0
	unknown := false

	for i := 0; i < len(markers)-1; i++ {
		miles := markers[i+1] - markers[i]

		seg := domain.CostSegment{
			FromMile: round2(markers[i]),
			ToMile:   round2(markers[i+1]),
			Miles:    round2(miles),
		}
		if p.cfg.MPG != 0 {
			gallons := miles / p.cfg.MPG
			seg.GallonsNeeded = &gallons
		}
		seg.PricePerGallon = stops[i].PricePerGallon

		if seg.GallonsNeeded != nil && seg.PricePerGallon != nil {
			cost := round2(*seg.GallonsNeeded * *seg.PricePerGallon)
			seg.FuelCost = &cost
			totalCost += cost
			totalGallons += *seg.GallonsNeeded
		} else {
			unknown = true
		}

		segments = append(segments, seg)
	}

	summary := domain.CostSummary{
		PricedGallons: round2(totalGallons),
		Segments:      segments,
	}
	if p.cfg.MPG != 0 {
		g := p.totalDistance / p.cfg.MPG
		summary.GallonsNeeded = &g
	}
	if !unknown {
		t := round2(totalCost)
		summary.TotalCost = &t
	}
	return summary
}

package handlers

import (
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"

	"fuel-route-service/internal/api/dto"
	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/ports"
	"fuel-route-service/internal/services"
)

const metersPerMile = 1609.344

// PlanDefaults are the server-level planning knobs applied when the
// request leaves them unset.
type PlanDefaults struct {
	RangeMiles float64
	MPG        float64
}

type RouteHandler struct {
	Repo     ports.StationRepository
	Provider ports.GeoProvider
	Cache    ports.CoordinateCache
	Defaults PlanDefaults
}

// Plan computes a route between two locations and places priced fuel
// stops along it. It coordinates geocoding, routing, station selection,
// and cost breakdown.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRouteRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Start) == 0 || len(req.End) == 0 {
		writeError(w, r, http.StatusBadRequest, "both 'start' and 'end' are required")
		return
	}

	rangeMiles := h.Defaults.RangeMiles
	if req.RangeMiles != nil {
		rangeMiles = *req.RangeMiles
	}
	if rangeMiles <= 0 {
		writeError(w, r, http.StatusBadRequest, "range_miles must be positive")
		return
	}

	mpg := h.Defaults.MPG
	if req.MPG != nil {
		mpg = *req.MPG
	}
	if mpg < 0 {
		writeError(w, r, http.StatusBadRequest, "mpg must not be negative")
		return
	}

	radius := 50.0
	if req.StationRadiusMiles != nil {
		radius = *req.StationRadiusMiles
	}
	if radius <= 0 {
		writeError(w, r, http.StatusBadRequest, "station_radius_miles must be positive")
		return
	}

	budget := 50
	if req.GeocodeBudgetPerStop != nil {
		budget = *req.GeocodeBudgetPerStop
	}
	if budget < 0 {
		writeError(w, r, http.StatusBadRequest, "geocode_budget_per_stop must not be negative")
		return
	}

	ctx := r.Context()

	start, err := parseLocation(ctx, req.Start, h.Provider)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseLocation(ctx, req.End, h.Provider)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	route, err := h.Provider.Directions(ctx, start, end)
	if err != nil {
		log.Printf("directions failed: %v", err)
		writeError(w, r, http.StatusBadGateway, "routing provider unavailable")
		return
	}

	distanceMiles := route.DistanceMeters / metersPerMile

	stations, err := h.Repo.ListStations()
	if err != nil {
		log.Printf("list stations failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	stations = filterStationsByBBox(stations, route.Geometry, radius+100)

	locator := services.NewStationLocator(stations, h.Cache, h.Provider)
	planner := services.NewFuelPlanner(locator, h.Provider, route.Geometry, services.FuelPlannerConfig{
		VehicleRangeMiles:     rangeMiles,
		MPG:                   mpg,
		SearchRadiusMiles:     radius,
		GeocodeBudgetPerStop:  budget,
		ExplicitDistanceMiles: &distanceMiles,
		UseReverseGeocoding:   true,
	})

	const allowStationGeocoding = true
	stops := planner.PlanStops(ctx, allowStationGeocoding)
	summary := planner.CostBreakdown(stops)

	res := dto.PlanRouteResponse{
		Route: dto.RouteResponse{
			DistanceMiles:   round2(distanceMiles),
			DurationMinutes: round2(route.DurationSeconds / 60),
			Geometry:        geometryResponse(route.Geometry),
		},
		FuelPlan: dto.FuelPlanResponse{
			Stops:                 stopResponses(stops),
			Summary:               summaryResponse(summary),
			VehicleRangeMiles:     rangeMiles,
			MPG:                   mpg,
			StationRadiusMiles:    radius,
			AllowStationGeocoding: allowStationGeocoding,
		},
	}

	// Static map rendering is an optional provider capability.
	if builder, ok := h.Provider.(ports.StaticMapBuilder); ok {
		stopPoints := make([]domain.Coordinates, 0, len(stops))
		for _, stop := range stops {
			if stop.Station != nil && stop.Station.Coord != nil {
				stopPoints = append(stopPoints, *stop.Station.Coord)
				continue
			}
			stopPoints = append(stopPoints, stop.RouteCoordinate)
		}
		res.Route.StaticMapURL = builder.BuildStaticMapURL(route.Geometry, stopPoints, start, end)
	}

	writeJSON(w, r, http.StatusOK, res)
}

// filterStationsByBBox drops stations whose known coordinates fall outside
// the route's bounding box plus a margin. Stations without coordinates are
// kept; they may geocode into range later.
func filterStationsByBBox(stations []*domain.Station, geometry []domain.Coordinates, marginMiles float64) []*domain.Station {
	if len(geometry) == 0 {
		return stations
	}

	minLat, maxLat := geometry[0].Lat, geometry[0].Lat
	minLon, maxLon := geometry[0].Lon, geometry[0].Lon
	for _, p := range geometry[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}

	midLat := (minLat + maxLat) / 2
	latMargin := marginMiles / 69.0
	lonMargin := marginMiles / (69.0 * math.Max(math.Cos(midLat*math.Pi/180), 0.1))

	loLat, hiLat := minLat-latMargin, maxLat+latMargin
	loLon, hiLon := minLon-lonMargin, maxLon+lonMargin

	kept := make([]*domain.Station, 0, len(stations))
	for _, s := range stations {
		if s.Coord == nil {
			kept = append(kept, s)
			continue
		}
		if loLat <= s.Coord.Lat && s.Coord.Lat <= hiLat && loLon <= s.Coord.Lon && s.Coord.Lon <= hiLon {
			kept = append(kept, s)
		}
	}
	return kept
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func geometryResponse(geometry []domain.Coordinates) dto.GeometryResponse {
	coords := make([][]float64, 0, len(geometry))
	for _, p := range geometry {
		coords = append(coords, p.CoordsToList())
	}
	return dto.GeometryResponse{Type: "LineString", Coordinates: coords}
}

func stopResponses(stops []*domain.FuelStop) []dto.StopResponse {
	out := make([]dto.StopResponse, 0, len(stops))
	for _, stop := range stops {
		res := dto.StopResponse{
			MileMarker: stop.MileMarker,
			RouteCoordinate: dto.CoordinateResponse{
				Lat: stop.RouteCoordinate.Lat,
				Lon: stop.RouteCoordinate.Lon,
			},
			PricePerGallon: stop.PricePerGallon,
		}
		if stop.Note != "" {
			note := stop.Note
			res.Note = &note
		}
		if s := stop.Station; s != nil {
			station := dto.StationResponse{
				Name:        s.Name,
				Address:     s.Address,
				City:        s.City,
				State:       s.State,
				RetailPrice: s.RetailPrice,
			}
			if s.Coord != nil {
				station.Coordinates = &dto.CoordinateResponse{Lat: s.Coord.Lat, Lon: s.Coord.Lon}
			}
			res.Station = &station
		}
		out = append(out, res)
	}
	return out
}

func summaryResponse(summary domain.CostSummary) dto.SummaryResponse {
	segments := make([]dto.SegmentResponse, 0, len(summary.Segments))
	for _, seg := range summary.Segments {
		segments = append(segments, dto.SegmentResponse{
			FromMile:       seg.FromMile,
			ToMile:         seg.ToMile,
			Miles:          seg.Miles,
			GallonsNeeded:  seg.GallonsNeeded,
			PricePerGallon: seg.PricePerGallon,
			FuelCost:       seg.FuelCost,
		})
	}
	return dto.SummaryResponse{
		TotalCost:     summary.TotalCost,
		GallonsNeeded: summary.GallonsNeeded,
		PricedGallons: summary.PricedGallons,
		Segments:      segments,
	}
}

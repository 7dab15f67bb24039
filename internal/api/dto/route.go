package dto

import "encoding/json"

// PlanRouteRequest is the /route request body. Start and end are kept raw
// because they accept several shapes: a {"lat","lon"} object, a [lat, lon]
// pair, a "lat,lon" string, or a free-form address.
type PlanRouteRequest struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`

	RangeMiles           *float64 `json:"range_miles"`
	MPG                  *float64 `json:"mpg"`
	StationRadiusMiles   *float64 `json:"station_radius_miles"`
	GeocodeBudgetPerStop *int     `json:"geocode_budget_per_stop"`
}

type CoordinateResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type StationResponse struct {
	Name        string              `json:"name"`
	Address     string              `json:"address"`
	City        string              `json:"city"`
	State       string              `json:"state"`
	RetailPrice float64             `json:"retail_price"`
	Coordinates *CoordinateResponse `json:"coordinates"`
}

type StopResponse struct {
	MileMarker      float64            `json:"mile_marker"`
	RouteCoordinate CoordinateResponse `json:"route_coordinate"`
	Station         *StationResponse   `json:"station"`
	PricePerGallon  *float64           `json:"price_per_gallon"`
	Note            *string            `json:"note"`
}

type SegmentResponse struct {
	FromMile       float64  `json:"from_mile"`
	ToMile         float64  `json:"to_mile"`
	Miles          float64  `json:"miles"`
	GallonsNeeded  *float64 `json:"gallons_needed"`
	PricePerGallon *float64 `json:"price_per_gallon"`
	FuelCost       *float64 `json:"fuel_cost"`
}

type SummaryResponse struct {
	TotalCost     *float64          `json:"total_cost"`
	GallonsNeeded *float64          `json:"gallons_needed"`
	PricedGallons float64           `json:"priced_gallons"`
	Segments      []SegmentResponse `json:"segments"`
}

// GeometryResponse is the route shape as a GeoJSON LineString; coordinates
// are [lon, lat] pairs.
type GeometryResponse struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type RouteResponse struct {
	DistanceMiles   float64          `json:"distance_miles"`
	DurationMinutes float64          `json:"duration_minutes"`
	Geometry        GeometryResponse `json:"geometry"`
	StaticMapURL    string           `json:"static_map_url,omitempty"`
}

type FuelPlanResponse struct {
	Stops                 []StopResponse  `json:"stops"`
	Summary               SummaryResponse `json:"summary"`
	VehicleRangeMiles     float64         `json:"vehicle_range_miles"`
	MPG                   float64         `json:"mpg"`
	StationRadiusMiles    float64         `json:"station_radius_miles"`
	AllowStationGeocoding bool            `json:"allow_station_geocoding"`
}

type PlanRouteResponse struct {
	Route    RouteResponse    `json:"route"`
	FuelPlan FuelPlanResponse `json:"fuel_plan"`
}

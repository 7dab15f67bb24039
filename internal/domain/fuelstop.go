package domain

// FuelStop is one refueling decision evaluated at a mile marker.
// Station and PricePerGallon are nil when every lookup tier came up empty;
// Note explains which fallback tier produced the choice.
type FuelStop struct {
	MileMarker      float64
	RouteCoordinate Coordinates
	Station         *Station
	PricePerGallon  *float64
	Note            string
}

// CostSegment covers the route between two adjacent stop boundaries.
// Nil fields mean the value could not be computed (zero mpg or an unknown
// price); they are never silently treated as zero.
type CostSegment struct {
	FromMile       float64
	ToMile         float64
	Miles          float64
	GallonsNeeded  *float64
	PricePerGallon *float64
	FuelCost       *float64
}

// CostSummary aggregates per-segment fuel costs for a trip.
//
// TotalCost is nil when any segment cost is unknown; PricedGallons counts
// only the gallons belonging to priced segments. GallonsNeeded is the
// trip-wide estimate derived from total distance alone.
type CostSummary struct {
	TotalCost     *float64
	GallonsNeeded *float64
	PricedGallons float64
	Segments      []CostSegment
}

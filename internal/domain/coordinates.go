package domain

// Immutable geographic coordinates (longitude, latitude).
// Route polylines are ordered slices of Coordinates from origin to
// destination.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

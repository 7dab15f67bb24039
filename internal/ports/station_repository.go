package ports

import "fuel-route-service/internal/domain"

// Port: a boundary for retrieving the deduplicated station set.
//
// Implementations return fresh Station values on every call so that
// coordinates resolved lazily during one planning request never leak into
// another.
type StationRepository interface {
	// Retrieve all stations available for fuel planning.
	ListStations() ([]*domain.Station, error)
}

package ports

import (
	"context"

	"fuel-route-service/internal/domain"
)

// CoordinateCache persists resolved station coordinates across planning
// requests and process restarts, keyed by Station.CacheKey.
//
// Implementations treat storage failures as cache misses: an unreadable
// cache behaves like an empty one and never fails coordinate resolution.
// Values are whole-key replacements, so concurrent last-writer-wins
// updates are acceptable.
type CoordinateCache interface {
	// Get returns the cached coordinate for key, if present.
	Get(ctx context.Context, key string) (domain.Coordinates, bool)

	// Set stores the coordinate for key.
	Set(ctx context.Context, key string, coords domain.Coordinates)
}

package api

import (
	"net/http"

	"fuel-route-service/internal/api/handlers"
	"fuel-route-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	repo ports.StationRepository,
	provider ports.GeoProvider,
	coordCache ports.CoordinateCache,
	defaults handlers.PlanDefaults,
) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Repo:     repo,
		Provider: provider,
		Cache:    coordCache,
		Defaults: defaults,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/route", routeHandler.Plan)

	return loggingMiddleware(mux)
}

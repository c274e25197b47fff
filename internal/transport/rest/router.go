package rest

import "net/http"

// NewRouter registers all REST routes on a fresh ServeMux.
func NewRouter(reviews *ReviewHandler, placements *PlacementHandler, health *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/encounters", reviews.LogEncounter)
	mux.HandleFunc("POST /v1/reviews/grade", reviews.Grade)
	mux.HandleFunc("GET /v1/reviews/due", reviews.ListDue)
	mux.HandleFunc("GET /v1/stats/{user_id}", reviews.Stats)

	mux.HandleFunc("POST /v1/placement/start", placements.Start)
	mux.HandleFunc("POST /v1/placement/answer", placements.Answer)

	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /live", health.Live)

	return mux
}

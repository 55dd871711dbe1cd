package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports liveness.
type HealthHandler struct{}

// NewHealthHandler returns handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// RootHandler describes the service surface.
type RootHandler struct{}

// NewRootHandler returns handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// ServeHTTP handles GET /.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":      "fleetpulse",
		"status":    "running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": map[string]interface{}{
			"ingestion": map[string]string{
				"polymorphic": "POST /v1/ingestion/telemetry",
				"vehicle":     "POST /v1/ingestion/vehicle",
				"meter":       "POST /v1/ingestion/meter",
				"batch":       "POST /v1/ingestion/batch",
				"stream":      "GET /v1/ingestion/stream",
			},
			"analytics": map[string]string{
				"performance": "GET /v1/analytics/performance/{vehicleId}",
			},
			"live": map[string]string{
				"vehicle": "GET /v1/live/vehicle/{vehicleId}",
				"meter":   "GET /v1/live/meter/{meterId}",
			},
			"mappings": map[string]string{
				"create":  "POST /v1/mappings",
				"resolve": "GET /v1/mappings/vehicle/{vehicleId}",
			},
			"health":  "GET /health",
			"metrics": "GET /metrics",
		},
	})
}

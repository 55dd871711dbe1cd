package httpserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetpulse/internal/http/handlers"
)

// Routes holds the handler set wired by the app.
type Routes struct {
	Ingest    *handlers.IngestHandlers
	Analytics *handlers.AnalyticsHandlers
	Live      *handlers.LiveHandlers
	Mappings  *handlers.MappingHandlers
	Stream    http.Handler
	Health    http.Handler
	Root      http.Handler
}

// NewRouter sets up HTTP routing.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()

	if routes.Ingest != nil {
		mux.HandleFunc("POST /v1/ingestion/telemetry", routes.Ingest.Telemetry)
		mux.HandleFunc("POST /v1/ingestion/vehicle", routes.Ingest.Vehicle)
		mux.HandleFunc("POST /v1/ingestion/meter", routes.Ingest.Meter)
		mux.HandleFunc("POST /v1/ingestion/batch", routes.Ingest.Batch)
	}
	if routes.Stream != nil {
		mux.Handle("GET /v1/ingestion/stream", routes.Stream)
	}
	if routes.Analytics != nil {
		mux.HandleFunc("GET /v1/analytics/performance/{vehicleId}", routes.Analytics.Performance)
	}
	if routes.Live != nil {
		mux.HandleFunc("GET /v1/live/vehicle/{vehicleId}", routes.Live.Vehicle)
		mux.HandleFunc("GET /v1/live/meter/{meterId}", routes.Live.Meter)
	}
	if routes.Mappings != nil {
		mux.HandleFunc("POST /v1/mappings", routes.Mappings.Create)
		mux.HandleFunc("GET /v1/mappings/vehicle/{vehicleId}", routes.Mappings.Resolve)
	}
	if routes.Health != nil {
		mux.Handle("GET /health", routes.Health)
	}
	if routes.Root != nil {
		mux.Handle("GET /{$}", routes.Root)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

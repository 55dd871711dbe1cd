package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"fleetpulse/internal/service"
)

// AnalyticsHandlers exposes the performance analytics endpoint.
type AnalyticsHandlers struct {
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandlers returns handler.
func NewAnalyticsHandlers(analytics *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{analytics: analytics, logger: logger}
}

// Performance handles GET /v1/analytics/performance/{vehicleId}.
// Query params: hours (default 24), meterId (optional).
func (h *AnalyticsHandlers) Performance(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicleId")
	if vehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicleId is required")
		return
	}

	hours := 0
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = parsed
	}
	meterID := r.URL.Query().Get("meterId")

	report, err := h.analytics.GetPerformance(r.Context(), vehicleID, hours, meterID)
	if err != nil {
		if errors.Is(err, service.ErrNoVehicleData) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to compute performance", zap.String("vehicle_id", vehicleID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get analytics")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

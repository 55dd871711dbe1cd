package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fleetpulse/internal/repository"
	"fleetpulse/internal/service"
)

// LiveHandlers exposes the latest-snapshot read endpoints.
type LiveHandlers struct {
	live   *service.LiveService
	logger *zap.Logger
}

// NewLiveHandlers returns handler.
func NewLiveHandlers(live *service.LiveService, logger *zap.Logger) *LiveHandlers {
	return &LiveHandlers{live: live, logger: logger}
}

// Vehicle handles GET /v1/live/vehicle/{vehicleId}.
func (h *LiveHandlers) Vehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicleId")
	rec, err := h.live.GetVehicle(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no live snapshot for vehicle "+vehicleID)
			return
		}
		h.logger.Error("failed to read vehicle snapshot", zap.String("vehicle_id", vehicleID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read live snapshot")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Meter handles GET /v1/live/meter/{meterId}.
func (h *LiveHandlers) Meter(w http.ResponseWriter, r *http.Request) {
	meterID := r.PathValue("meterId")
	rec, err := h.live.GetMeter(r.Context(), meterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no live snapshot for meter "+meterID)
			return
		}
		h.logger.Error("failed to read meter snapshot", zap.String("meter_id", meterID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read live snapshot")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

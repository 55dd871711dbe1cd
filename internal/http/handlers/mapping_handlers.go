package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fleetpulse/internal/models"
	"fleetpulse/internal/repository"
)

// MappingStore persists vehicle to meter mappings.
type MappingStore interface {
	Create(ctx context.Context, m *models.VehicleMeterMapping) error
	ActiveMeterFor(ctx context.Context, vehicleID string) (string, error)
}

// MappingHandlers manages vehicle to meter session mappings. The analytics
// path never consults these implicitly; callers resolve a meter id here and
// pass it explicitly to the performance query.
type MappingHandlers struct {
	mappings MappingStore
	logger   *zap.Logger
}

// NewMappingHandlers returns handler.
func NewMappingHandlers(mappings MappingStore, logger *zap.Logger) *MappingHandlers {
	return &MappingHandlers{mappings: mappings, logger: logger}
}

type createMappingInput struct {
	VehicleID    string     `json:"vehicleId"`
	MeterID      string     `json:"meterId"`
	SessionStart *time.Time `json:"sessionStart"`
	SessionEnd   *time.Time `json:"sessionEnd"`
}

// Create handles POST /v1/mappings.
func (h *MappingHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var input createMappingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if input.VehicleID == "" || input.MeterID == "" {
		writeError(w, http.StatusBadRequest, "vehicleId and meterId are required")
		return
	}

	mapping := &models.VehicleMeterMapping{
		VehicleID:    input.VehicleID,
		MeterID:      input.MeterID,
		SessionStart: input.SessionStart,
		SessionEnd:   input.SessionEnd,
		IsActive:     true,
	}
	if err := h.mappings.Create(r.Context(), mapping); err != nil {
		h.logger.Error("failed to create mapping", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create mapping")
		return
	}

	writeJSON(w, http.StatusCreated, mapping)
}

// Resolve handles GET /v1/mappings/vehicle/{vehicleId}.
func (h *MappingHandlers) Resolve(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicleId")
	meterID, err := h.mappings.ActiveMeterFor(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no active meter mapping for vehicle "+vehicleID)
			return
		}
		h.logger.Error("failed to resolve mapping", zap.String("vehicle_id", vehicleID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to resolve mapping")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"vehicleId": vehicleID, "meterId": meterID})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fleetpulse/internal/models"
	"fleetpulse/internal/service"
)

// IngestHandlers exposes the telemetry ingestion endpoints.
type IngestHandlers struct {
	ingestion *service.IngestionService
	logger    *zap.Logger
}

// NewIngestHandlers returns handler.
func NewIngestHandlers(ingestion *service.IngestionService, logger *zap.Logger) *IngestHandlers {
	return &IngestHandlers{ingestion: ingestion, logger: logger}
}

// Telemetry handles POST /v1/ingestion/telemetry with an untyped record.
func (h *IngestHandlers) Telemetry(w http.ResponseWriter, r *http.Request) {
	var record map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	kind, err := h.ingestion.IngestRecord(r.Context(), record)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "type": string(kind)})
}

// Vehicle handles POST /v1/ingestion/vehicle with a typed vehicle sample.
func (h *IngestHandlers) Vehicle(w http.ResponseWriter, r *http.Request) {
	var sample models.VehicleSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := service.ValidateVehicle(sample); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ingestion.IngestVehicle(r.Context(), sample); err != nil {
		h.respondIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "type": "vehicle"})
}

// Meter handles POST /v1/ingestion/meter with a typed meter sample.
func (h *IngestHandlers) Meter(w http.ResponseWriter, r *http.Request) {
	var sample models.MeterSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := service.ValidateMeter(sample); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ingestion.IngestMeter(r.Context(), sample); err != nil {
		h.respondIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "type": "meter"})
}

// Batch handles POST /v1/ingestion/batch with a mixed array of records.
func (h *IngestHandlers) Batch(w http.ResponseWriter, r *http.Request) {
	var records []map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be an array of telemetry records")
		return
	}

	result, err := h.ingestion.IngestBatch(r.Context(), records)
	if err != nil {
		var batchErr *service.BatchError
		if errors.As(err, &batchErr) {
			details := make([]map[string]interface{}, 0, len(batchErr.Records))
			for _, rec := range batchErr.Records {
				details = append(details, map[string]interface{}{
					"index":   rec.Index,
					"message": rec.Err.Error(),
				})
			}
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"status":  "error",
				"message": batchErr.Error(),
				"records": details,
			})
			return
		}
		h.respondIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status": "accepted",
		"count":  result.Vehicles + result.Meters,
	})
}

func (h *IngestHandlers) respondIngestError(w http.ResponseWriter, err error) {
	var (
		shapeErr      *service.ShapeError
		validationErr *service.ValidationError
		partialErr    *service.PartialWriteError
	)
	switch {
	case errors.As(err, &shapeErr), errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &partialErr):
		h.logger.Error("partial ingest write", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "telemetry partially persisted, retry the sample")
	default:
		h.logger.Error("failed to ingest telemetry", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to ingest telemetry")
	}
}

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleetpulse/internal/http/handlers"
	"fleetpulse/internal/models"
	"fleetpulse/internal/repository"
	"fleetpulse/internal/service"
)

type memVehicleHistory struct {
	recs []models.VehicleHistoryRecord
}

func (m *memVehicleHistory) Insert(ctx context.Context, rec *models.VehicleHistoryRecord) error {
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memVehicleHistory) InsertBatch(ctx context.Context, recs []models.VehicleHistoryRecord) error {
	m.recs = append(m.recs, recs...)
	return nil
}

func (m *memVehicleHistory) QueryWindow(ctx context.Context, vehicleID string, from, to time.Time) ([]models.VehicleHistoryRecord, error) {
	var out []models.VehicleHistoryRecord
	for _, rec := range m.recs {
		if rec.VehicleID == vehicleID && !rec.Timestamp.Before(from) && !rec.Timestamp.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memMeterHistory struct {
	recs []models.MeterHistoryRecord
}

func (m *memMeterHistory) Insert(ctx context.Context, rec *models.MeterHistoryRecord) error {
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memMeterHistory) InsertBatch(ctx context.Context, recs []models.MeterHistoryRecord) error {
	m.recs = append(m.recs, recs...)
	return nil
}

func (m *memMeterHistory) QueryWindow(ctx context.Context, meterID string, from, to time.Time) ([]models.MeterHistoryRecord, error) {
	var out []models.MeterHistoryRecord
	for _, rec := range m.recs {
		if meterID != "" && rec.MeterID != meterID {
			continue
		}
		if !rec.Timestamp.Before(from) && !rec.Timestamp.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memVehicleLive struct {
	live map[string]models.VehicleLiveRecord
}

func (m *memVehicleLive) Upsert(ctx context.Context, rec *models.VehicleLiveRecord) error {
	m.live[rec.VehicleID] = *rec
	return nil
}

func (m *memVehicleLive) UpsertBatch(ctx context.Context, recs []models.VehicleLiveRecord) error {
	for _, rec := range recs {
		m.live[rec.VehicleID] = rec
	}
	return nil
}

func (m *memVehicleLive) Get(ctx context.Context, vehicleID string) (*models.VehicleLiveRecord, error) {
	rec, ok := m.live[vehicleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

type memMeterLive struct {
	live map[string]models.MeterLiveRecord
}

func (m *memMeterLive) Upsert(ctx context.Context, rec *models.MeterLiveRecord) error {
	m.live[rec.MeterID] = *rec
	return nil
}

func (m *memMeterLive) UpsertBatch(ctx context.Context, recs []models.MeterLiveRecord) error {
	for _, rec := range recs {
		m.live[rec.MeterID] = rec
	}
	return nil
}

func (m *memMeterLive) Get(ctx context.Context, meterID string) (*models.MeterLiveRecord, error) {
	rec, ok := m.live[meterID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

type memMappings struct {
	activeMeter map[string]string
}

func (m *memMappings) Create(ctx context.Context, mapping *models.VehicleMeterMapping) error {
	mapping.ID = "mapping-1"
	m.activeMeter[mapping.VehicleID] = mapping.MeterID
	return nil
}

func (m *memMappings) ActiveMeterFor(ctx context.Context, vehicleID string) (string, error) {
	meterID, ok := m.activeMeter[vehicleID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return meterID, nil
}

type fixture struct {
	router         http.Handler
	vehicleHistory *memVehicleHistory
	vehicleLive    *memVehicleLive
	meterHistory   *memMeterHistory
	meterLive      *memMeterLive
}

func newFixture() *fixture {
	logger := zap.NewNop()

	f := &fixture{
		vehicleHistory: &memVehicleHistory{},
		vehicleLive:    &memVehicleLive{live: make(map[string]models.VehicleLiveRecord)},
		meterHistory:   &memMeterHistory{},
		meterLive:      &memMeterLive{live: make(map[string]models.MeterLiveRecord)},
	}

	ingestion := service.NewIngestionService(f.vehicleHistory, f.vehicleLive, f.meterHistory, f.meterLive, nil, logger)
	analytics := service.NewAnalyticsService(f.vehicleHistory, f.meterHistory, logger)
	live := service.NewLiveService(f.vehicleLive, f.meterLive, nil, logger)
	mappings := &memMappings{activeMeter: make(map[string]string)}

	f.router = NewRouter(Routes{
		Ingest:    handlers.NewIngestHandlers(ingestion, logger),
		Analytics: handlers.NewAnalyticsHandlers(analytics, logger),
		Live:      handlers.NewLiveHandlers(live, logger),
		Mappings:  handlers.NewMappingHandlers(mappings, logger),
		Health:    handlers.NewHealthHandler(),
		Root:      handlers.NewRootHandler(),
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestPolymorphicIngestAcceptsVehicle(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/ingestion/telemetry", map[string]interface{}{
		"vehicleId": "V1", "soc": 80, "kwhDeliveredDc": 5, "batteryTemp": 30,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "vehicle", decodeBody(t, rec)["type"])
	assert.Contains(t, f.vehicleLive.live, "V1")
	assert.Len(t, f.vehicleHistory.recs, 1)
}

func TestPolymorphicIngestRejectsUnrecognized(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/ingestion/telemetry", map[string]interface{}{"deviceId": "X"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.vehicleHistory.recs)
	assert.Empty(t, f.meterHistory.recs)
}

func TestVehicleIngestValidatesRanges(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/ingestion/vehicle", map[string]interface{}{
		"vehicleId": "V1", "soc": 150, "kwhDeliveredDc": 5, "batteryTemp": 30,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "soc")
	assert.Empty(t, f.vehicleHistory.recs)
}

func TestMeterIngestAccepted(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/ingestion/meter", map[string]interface{}{
		"meterId": "M1", "kwhConsumedAc": 10, "voltage": 230,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, f.meterLive.live, "M1")
}

func TestBatchIngestMixedRecords(t *testing.T) {
	f := newFixture()
	ts := time.Now().UTC().Format(time.RFC3339)

	rec := f.do(t, http.MethodPost, "/v1/ingestion/batch", []map[string]interface{}{
		{"vehicleId": "V1", "soc": 50, "kwhDeliveredDc": 1, "batteryTemp": 25, "timestamp": ts},
		{"vehicleId": "V2", "soc": 60, "kwhDeliveredDc": 2, "batteryTemp": 26, "timestamp": ts},
		{"meterId": "M1", "kwhConsumedAc": 4, "voltage": 230, "timestamp": ts},
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, float64(3), decodeBody(t, rec)["count"])
	assert.Len(t, f.vehicleHistory.recs, 2)
	assert.Len(t, f.meterHistory.recs, 1)
	assert.Len(t, f.vehicleLive.live, 2)
	assert.Len(t, f.meterLive.live, 1)
}

func TestBatchIngestReportsPerRecordErrors(t *testing.T) {
	f := newFixture()
	ts := time.Now().UTC().Format(time.RFC3339)

	rec := f.do(t, http.MethodPost, "/v1/ingestion/batch", []map[string]interface{}{
		{"vehicleId": "V1", "soc": 50, "kwhDeliveredDc": 1, "batteryTemp": 25, "timestamp": ts},
		{"bogus": true},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeBody(t, rec)
	records, ok := payload["records"].([]interface{})
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, float64(1), records[0].(map[string]interface{})["index"])
	assert.Empty(t, f.vehicleHistory.recs, "no writes on rejected batch")
}

func TestBatchIngestRejectsNonArrayBody(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/ingestion/batch", map[string]interface{}{"vehicleId": "V1"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPerformanceEndpointScenario(t *testing.T) {
	f := newFixture()
	ts := time.Now().UTC().Add(-10 * time.Minute).Format(time.RFC3339)

	require.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/v1/ingestion/vehicle", map[string]interface{}{
		"vehicleId": "V1", "soc": 80, "kwhDeliveredDc": 5, "batteryTemp": 30, "timestamp": ts,
	}).Code)
	require.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/v1/ingestion/meter", map[string]interface{}{
		"meterId": "M1", "kwhConsumedAc": 10, "voltage": 230, "timestamp": ts,
	}).Code)

	rec := f.do(t, http.MethodGet, "/v1/analytics/performance/V1?hours=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "V1", payload["vehicleId"])
	assert.Equal(t, 5.0, payload["totalKwhDeliveredDc"])
	assert.Equal(t, 10.0, payload["totalKwhConsumedAc"])
	assert.Equal(t, 0.5, payload["efficiencyRatio"])
	assert.Equal(t, 30.0, payload["averageBatteryTemp"])
	assert.Equal(t, float64(1), payload["recordCount"])
}

func TestPerformanceEndpointNotFound(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/v1/analytics/performance/V-unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "V-unknown")
}

func TestPerformanceEndpointRejectsBadHours(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/v1/analytics/performance/V1?hours=abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLiveVehicleEndpoint(t *testing.T) {
	f := newFixture()
	ts := time.Now().UTC().Format(time.RFC3339)

	require.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/v1/ingestion/vehicle", map[string]interface{}{
		"vehicleId": "V1", "soc": 80, "kwhDeliveredDc": 5, "batteryTemp": 30, "timestamp": ts,
	}).Code)

	rec := f.do(t, http.MethodGet, "/v1/live/vehicle/V1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 80.0, decodeBody(t, rec)["soc"])

	rec = f.do(t, http.MethodGet, "/v1/live/vehicle/V-unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMappingEndpoints(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/v1/mappings", map[string]interface{}{
		"vehicleId": "V1", "meterId": "M1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/mappings/vehicle/V1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "M1", decodeBody(t, rec)["meterId"])

	rec = f.do(t, http.MethodGet, "/v1/mappings/vehicle/V2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/v1/ingestion/telemetry", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

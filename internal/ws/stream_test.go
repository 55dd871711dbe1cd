package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleetpulse/internal/models"
	"fleetpulse/internal/service"
)

type nopVehicleHistory struct{ count int }

func (s *nopVehicleHistory) Insert(ctx context.Context, rec *models.VehicleHistoryRecord) error {
	s.count++
	return nil
}

func (s *nopVehicleHistory) InsertBatch(ctx context.Context, recs []models.VehicleHistoryRecord) error {
	s.count += len(recs)
	return nil
}

type nopVehicleLive struct{ live map[string]models.VehicleLiveRecord }

func (s *nopVehicleLive) Upsert(ctx context.Context, rec *models.VehicleLiveRecord) error {
	s.live[rec.VehicleID] = *rec
	return nil
}

func (s *nopVehicleLive) UpsertBatch(ctx context.Context, recs []models.VehicleLiveRecord) error {
	for _, rec := range recs {
		s.live[rec.VehicleID] = rec
	}
	return nil
}

type nopMeterHistory struct{}

func (nopMeterHistory) Insert(ctx context.Context, rec *models.MeterHistoryRecord) error { return nil }
func (nopMeterHistory) InsertBatch(ctx context.Context, recs []models.MeterHistoryRecord) error {
	return nil
}

type nopMeterLive struct{}

func (nopMeterLive) Upsert(ctx context.Context, rec *models.MeterLiveRecord) error { return nil }
func (nopMeterLive) UpsertBatch(ctx context.Context, recs []models.MeterLiveRecord) error {
	return nil
}

func TestStreamIngestsFramesAndAcks(t *testing.T) {
	history := &nopVehicleHistory{}
	live := &nopVehicleLive{live: make(map[string]models.VehicleLiveRecord)}
	ingestion := service.NewIngestionService(history, live, nopMeterHistory{}, nopMeterLive{}, nil, zap.NewNop())

	srv := httptest.NewServer(NewStreamHandler(ingestion, zap.NewNop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	frame := map[string]interface{}{
		"vehicleId": "V1", "soc": 80.0, "kwhDeliveredDc": 5.0, "batteryTemp": 30.0,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	require.NoError(t, conn.WriteJSON(frame))

	var ack struct {
		Status  string `json:"status"`
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "accepted", ack.Status)
	assert.Equal(t, "vehicle", ack.Type)
	assert.Equal(t, 1, history.count)
	assert.Contains(t, live.live, "V1")
}

func TestStreamRejectsBadFrames(t *testing.T) {
	ingestion := service.NewIngestionService(&nopVehicleHistory{}, &nopVehicleLive{live: map[string]models.VehicleLiveRecord{}}, nopMeterHistory{}, nopMeterLive{}, nil, zap.NewNop())

	srv := httptest.NewServer(NewStreamHandler(ingestion, zap.NewNop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var ack struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "error", ack.Status)
	assert.Equal(t, "invalid json", ack.Message)

	// Connection stays open for the next frame.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"meterId": "M1", "kwhConsumedAc": 4.0, "voltage": 230.0,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}))
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "accepted", ack.Status)
}

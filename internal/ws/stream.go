package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"fleetpulse/internal/service"
)

const (
	readLimit    = 1 << 20
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// StreamHandler upgrades HTTP connections to WebSockets for continuous
// telemetry ingest. Each text frame carries one untyped record; the handler
// replies with a per-frame ack.
type StreamHandler struct {
	ingestion *service.IngestionService
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// NewStreamHandler builds the streaming ingest handler.
func NewStreamHandler(ingestion *service.IngestionService, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		ingestion: ingestion,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP handles GET /v1/ingestion/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(readLimit)

	// The request context dies with the hijacked connection; ingest under
	// an independent one.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("telemetry stream closed unexpectedly", zap.Error(err))
			}
			return
		}

		ack := h.process(ctx, raw)
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(ack); err != nil {
			h.logger.Warn("failed to write stream ack", zap.Error(err))
			return
		}
	}
}

type streamAck struct {
	Status  string `json:"status"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *StreamHandler) process(ctx context.Context, raw []byte) streamAck {
	var record map[string]interface{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return streamAck{Status: "error", Message: "invalid json"}
	}

	kind, err := h.ingestion.IngestRecord(ctx, record)
	if err != nil {
		return streamAck{Status: "error", Type: string(kind), Message: err.Error()}
	}
	return streamAck{Status: "accepted", Type: string(kind)}
}

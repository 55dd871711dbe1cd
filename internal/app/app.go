package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fleetpulse/internal/config"
	"fleetpulse/internal/db"
	httpserver "fleetpulse/internal/http"
	"fleetpulse/internal/http/handlers"
	"fleetpulse/internal/metrics"
	redisstore "fleetpulse/internal/redis"
	"fleetpulse/internal/repository"
	"fleetpulse/internal/service"
	"fleetpulse/internal/ws"
)

const liveCacheTTL = 10 * time.Minute

// App wires fleetpulse dependencies.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	redis  *redis.Client
	logger *zap.Logger
}

// New constructs application components.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	pool, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var (
		redisClient *redis.Client
		cache       *redisstore.LiveCache
	)
	if cfg.CacheEnabled() {
		redisClient, err = redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			pool.Close()
			return nil, err
		}
		cache = redisstore.NewLiveCache(redisClient, liveCacheTTL)
	}

	vehicleHistory := repository.NewVehicleHistoryRepository(pool)
	vehicleLive := repository.NewVehicleLiveRepository(pool)
	meterHistory := repository.NewMeterHistoryRepository(pool)
	meterLive := repository.NewMeterLiveRepository(pool)
	mappings := repository.NewMappingRepository(pool)

	var snapshotCache service.SnapshotCacheReader
	if cache != nil {
		snapshotCache = cache
	}

	ingestion := service.NewIngestionService(vehicleHistory, vehicleLive, meterHistory, meterLive, snapshotCache, logger)
	analytics := service.NewAnalyticsService(vehicleHistory, meterHistory, logger)
	live := service.NewLiveService(vehicleLive, meterLive, snapshotCache, logger)

	routes := httpserver.Routes{
		Ingest:    handlers.NewIngestHandlers(ingestion, logger),
		Analytics: handlers.NewAnalyticsHandlers(analytics, logger),
		Live:      handlers.NewLiveHandlers(live, logger),
		Mappings:  handlers.NewMappingHandlers(mappings, logger),
		Stream:    ws.NewStreamHandler(ingestion, logger),
		Health:    handlers.NewHealthHandler(),
		Root:      handlers.NewRootHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		db:     pool,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// Run starts serving HTTP requests.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}

package service

import (
	"context"

	"go.uber.org/zap"

	"fleetpulse/internal/models"
)

// VehicleLiveReader reads the per-vehicle latest snapshot.
type VehicleLiveReader interface {
	Get(ctx context.Context, vehicleID string) (*models.VehicleLiveRecord, error)
}

// MeterLiveReader reads the per-meter latest snapshot.
type MeterLiveReader interface {
	Get(ctx context.Context, meterID string) (*models.MeterLiveRecord, error)
}

// SnapshotCacheReader reads mirrored snapshots. Any error counts as a miss.
type SnapshotCacheReader interface {
	SnapshotCache
	GetVehicle(ctx context.Context, vehicleID string) (*models.VehicleLiveRecord, error)
	GetMeter(ctx context.Context, meterID string) (*models.MeterLiveRecord, error)
}

// LiveService resolves live snapshots, cache first with a postgres
// fallback and best-effort backfill.
type LiveService struct {
	vehicles VehicleLiveReader
	meters   MeterLiveReader
	cache    SnapshotCacheReader
	logger   *zap.Logger
}

// NewLiveService returns service instance. cache may be nil.
func NewLiveService(vehicles VehicleLiveReader, meters MeterLiveReader, cache SnapshotCacheReader, logger *zap.Logger) *LiveService {
	return &LiveService{
		vehicles: vehicles,
		meters:   meters,
		cache:    cache,
		logger:   logger,
	}
}

// GetVehicle returns the latest vehicle snapshot.
func (s *LiveService) GetVehicle(ctx context.Context, vehicleID string) (*models.VehicleLiveRecord, error) {
	if s.cache != nil {
		if rec, err := s.cache.GetVehicle(ctx, vehicleID); err == nil {
			return rec, nil
		}
	}

	rec, err := s.vehicles.Get(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveVehicle(ctx, *rec); err != nil {
			s.logger.Warn("failed to backfill vehicle snapshot cache",
				zap.String("vehicle_id", vehicleID), zap.Error(err))
		}
	}
	return rec, nil
}

// GetMeter returns the latest meter snapshot.
func (s *LiveService) GetMeter(ctx context.Context, meterID string) (*models.MeterLiveRecord, error) {
	if s.cache != nil {
		if rec, err := s.cache.GetMeter(ctx, meterID); err == nil {
			return rec, nil
		}
	}

	rec, err := s.meters.Get(ctx, meterID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveMeter(ctx, *rec); err != nil {
			s.logger.Warn("failed to backfill meter snapshot cache",
				zap.String("meter_id", meterID), zap.Error(err))
		}
	}
	return rec, nil
}

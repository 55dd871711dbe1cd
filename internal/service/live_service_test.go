package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleetpulse/internal/models"
	"fleetpulse/internal/repository"
)

type fakeVehicleLiveReader struct {
	rec   *models.VehicleLiveRecord
	calls int
}

func (f *fakeVehicleLiveReader) Get(ctx context.Context, vehicleID string) (*models.VehicleLiveRecord, error) {
	f.calls++
	if f.rec == nil {
		return nil, repository.ErrNotFound
	}
	return f.rec, nil
}

type fakeMeterLiveReader struct {
	rec *models.MeterLiveRecord
}

func (f *fakeMeterLiveReader) Get(ctx context.Context, meterID string) (*models.MeterLiveRecord, error) {
	if f.rec == nil {
		return nil, repository.ErrNotFound
	}
	return f.rec, nil
}

func TestLiveServiceCacheHitSkipsRepository(t *testing.T) {
	cache := newFakeCache()
	cached := models.VehicleLiveRecord{VehicleID: "V1", SoC: 80, Timestamp: time.Now().UTC()}
	require.NoError(t, cache.SaveVehicle(context.Background(), cached))

	repo := &fakeVehicleLiveReader{}
	svc := NewLiveService(repo, &fakeMeterLiveReader{}, cache, zap.NewNop())

	rec, err := svc.GetVehicle(context.Background(), "V1")
	require.NoError(t, err)
	assert.Equal(t, cached, *rec)
	assert.Zero(t, repo.calls)
}

func TestLiveServiceCacheMissFallsBackAndBackfills(t *testing.T) {
	cache := newFakeCache()
	stored := &models.VehicleLiveRecord{VehicleID: "V1", SoC: 75}
	repo := &fakeVehicleLiveReader{rec: stored}
	svc := NewLiveService(repo, &fakeMeterLiveReader{}, cache, zap.NewNop())

	rec, err := svc.GetVehicle(context.Background(), "V1")
	require.NoError(t, err)
	assert.Equal(t, *stored, *rec)
	assert.Equal(t, 1, repo.calls)
	assert.Contains(t, cache.vehicles, "V1")
}

func TestLiveServiceWithoutCacheReadsRepository(t *testing.T) {
	meter := &models.MeterLiveRecord{MeterID: "M1", KwhConsumedAC: 4}
	svc := NewLiveService(&fakeVehicleLiveReader{}, &fakeMeterLiveReader{rec: meter}, nil, zap.NewNop())

	rec, err := svc.GetMeter(context.Background(), "M1")
	require.NoError(t, err)
	assert.Equal(t, *meter, *rec)
}

func TestLiveServiceMissingSnapshotIsNotFound(t *testing.T) {
	svc := NewLiveService(&fakeVehicleLiveReader{}, &fakeMeterLiveReader{}, nil, zap.NewNop())

	_, err := svc.GetVehicle(context.Background(), "V-unknown")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

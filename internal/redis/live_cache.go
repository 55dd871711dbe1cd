package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetpulse/internal/models"
)

// LiveCache keeps the latest sample per entity id for quick reads. The
// postgres live tables remain the source of truth; cache writes are
// best-effort.
type LiveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLiveCache returns a redis-backed live snapshot cache.
func NewLiveCache(client *redis.Client, ttl time.Duration) *LiveCache {
	return &LiveCache{client: client, ttl: ttl}
}

func vehicleKey(id string) string {
	return fmt.Sprintf("live:vehicle:%s", id)
}

func meterKey(id string) string {
	return fmt.Sprintf("live:meter:%s", id)
}

// SaveVehicle caches the latest vehicle snapshot.
func (c *LiveCache) SaveVehicle(ctx context.Context, rec models.VehicleLiveRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, vehicleKey(rec.VehicleID), data, c.ttl).Err()
}

// GetVehicle returns the cached vehicle snapshot, or redis.Nil on miss.
func (c *LiveCache) GetVehicle(ctx context.Context, vehicleID string) (*models.VehicleLiveRecord, error) {
	result, err := c.client.Get(ctx, vehicleKey(vehicleID)).Result()
	if err != nil {
		return nil, err
	}
	var rec models.VehicleLiveRecord
	if err := json.Unmarshal([]byte(result), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveMeter caches the latest meter snapshot.
func (c *LiveCache) SaveMeter(ctx context.Context, rec models.MeterLiveRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, meterKey(rec.MeterID), data, c.ttl).Err()
}

// GetMeter returns the cached meter snapshot, or redis.Nil on miss.
func (c *LiveCache) GetMeter(ctx context.Context, meterID string) (*models.MeterLiveRecord, error) {
	result, err := c.client.Get(ctx, meterKey(meterID)).Result()
	if err != nil {
		return nil, err
	}
	var rec models.MeterLiveRecord
	if err := json.Unmarshal([]byte(result), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return err == redis.Nil
}

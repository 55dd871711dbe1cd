package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fleetpulse/internal/metrics"
	"fleetpulse/internal/models"
)

const defaultWindowHours = 24

// VehicleHistoryReader queries the vehicle telemetry log.
type VehicleHistoryReader interface {
	QueryWindow(ctx context.Context, vehicleID string, from, to time.Time) ([]models.VehicleHistoryRecord, error)
}

// MeterHistoryReader queries the meter telemetry log. An empty meterID
// returns records across all meters.
type MeterHistoryReader interface {
	QueryWindow(ctx context.Context, meterID string, from, to time.Time) ([]models.MeterHistoryRecord, error)
}

// AnalyticsService computes vehicle performance over a sliding window. It is
// read-only: the vehicle and meter slices are queried independently, no
// cross-table transaction.
type AnalyticsService struct {
	vehicles VehicleHistoryReader
	meters   MeterHistoryReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService returns service instance.
func NewAnalyticsService(vehicles VehicleHistoryReader, meters MeterHistoryReader, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		vehicles: vehicles,
		meters:   meters,
		logger:   logger,
		now:      time.Now,
	}
}

// GetPerformance correlates DC energy delivered by the vehicle against AC
// energy consumed from the grid over the last windowHours hours, evaluated
// at call time. With an empty meterID the consumption total spans all
// meters in the window.
//
// Returns ErrNoVehicleData when the vehicle has no history in the window;
// an empty meter slice is not an error.
func (s *AnalyticsService) GetPerformance(ctx context.Context, vehicleID string, windowHours int, meterID string) (*models.PerformanceReport, error) {
	if windowHours <= 0 {
		windowHours = defaultWindowHours
	}

	started := s.now()
	periodEnd := started.UTC()
	periodStart := periodEnd.Add(-time.Duration(windowHours) * time.Hour)

	vehicleRecords, err := s.vehicles.QueryWindow(ctx, vehicleID, periodStart, periodEnd)
	if err != nil {
		metrics.AnalyticsRecorded(metrics.ResultError, s.now().Sub(started))
		return nil, fmt.Errorf("query vehicle history: %w", err)
	}
	if len(vehicleRecords) == 0 {
		metrics.AnalyticsRecorded(metrics.ResultNotFound, s.now().Sub(started))
		return nil, fmt.Errorf("no telemetry data found for vehicle %s in the last %d hours: %w",
			vehicleID, windowHours, ErrNoVehicleData)
	}

	var totalDelivered, tempSum float64
	for _, rec := range vehicleRecords {
		totalDelivered += rec.KwhDeliveredDC
		tempSum += rec.BatteryTemp
	}
	averageTemp := tempSum / float64(len(vehicleRecords))

	meterRecords, err := s.meters.QueryWindow(ctx, meterID, periodStart, periodEnd)
	if err != nil {
		metrics.AnalyticsRecorded(metrics.ResultError, s.now().Sub(started))
		return nil, fmt.Errorf("query meter history: %w", err)
	}

	var totalConsumed float64
	for _, rec := range meterRecords {
		totalConsumed += rec.KwhConsumedAC
	}

	var efficiency float64
	if totalConsumed > 0 {
		efficiency = totalDelivered / totalConsumed
	}

	metrics.AnalyticsRecorded(metrics.ResultSuccess, s.now().Sub(started))
	return &models.PerformanceReport{
		VehicleID:           vehicleID,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		TotalKwhConsumedAC:  totalConsumed,
		TotalKwhDeliveredDC: totalDelivered,
		EfficiencyRatio:     efficiency,
		AverageBatteryTemp:  averageTemp,
		RecordCount:         len(vehicleRecords),
	}, nil
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleetpulse/internal/metrics"
	"fleetpulse/internal/models"
)

// VehicleHistoryStore appends vehicle telemetry to the immutable log.
type VehicleHistoryStore interface {
	Insert(ctx context.Context, rec *models.VehicleHistoryRecord) error
	InsertBatch(ctx context.Context, recs []models.VehicleHistoryRecord) error
}

// VehicleLiveStore replaces the per-vehicle latest snapshot.
type VehicleLiveStore interface {
	Upsert(ctx context.Context, rec *models.VehicleLiveRecord) error
	UpsertBatch(ctx context.Context, recs []models.VehicleLiveRecord) error
}

// MeterHistoryStore appends meter telemetry to the immutable log.
type MeterHistoryStore interface {
	Insert(ctx context.Context, rec *models.MeterHistoryRecord) error
	InsertBatch(ctx context.Context, recs []models.MeterHistoryRecord) error
}

// MeterLiveStore replaces the per-meter latest snapshot.
type MeterLiveStore interface {
	Upsert(ctx context.Context, rec *models.MeterLiveRecord) error
	UpsertBatch(ctx context.Context, recs []models.MeterLiveRecord) error
}

// SnapshotCache mirrors live snapshots for fast reads. Failures are logged,
// never surfaced: the postgres live tables are the source of truth.
type SnapshotCache interface {
	SaveVehicle(ctx context.Context, rec models.VehicleLiveRecord) error
	SaveMeter(ctx context.Context, rec models.MeterLiveRecord) error
}

// IngestionService performs the dual write for every sample: append to
// history, then upsert the live snapshot keyed by entity id.
type IngestionService struct {
	vehicleHistory VehicleHistoryStore
	vehicleLive    VehicleLiveStore
	meterHistory   MeterHistoryStore
	meterLive      MeterLiveStore
	cache          SnapshotCache
	logger         *zap.Logger
}

// NewIngestionService returns service instance. cache may be nil.
func NewIngestionService(
	vehicleHistory VehicleHistoryStore,
	vehicleLive VehicleLiveStore,
	meterHistory MeterHistoryStore,
	meterLive MeterLiveStore,
	cache SnapshotCache,
	logger *zap.Logger,
) *IngestionService {
	return &IngestionService{
		vehicleHistory: vehicleHistory,
		vehicleLive:    vehicleLive,
		meterHistory:   meterHistory,
		meterLive:      meterLive,
		cache:          cache,
		logger:         logger,
	}
}

// IngestVehicle appends one vehicle sample to history and replaces the
// vehicle's live snapshot. The snapshot reflects arrival order: an older
// sample timestamp arriving later still wins.
func (s *IngestionService) IngestVehicle(ctx context.Context, sample models.VehicleSample) error {
	ts := sample.Timestamp.UTC()

	history := &models.VehicleHistoryRecord{
		VehicleID:      sample.VehicleID,
		SoC:            sample.SoC,
		KwhDeliveredDC: sample.KwhDeliveredDC,
		BatteryTemp:    sample.BatteryTemp,
		Timestamp:      ts,
	}
	if err := s.vehicleHistory.Insert(ctx, history); err != nil {
		metrics.IngestRecorded(string(KindVehicle), metrics.ResultError)
		return fmt.Errorf("append vehicle history: %w", err)
	}

	live := &models.VehicleLiveRecord{
		VehicleID:      sample.VehicleID,
		SoC:            sample.SoC,
		KwhDeliveredDC: sample.KwhDeliveredDC,
		BatteryTemp:    sample.BatteryTemp,
		Timestamp:      ts,
	}
	if err := s.vehicleLive.Upsert(ctx, live); err != nil {
		metrics.IngestRecorded(string(KindVehicle), metrics.ResultError)
		return &PartialWriteError{Class: string(KindVehicle), EntityID: sample.VehicleID, Err: err}
	}

	s.cacheVehicle(ctx, *live)
	metrics.IngestRecorded(string(KindVehicle), metrics.ResultSuccess)
	return nil
}

// IngestMeter appends one meter sample to history and replaces the meter's
// live snapshot.
func (s *IngestionService) IngestMeter(ctx context.Context, sample models.MeterSample) error {
	ts := sample.Timestamp.UTC()

	history := &models.MeterHistoryRecord{
		MeterID:       sample.MeterID,
		KwhConsumedAC: sample.KwhConsumedAC,
		Voltage:       sample.Voltage,
		Timestamp:     ts,
	}
	if err := s.meterHistory.Insert(ctx, history); err != nil {
		metrics.IngestRecorded(string(KindMeter), metrics.ResultError)
		return fmt.Errorf("append meter history: %w", err)
	}

	live := &models.MeterLiveRecord{
		MeterID:       sample.MeterID,
		KwhConsumedAC: sample.KwhConsumedAC,
		Voltage:       sample.Voltage,
		Timestamp:     ts,
	}
	if err := s.meterLive.Upsert(ctx, live); err != nil {
		metrics.IngestRecorded(string(KindMeter), metrics.ResultError)
		return &PartialWriteError{Class: string(KindMeter), EntityID: sample.MeterID, Err: err}
	}

	s.cacheMeter(ctx, *live)
	metrics.IngestRecorded(string(KindMeter), metrics.ResultSuccess)
	return nil
}

// IngestRecord classifies an untyped record, validates it and ingests it.
// Returns the classified kind for the caller's response.
func (s *IngestionService) IngestRecord(ctx context.Context, record map[string]interface{}) (Kind, error) {
	classified, err := Classify(record)
	if err != nil {
		return KindUnrecognized, err
	}

	switch classified.Kind {
	case KindVehicle:
		if err := ValidateVehicle(*classified.Vehicle); err != nil {
			return KindVehicle, err
		}
		return KindVehicle, s.IngestVehicle(ctx, *classified.Vehicle)
	case KindMeter:
		if err := ValidateMeter(*classified.Meter); err != nil {
			return KindMeter, err
		}
		return KindMeter, s.IngestMeter(ctx, *classified.Meter)
	default:
		return KindUnrecognized, &ShapeError{Message: "record matches neither vehicle nor meter telemetry shape"}
	}
}

// BatchResult summarizes an accepted batch.
type BatchResult struct {
	Vehicles int `json:"vehicles"`
	Meters   int `json:"meters"`
}

// IngestBatch ingests a heterogeneous batch. All records are classified and
// validated before any write; a single bad record rejects the whole batch
// with per-record errors. The vehicle and meter subsets then persist
// independently and concurrently, each as one history append followed by
// one live upsert pass in arrival order.
func (s *IngestionService) IngestBatch(ctx context.Context, records []map[string]interface{}) (BatchResult, error) {
	var (
		vehicles  []models.VehicleSample
		meters    []models.MeterSample
		recordErr []RecordError
	)

	for i, record := range records {
		classified, err := Classify(record)
		if err != nil {
			recordErr = append(recordErr, RecordError{Index: i, Err: err})
			continue
		}
		switch classified.Kind {
		case KindVehicle:
			if err := ValidateVehicle(*classified.Vehicle); err != nil {
				recordErr = append(recordErr, RecordError{Index: i, Err: err})
				continue
			}
			vehicles = append(vehicles, *classified.Vehicle)
		case KindMeter:
			if err := ValidateMeter(*classified.Meter); err != nil {
				recordErr = append(recordErr, RecordError{Index: i, Err: err})
				continue
			}
			meters = append(meters, *classified.Meter)
		}
	}

	if len(recordErr) > 0 {
		metrics.BatchRecorded(metrics.ResultError)
		return BatchResult{}, &BatchError{Records: recordErr}
	}

	errCh := make(chan error, 2)
	go func() { errCh <- s.ingestVehicleBatch(ctx, vehicles) }()
	go func() { errCh <- s.ingestMeterBatch(ctx, meters) }()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		metrics.BatchRecorded(metrics.ResultError)
		return BatchResult{}, firstErr
	}

	metrics.BatchRecorded(metrics.ResultSuccess)
	return BatchResult{Vehicles: len(vehicles), Meters: len(meters)}, nil
}

func (s *IngestionService) ingestVehicleBatch(ctx context.Context, samples []models.VehicleSample) error {
	if len(samples) == 0 {
		return nil
	}

	history := make([]models.VehicleHistoryRecord, 0, len(samples))
	for _, sample := range samples {
		history = append(history, models.VehicleHistoryRecord{
			VehicleID:      sample.VehicleID,
			SoC:            sample.SoC,
			KwhDeliveredDC: sample.KwhDeliveredDC,
			BatteryTemp:    sample.BatteryTemp,
			Timestamp:      sample.Timestamp.UTC(),
		})
	}
	if err := s.vehicleHistory.InsertBatch(ctx, history); err != nil {
		return fmt.Errorf("append vehicle history batch: %w", err)
	}

	// Last occurrence per vehicle id wins, mirroring single-ingest
	// arrival-order semantics within the batch.
	live := dedupeVehicleLive(samples)
	if err := s.vehicleLive.UpsertBatch(ctx, live); err != nil {
		return &PartialWriteError{Class: string(KindVehicle), EntityID: "batch", Err: err}
	}

	for _, rec := range live {
		s.cacheVehicle(ctx, rec)
	}
	return nil
}

func (s *IngestionService) ingestMeterBatch(ctx context.Context, samples []models.MeterSample) error {
	if len(samples) == 0 {
		return nil
	}

	history := make([]models.MeterHistoryRecord, 0, len(samples))
	for _, sample := range samples {
		history = append(history, models.MeterHistoryRecord{
			MeterID:       sample.MeterID,
			KwhConsumedAC: sample.KwhConsumedAC,
			Voltage:       sample.Voltage,
			Timestamp:     sample.Timestamp.UTC(),
		})
	}
	if err := s.meterHistory.InsertBatch(ctx, history); err != nil {
		return fmt.Errorf("append meter history batch: %w", err)
	}

	live := dedupeMeterLive(samples)
	if err := s.meterLive.UpsertBatch(ctx, live); err != nil {
		return &PartialWriteError{Class: string(KindMeter), EntityID: "batch", Err: err}
	}

	for _, rec := range live {
		s.cacheMeter(ctx, rec)
	}
	return nil
}

func dedupeVehicleLive(samples []models.VehicleSample) []models.VehicleLiveRecord {
	latest := make(map[string]int, len(samples))
	order := make([]string, 0, len(samples))
	for i, sample := range samples {
		if _, seen := latest[sample.VehicleID]; !seen {
			order = append(order, sample.VehicleID)
		}
		latest[sample.VehicleID] = i
	}

	recs := make([]models.VehicleLiveRecord, 0, len(order))
	for _, id := range order {
		sample := samples[latest[id]]
		recs = append(recs, models.VehicleLiveRecord{
			VehicleID:      sample.VehicleID,
			SoC:            sample.SoC,
			KwhDeliveredDC: sample.KwhDeliveredDC,
			BatteryTemp:    sample.BatteryTemp,
			Timestamp:      sample.Timestamp.UTC(),
		})
	}
	return recs
}

func dedupeMeterLive(samples []models.MeterSample) []models.MeterLiveRecord {
	latest := make(map[string]int, len(samples))
	order := make([]string, 0, len(samples))
	for i, sample := range samples {
		if _, seen := latest[sample.MeterID]; !seen {
			order = append(order, sample.MeterID)
		}
		latest[sample.MeterID] = i
	}

	recs := make([]models.MeterLiveRecord, 0, len(order))
	for _, id := range order {
		sample := samples[latest[id]]
		recs = append(recs, models.MeterLiveRecord{
			MeterID:       sample.MeterID,
			KwhConsumedAC: sample.KwhConsumedAC,
			Voltage:       sample.Voltage,
			Timestamp:     sample.Timestamp.UTC(),
		})
	}
	return recs
}

func (s *IngestionService) cacheVehicle(ctx context.Context, rec models.VehicleLiveRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveVehicle(ctx, rec); err != nil {
		s.logger.Warn("failed to cache vehicle snapshot",
			zap.String("vehicle_id", rec.VehicleID), zap.Error(err))
	}
}

func (s *IngestionService) cacheMeter(ctx context.Context, rec models.MeterLiveRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveMeter(ctx, rec); err != nil {
		s.logger.Warn("failed to cache meter snapshot",
			zap.String("meter_id", rec.MeterID), zap.Error(err))
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleetpulse/internal/models"
)

// MeterLiveRepository holds the single latest reading per meter id.
type MeterLiveRepository struct {
	db *sql.DB
}

// NewMeterLiveRepository returns repository.
func NewMeterLiveRepository(db *sql.DB) *MeterLiveRepository {
	return &MeterLiveRepository{db: db}
}

// Upsert inserts the first row for a meter id or replaces all non-key fields.
func (r *MeterLiveRepository) Upsert(ctx context.Context, rec *models.MeterLiveRecord) error {
	const query = `
		INSERT INTO meter_live (meter_id, kwh_consumed_ac, voltage, recorded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (meter_id) DO UPDATE SET
			kwh_consumed_ac = EXCLUDED.kwh_consumed_ac,
			voltage = EXCLUDED.voltage,
			recorded_at = EXCLUDED.recorded_at,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		rec.MeterID,
		rec.KwhConsumedAC,
		rec.Voltage,
		rec.Timestamp,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

// UpsertBatch applies upserts in order within one transaction.
func (r *MeterLiveRepository) UpsertBatch(ctx context.Context, recs []models.MeterLiveRecord) error {
	if len(recs) == 0 {
		return nil
	}

	const query = `
		INSERT INTO meter_live (meter_id, kwh_consumed_ac, voltage, recorded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (meter_id) DO UPDATE SET
			kwh_consumed_ac = EXCLUDED.kwh_consumed_ac,
			voltage = EXCLUDED.voltage,
			recorded_at = EXCLUDED.recorded_at,
			updated_at = NOW()
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range recs {
		if _, err := stmt.ExecContext(ctx,
			recs[i].MeterID,
			recs[i].KwhConsumedAC,
			recs[i].Voltage,
			recs[i].Timestamp,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Get returns the live snapshot for a meter id.
func (r *MeterLiveRepository) Get(ctx context.Context, meterID string) (*models.MeterLiveRecord, error) {
	const query = `
		SELECT meter_id, kwh_consumed_ac, voltage, recorded_at, created_at, updated_at
		FROM meter_live
		WHERE meter_id = $1
	`
	var rec models.MeterLiveRecord
	err := r.db.QueryRowContext(ctx, query, meterID).Scan(
		&rec.MeterID,
		&rec.KwhConsumedAC,
		&rec.Voltage,
		&rec.Timestamp,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleetpulse/internal/models"
)

// VehicleLiveRepository holds the single latest reading per vehicle id.
type VehicleLiveRepository struct {
	db *sql.DB
}

// NewVehicleLiveRepository returns repository.
func NewVehicleLiveRepository(db *sql.DB) *VehicleLiveRepository {
	return &VehicleLiveRepository{db: db}
}

// Upsert inserts the first row for a vehicle id or replaces all non-key
// fields of the existing one. The incoming values win regardless of their
// sample timestamp.
func (r *VehicleLiveRepository) Upsert(ctx context.Context, rec *models.VehicleLiveRecord) error {
	const query = `
		INSERT INTO vehicle_live (vehicle_id, soc, kwh_delivered_dc, battery_temp, recorded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (vehicle_id) DO UPDATE SET
			soc = EXCLUDED.soc,
			kwh_delivered_dc = EXCLUDED.kwh_delivered_dc,
			battery_temp = EXCLUDED.battery_temp,
			recorded_at = EXCLUDED.recorded_at,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		rec.VehicleID,
		rec.SoC,
		rec.KwhDeliveredDC,
		rec.BatteryTemp,
		rec.Timestamp,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

// UpsertBatch applies upserts in order within one transaction, so a later
// occurrence of the same vehicle id overwrites an earlier one.
func (r *VehicleLiveRepository) UpsertBatch(ctx context.Context, recs []models.VehicleLiveRecord) error {
	if len(recs) == 0 {
		return nil
	}

	const query = `
		INSERT INTO vehicle_live (vehicle_id, soc, kwh_delivered_dc, battery_temp, recorded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (vehicle_id) DO UPDATE SET
			soc = EXCLUDED.soc,
			kwh_delivered_dc = EXCLUDED.kwh_delivered_dc,
			battery_temp = EXCLUDED.battery_temp,
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
			recs[i].VehicleID,
			recs[i].SoC,
			recs[i].KwhDeliveredDC,
			recs[i].BatteryTemp,
			recs[i].Timestamp,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Get returns the live snapshot for a vehicle id.
func (r *VehicleLiveRepository) Get(ctx context.Context, vehicleID string) (*models.VehicleLiveRecord, error) {
	const query = `
		SELECT vehicle_id, soc, kwh_delivered_dc, battery_temp, recorded_at, created_at, updated_at
		FROM vehicle_live
		WHERE vehicle_id = $1
	`
	var rec models.VehicleLiveRecord
	err := r.db.QueryRowContext(ctx, query, vehicleID).Scan(
		&rec.VehicleID,
		&rec.SoC,
		&rec.KwhDeliveredDC,
		&rec.BatteryTemp,
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

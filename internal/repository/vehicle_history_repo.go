package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"fleetpulse/internal/models"
)

// VehicleHistoryRepository persists the append-only vehicle telemetry log.
// Rows are never updated or deleted here.
type VehicleHistoryRepository struct {
	db *sql.DB
}

// NewVehicleHistoryRepository returns repository.
func NewVehicleHistoryRepository(db *sql.DB) *VehicleHistoryRepository {
	return &VehicleHistoryRepository{db: db}
}

// Insert appends one history record.
func (r *VehicleHistoryRepository) Insert(ctx context.Context, rec *models.VehicleHistoryRecord) error {
	const query = `
		INSERT INTO vehicle_history (id, vehicle_id, soc, kwh_delivered_dc, battery_temp, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	rec.ID = uuid.NewString()
	return r.db.QueryRowContext(ctx, query,
		rec.ID,
		rec.VehicleID,
		rec.SoC,
		rec.KwhDeliveredDC,
		rec.BatteryTemp,
		rec.Timestamp,
	).Scan(&rec.CreatedAt)
}

// InsertBatch appends all records in a single transaction.
func (r *VehicleHistoryRepository) InsertBatch(ctx context.Context, recs []models.VehicleHistoryRecord) error {
	if len(recs) == 0 {
		return nil
	}

	const query = `
		INSERT INTO vehicle_history (id, vehicle_id, soc, kwh_delivered_dc, battery_temp, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
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
		recs[i].ID = uuid.NewString()
		if _, err := stmt.ExecContext(ctx,
			recs[i].ID,
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

// QueryWindow returns records for the vehicle within [from, to], ascending by timestamp.
func (r *VehicleHistoryRepository) QueryWindow(ctx context.Context, vehicleID string, from, to time.Time) ([]models.VehicleHistoryRecord, error) {
	const query = `
		SELECT id, vehicle_id, soc, kwh_delivered_dc, battery_temp, recorded_at, created_at
		FROM vehicle_history
		WHERE vehicle_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, vehicleID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.VehicleHistoryRecord
	for rows.Next() {
		var rec models.VehicleHistoryRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.VehicleID,
			&rec.SoC,
			&rec.KwhDeliveredDC,
			&rec.BatteryTemp,
			&rec.Timestamp,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

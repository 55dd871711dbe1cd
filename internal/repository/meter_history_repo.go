package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"fleetpulse/internal/models"
)

// MeterHistoryRepository persists the append-only meter telemetry log.
type MeterHistoryRepository struct {
	db *sql.DB
}

// NewMeterHistoryRepository returns repository.
func NewMeterHistoryRepository(db *sql.DB) *MeterHistoryRepository {
	return &MeterHistoryRepository{db: db}
}

// Insert appends one history record.
func (r *MeterHistoryRepository) Insert(ctx context.Context, rec *models.MeterHistoryRecord) error {
	const query = `
		INSERT INTO meter_history (id, meter_id, kwh_consumed_ac, voltage, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	rec.ID = uuid.NewString()
	return r.db.QueryRowContext(ctx, query,
		rec.ID,
		rec.MeterID,
		rec.KwhConsumedAC,
		rec.Voltage,
		rec.Timestamp,
	).Scan(&rec.CreatedAt)
}

// InsertBatch appends all records in a single transaction.
func (r *MeterHistoryRepository) InsertBatch(ctx context.Context, recs []models.MeterHistoryRecord) error {
	if len(recs) == 0 {
		return nil
	}

	const query = `
		INSERT INTO meter_history (id, meter_id, kwh_consumed_ac, voltage, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
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

// QueryWindow returns records within [from, to], ascending by timestamp.
// An empty meterID leaves the query unscoped across all meters.
func (r *MeterHistoryRepository) QueryWindow(ctx context.Context, meterID string, from, to time.Time) ([]models.MeterHistoryRecord, error) {
	const scoped = `
		SELECT id, meter_id, kwh_consumed_ac, voltage, recorded_at, created_at
		FROM meter_history
		WHERE meter_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at ASC
	`
	const unscoped = `
		SELECT id, meter_id, kwh_consumed_ac, voltage, recorded_at, created_at
		FROM meter_history
		WHERE recorded_at >= $1 AND recorded_at <= $2
		ORDER BY recorded_at ASC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if meterID != "" {
		rows, err = r.db.QueryContext(ctx, scoped, meterID, from, to)
	} else {
		rows, err = r.db.QueryContext(ctx, unscoped, from, to)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.MeterHistoryRecord
	for rows.Next() {
		var rec models.MeterHistoryRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.MeterID,
			&rec.KwhConsumedAC,
			&rec.Voltage,
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

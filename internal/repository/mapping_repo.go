package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"fleetpulse/internal/models"
)

// MappingRepository persists vehicle to meter session mappings.
type MappingRepository struct {
	db *sql.DB
}

// NewMappingRepository returns repository.
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Create stores a new mapping and deactivates any previous active mapping
// for the same vehicle.
func (r *MappingRepository) Create(ctx context.Context, m *models.VehicleMeterMapping) error {
	const deactivate = `
		UPDATE vehicle_meter_mapping
		SET is_active = FALSE, updated_at = NOW()
		WHERE vehicle_id = $1 AND is_active = TRUE
	`
	const insert = `
		INSERT INTO vehicle_meter_mapping (id, vehicle_id, meter_id, session_start, session_end, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if m.IsActive {
		if _, err := tx.ExecContext(ctx, deactivate, m.VehicleID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	m.ID = uuid.NewString()
	if err := tx.QueryRowContext(ctx, insert,
		m.ID,
		m.VehicleID,
		m.MeterID,
		m.SessionStart,
		m.SessionEnd,
		m.IsActive,
	).Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ActiveMeterFor resolves the currently active meter id for a vehicle.
func (r *MappingRepository) ActiveMeterFor(ctx context.Context, vehicleID string) (string, error) {
	const query = `
		SELECT meter_id
		FROM vehicle_meter_mapping
		WHERE vehicle_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`
	var meterID string
	err := r.db.QueryRowContext(ctx, query, vehicleID).Scan(&meterID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return meterID, nil
}

package models

import "time"

// VehicleSample is a single vehicle telemetry reading.
type VehicleSample struct {
	VehicleID      string    `json:"vehicleId"`
	SoC            float64   `json:"soc"`
	KwhDeliveredDC float64   `json:"kwhDeliveredDc"`
	BatteryTemp    float64   `json:"batteryTemp"`
	Timestamp      time.Time `json:"timestamp"`
}

// MeterSample is a single energy meter reading.
type MeterSample struct {
	MeterID       string    `json:"meterId"`
	KwhConsumedAC float64   `json:"kwhConsumedAc"`
	Voltage       float64   `json:"voltage"`
	Timestamp     time.Time `json:"timestamp"`
}

// VehicleHistoryRecord is an immutable appended vehicle reading.
type VehicleHistoryRecord struct {
	ID             string    `db:"id" json:"id"`
	VehicleID      string    `db:"vehicle_id" json:"vehicleId"`
	SoC            float64   `db:"soc" json:"soc"`
	KwhDeliveredDC float64   `db:"kwh_delivered_dc" json:"kwhDeliveredDc"`
	BatteryTemp    float64   `db:"battery_temp" json:"batteryTemp"`
	Timestamp      time.Time `db:"recorded_at" json:"timestamp"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// MeterHistoryRecord is an immutable appended meter reading.
type MeterHistoryRecord struct {
	ID            string    `db:"id" json:"id"`
	MeterID       string    `db:"meter_id" json:"meterId"`
	KwhConsumedAC float64   `db:"kwh_consumed_ac" json:"kwhConsumedAc"`
	Voltage       float64   `db:"voltage" json:"voltage"`
	Timestamp     time.Time `db:"recorded_at" json:"timestamp"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// VehicleLiveRecord is the single most recent reading per vehicle id.
// Overwritten in place on every ingest for that id.
type VehicleLiveRecord struct {
	VehicleID      string    `db:"vehicle_id" json:"vehicleId"`
	SoC            float64   `db:"soc" json:"soc"`
	KwhDeliveredDC float64   `db:"kwh_delivered_dc" json:"kwhDeliveredDc"`
	BatteryTemp    float64   `db:"battery_temp" json:"batteryTemp"`
	Timestamp      time.Time `db:"recorded_at" json:"timestamp"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// MeterLiveRecord is the single most recent reading per meter id.
type MeterLiveRecord struct {
	MeterID       string    `db:"meter_id" json:"meterId"`
	KwhConsumedAC float64   `db:"kwh_consumed_ac" json:"kwhConsumedAc"`
	Voltage       float64   `db:"voltage" json:"voltage"`
	Timestamp     time.Time `db:"recorded_at" json:"timestamp"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// VehicleMeterMapping associates a vehicle with a meter over an optional
// charging session interval.
type VehicleMeterMapping struct {
	ID           string     `db:"id" json:"id"`
	VehicleID    string     `db:"vehicle_id" json:"vehicleId"`
	MeterID      string     `db:"meter_id" json:"meterId"`
	SessionStart *time.Time `db:"session_start" json:"sessionStart,omitempty"`
	SessionEnd   *time.Time `db:"session_end" json:"sessionEnd,omitempty"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

package models

import "time"

// PerformanceReport correlates DC energy delivered by a vehicle against AC
// energy drawn from the grid over a time window.
type PerformanceReport struct {
	VehicleID           string    `json:"vehicleId"`
	PeriodStart         time.Time `json:"periodStart"`
	PeriodEnd           time.Time `json:"periodEnd"`
	TotalKwhConsumedAC  float64   `json:"totalKwhConsumedAc"`
	TotalKwhDeliveredDC float64   `json:"totalKwhDeliveredDc"`
	EfficiencyRatio     float64   `json:"efficiencyRatio"`
	AverageBatteryTemp  float64   `json:"averageBatteryTemp"`
	RecordCount         int       `json:"recordCount"`
}

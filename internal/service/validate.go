package service

import "fleetpulse/internal/models"

// ValidateVehicle checks value ranges on a vehicle sample. Shape is assumed
// settled: this runs after classification, before any write.
func ValidateVehicle(s models.VehicleSample) error {
	var bad []string
	if s.VehicleID == "" {
		bad = append(bad, "vehicleId")
	}
	if s.SoC < 0 || s.SoC > 100 {
		bad = append(bad, "soc")
	}
	if s.KwhDeliveredDC < 0 {
		bad = append(bad, "kwhDeliveredDc")
	}
	if s.Timestamp.IsZero() {
		bad = append(bad, "timestamp")
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// ValidateMeter checks value ranges on a meter sample.
func ValidateMeter(s models.MeterSample) error {
	var bad []string
	if s.MeterID == "" {
		bad = append(bad, "meterId")
	}
	if s.KwhConsumedAC < 0 {
		bad = append(bad, "kwhConsumedAc")
	}
	if s.Voltage < 0 {
		bad = append(bad, "voltage")
	}
	if s.Timestamp.IsZero() {
		bad = append(bad, "timestamp")
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

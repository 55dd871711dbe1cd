package service

import (
	"fmt"
	"strings"
	"time"

	"fleetpulse/internal/models"
)

// Kind tags the outcome of classifying an untyped telemetry record.
type Kind string

const (
	KindVehicle      Kind = "vehicle"
	KindMeter        Kind = "meter"
	KindUnrecognized Kind = "unrecognized"
)

// ClassifiedRecord is the decoded result of classification. Exactly one of
// Vehicle or Meter is set when Kind is not KindUnrecognized.
type ClassifiedRecord struct {
	Kind    Kind
	Vehicle *models.VehicleSample
	Meter   *models.MeterSample
}

// ClassifyKind decides the record's shape by field presence alone. A record
// is vehicle-shaped iff it carries vehicleId, soc, kwhDeliveredDc and
// batteryTemp; meter-shaped iff it carries meterId, kwhConsumedAc and
// voltage. Matching both patterns or neither is unrecognized.
func ClassifyKind(record map[string]interface{}) Kind {
	isVehicle := hasFields(record, "vehicleId", "soc", "kwhDeliveredDc", "batteryTemp")
	isMeter := hasFields(record, "meterId", "kwhConsumedAc", "voltage")

	switch {
	case isVehicle && !isMeter:
		return KindVehicle
	case isMeter && !isVehicle:
		return KindMeter
	default:
		return KindUnrecognized
	}
}

// Classify decides the record's shape and decodes it into a typed sample.
func Classify(record map[string]interface{}) (ClassifiedRecord, error) {
	switch ClassifyKind(record) {
	case KindVehicle:
		sample, err := decodeVehicle(record)
		if err != nil {
			return ClassifiedRecord{Kind: KindUnrecognized}, err
		}
		return ClassifiedRecord{Kind: KindVehicle, Vehicle: sample}, nil
	case KindMeter:
		sample, err := decodeMeter(record)
		if err != nil {
			return ClassifiedRecord{Kind: KindUnrecognized}, err
		}
		return ClassifiedRecord{Kind: KindMeter, Meter: sample}, nil
	default:
		return ClassifiedRecord{Kind: KindUnrecognized}, &ShapeError{
			Message: "record matches neither vehicle nor meter telemetry shape",
		}
	}
}

func hasFields(record map[string]interface{}, fields ...string) bool {
	for _, f := range fields {
		if _, ok := record[f]; !ok {
			return false
		}
	}
	return true
}

func decodeVehicle(record map[string]interface{}) (*models.VehicleSample, error) {
	var bad []string

	id, ok := record["vehicleId"].(string)
	if !ok {
		bad = append(bad, "vehicleId")
	}
	soc, ok := toFloat(record["soc"])
	if !ok {
		bad = append(bad, "soc")
	}
	kwh, ok := toFloat(record["kwhDeliveredDc"])
	if !ok {
		bad = append(bad, "kwhDeliveredDc")
	}
	temp, ok := toFloat(record["batteryTemp"])
	if !ok {
		bad = append(bad, "batteryTemp")
	}
	ts, err := decodeTimestamp(record["timestamp"])
	if err != nil {
		bad = append(bad, "timestamp")
	}

	if len(bad) > 0 {
		return nil, &ShapeError{Message: "undecodable vehicle telemetry fields", Fields: bad}
	}
	return &models.VehicleSample{
		VehicleID:      id,
		SoC:            soc,
		KwhDeliveredDC: kwh,
		BatteryTemp:    temp,
		Timestamp:      ts,
	}, nil
}

func decodeMeter(record map[string]interface{}) (*models.MeterSample, error) {
	var bad []string

	id, ok := record["meterId"].(string)
	if !ok {
		bad = append(bad, "meterId")
	}
	kwh, ok := toFloat(record["kwhConsumedAc"])
	if !ok {
		bad = append(bad, "kwhConsumedAc")
	}
	voltage, ok := toFloat(record["voltage"])
	if !ok {
		bad = append(bad, "voltage")
	}
	ts, err := decodeTimestamp(record["timestamp"])
	if err != nil {
		bad = append(bad, "timestamp")
	}

	if len(bad) > 0 {
		return nil, &ShapeError{Message: "undecodable meter telemetry fields", Fields: bad}
	}
	return &models.MeterSample{
		MeterID:       id,
		KwhConsumedAC: kwh,
		Voltage:       voltage,
		Timestamp:     ts,
	}, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// decodeTimestamp accepts RFC 3339 strings and epoch milliseconds.
func decodeTimestamp(v interface{}) (time.Time, error) {
	switch ts := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(ts))
		if err != nil {
			return time.Time{}, err
		}
		return parsed.UTC(), nil
	case float64:
		return time.UnixMilli(int64(ts)).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("timestamp missing")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]interface{}
		want   Kind
	}{
		{
			name: "vehicle",
			record: map[string]interface{}{
				"vehicleId": "V1", "soc": 80.0, "kwhDeliveredDc": 5.0, "batteryTemp": 30.0,
				"timestamp": "2026-08-30T10:00:00Z",
			},
			want: KindVehicle,
		},
		{
			name: "meter",
			record: map[string]interface{}{
				"meterId": "M1", "kwhConsumedAc": 10.0, "voltage": 230.0,
				"timestamp": "2026-08-30T10:00:00Z",
			},
			want: KindMeter,
		},
		{
			name: "vehicle with extra fields still vehicle",
			record: map[string]interface{}{
				"vehicleId": "V1", "soc": 80.0, "kwhDeliveredDc": 5.0, "batteryTemp": 30.0,
				"firmware": "1.2.3",
			},
			want: KindVehicle,
		},
		{
			name: "both shapes is ambiguous",
			record: map[string]interface{}{
				"vehicleId": "V1", "soc": 80.0, "kwhDeliveredDc": 5.0, "batteryTemp": 30.0,
				"meterId": "M1", "kwhConsumedAc": 10.0, "voltage": 230.0,
			},
			want: KindUnrecognized,
		},
		{
			name:   "neither shape",
			record: map[string]interface{}{"deviceId": "X", "value": 1.0},
			want:   KindUnrecognized,
		},
		{
			name: "vehicle missing temperature",
			record: map[string]interface{}{
				"vehicleId": "V1", "soc": 80.0, "kwhDeliveredDc": 5.0,
			},
			want: KindUnrecognized,
		},
		{
			name: "meter missing voltage",
			record: map[string]interface{}{
				"meterId": "M1", "kwhConsumedAc": 10.0,
			},
			want: KindUnrecognized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyKind(tt.record))
		})
	}
}

func TestClassifyDecodesVehicle(t *testing.T) {
	record := map[string]interface{}{
		"vehicleId":      "V1",
		"soc":            80.0,
		"kwhDeliveredDc": 5.0,
		"batteryTemp":    30.0,
		"timestamp":      "2026-08-30T10:00:00+02:00",
	}

	classified, err := Classify(record)
	require.NoError(t, err)
	require.Equal(t, KindVehicle, classified.Kind)
	require.NotNil(t, classified.Vehicle)

	assert.Equal(t, "V1", classified.Vehicle.VehicleID)
	assert.Equal(t, 80.0, classified.Vehicle.SoC)
	assert.Equal(t, 5.0, classified.Vehicle.KwhDeliveredDC)
	assert.Equal(t, 30.0, classified.Vehicle.BatteryTemp)
	assert.Equal(t, time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC), classified.Vehicle.Timestamp)
	assert.Equal(t, time.UTC, classified.Vehicle.Timestamp.Location())
}

func TestClassifyDecodesMeterEpochMillis(t *testing.T) {
	record := map[string]interface{}{
		"meterId":       "M1",
		"kwhConsumedAc": 10.0,
		"voltage":       230.0,
		"timestamp":     float64(1756512000000),
	}

	classified, err := Classify(record)
	require.NoError(t, err)
	require.Equal(t, KindMeter, classified.Kind)
	require.NotNil(t, classified.Meter)
	assert.Equal(t, time.UnixMilli(1756512000000).UTC(), classified.Meter.Timestamp)
}

func TestClassifyRejectsUndecodableFields(t *testing.T) {
	record := map[string]interface{}{
		"vehicleId":      "V1",
		"soc":            "eighty",
		"kwhDeliveredDc": 5.0,
		"batteryTemp":    30.0,
		"timestamp":      "not-a-time",
	}

	_, err := Classify(record)
	require.Error(t, err)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Contains(t, shapeErr.Fields, "soc")
	assert.Contains(t, shapeErr.Fields, "timestamp")
}

func TestClassifyUnrecognizedReturnsShapeError(t *testing.T) {
	_, err := Classify(map[string]interface{}{"foo": "bar"})

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

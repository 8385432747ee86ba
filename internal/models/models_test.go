package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryRecordDecodesMixedFieldTypes(t *testing.T) {
	raw := `{"timestamp":"2025-05-01T17:39:16","boat_id":12,"accel_x":"0.5","accel_y":null,"accel_z":9.8123,"latitude":" 37.8 ","longitude":-122.4}`

	var rec TelemetryRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, "12", rec.BoatID.String())
	assert.Equal(t, Field("0.5"), rec.AccelX)
	assert.Equal(t, Field(""), rec.AccelY)

	z, err := rec.AccelZ.Float64()
	require.NoError(t, err)
	assert.Equal(t, 9.8123, z)

	lat, err := rec.Latitude.Float64()
	require.NoError(t, err)
	assert.Equal(t, 37.8, lat)
}

func TestFieldFloat64(t *testing.T) {
	tests := []struct {
		name      string
		field     Field
		expected  float64
		expectErr bool
	}{
		{name: "Number", field: "9.81", expected: 9.81},
		{name: "Negative exponent", field: "-1.5e-3", expected: -0.0015},
		{name: "Blank", field: "  ", expectErr: true},
		{name: "Text", field: "abc", expectErr: true},
		{name: "NaN", field: "NaN", expectErr: true},
		{name: "Infinity", field: "+Inf", expectErr: true},
		{name: "Hex float", field: "0x1.3p3", expectErr: true},
		{name: "Upper hex", field: "0X13", expectErr: true},
		{name: "Digit underscores", field: "9_81", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.field.Float64()
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestWaveEstimateRows(t *testing.T) {
	ts := time.Date(2025, 5, 1, 17, 39, 16, 427042000, time.UTC)

	undefined := WaveEstimate{Timestamp: ts, AccelZ: 9.83, Latitude: 37.81, Longitude: -122.41}
	assert.Equal(t, []string{"2025-05-01T17:39:16.427042Z", "9.83", "37.81", "-122.41", ""}, undefined.CSVRow())
	assert.Equal(t, []string{"2025-05-01T17:39:16.427042Z", "9.83", ""}, undefined.ViewRow())

	zero := undefined
	zero.HeightValid = true
	assert.Equal(t, "0", zero.CSVRow()[4], "a defined zero height is written as 0")

	defined := undefined
	defined.WaveHeight = -0.125
	defined.HeightValid = true
	assert.Equal(t, "-0.125", defined.CSVRow()[4])
	assert.Equal(t, "-0.125", defined.ViewRow()[2])

	assert.Len(t, EstimateCSVHeader(), len(defined.CSVRow()))
	assert.Len(t, ViewCSVHeader(), len(defined.ViewRow()))
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field is a raw telemetry value. The boat_data endpoint sends numeric
// columns either as JSON numbers or as numeric strings depending on the
// table driver, so the value is kept as text until it is parsed.
type Field string

func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}

	*f = Field(data)
	return nil
}

// Float64 parses the field. Blank and non-finite values are rejected.
func (f Field) Float64() (float64, error) {
	s := strings.TrimSpace(string(f))
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}

	// ParseFloat also takes hex mantissas and digit underscores; telemetry
	// values are plain decimals only.
	if strings.ContainsAny(s, "xX_") {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value: %q", s)
	}
	return v, nil
}

func (f Field) String() string {
	return strings.TrimSpace(string(f))
}

// TelemetryRecord is one row of the boat_data table as returned by the
// GraphQL endpoint.
type TelemetryRecord struct {
	Timestamp string `json:"timestamp"`
	BoatID    Field  `json:"boat_id"`
	AccelX    Field  `json:"accel_x"` // m/s²
	AccelY    Field  `json:"accel_y"` // m/s²
	AccelZ    Field  `json:"accel_z"` // m/s², gravity included
	Latitude  Field  `json:"latitude"`
	Longitude Field  `json:"longitude"`
}

// Sample is a parsed telemetry record reduced to what the wave estimator needs.
type Sample struct {
	Timestamp            time.Time
	BoatID               string
	VerticalAcceleration float64 // m/s², raw accel_z
	Latitude             float64
	Longitude            float64
}

package models

import (
	"strconv"
	"time"
)

// WaveEstimate is the per-sample output of the wave height estimator.
type WaveEstimate struct {
	Timestamp  time.Time `json:"timestamp"`
	AccelZ     float64   `json:"accel_z"` // raw, not centered
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	WaveHeight float64   `json:"wave_height"`
	// HeightValid is false until the trailing windows are full. WaveHeight
	// is meaningless when it is false.
	HeightValid bool `json:"height_valid"`
}

// EstimateCSVHeader is the column layout of the heatmap CSV.
func EstimateCSVHeader() []string {
	return []string{"timestamp", "accel_z", "latitude", "longitude", "wave_height"}
}

// ViewCSVHeader is the column layout of the narrowed time-range view.
func ViewCSVHeader() []string {
	return []string{"timestamp", "accel_z", "wave_height"}
}

func (e WaveEstimate) CSVRow() []string {
	return []string{
		e.Timestamp.Format(time.RFC3339Nano),
		ftoa(e.AccelZ),
		ftoa(e.Latitude),
		ftoa(e.Longitude),
		e.heightField(),
	}
}

func (e WaveEstimate) ViewRow() []string {
	return []string{
		e.Timestamp.Format(time.RFC3339Nano),
		ftoa(e.AccelZ),
		e.heightField(),
	}
}

// heightField renders an undefined height as a blank cell, never as zero.
func (e WaveEstimate) heightField() string {
	if !e.HeightValid {
		return ""
	}
	return ftoa(e.WaveHeight)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

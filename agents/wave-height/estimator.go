package waveheight

import (
	"errors"
	"fmt"
	"math"

	"wave-stack/internal/models"

	"gonum.org/v1/gonum/floats"
)

// StandardGravity is subtracted from accel_z to leave only dynamic motion.
const StandardGravity = 9.81

// maxWindowSamples bounds the window so the sample count always fits an int.
const maxWindowSamples = math.MaxInt32

var (
	ErrInvalidWindow   = errors.New("invalid estimation window")
	ErrMalformedSample = errors.New("malformed sample")
	ErrOutOfOrder      = errors.New("samples out of timestamp order")
)

// WindowSamples converts a window length in seconds into a sample count at
// the given rate.
func WindowSamples(windowSec, sampleRate float64) (int, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidWindow, sampleRate)
	}
	if !(windowSec > 0) || math.IsInf(windowSec, 0) {
		return 0, fmt.Errorf("%w: window must be positive, got %gs", ErrInvalidWindow, windowSec)
	}

	n := math.Round(windowSec * sampleRate)
	if n < 1 {
		return 0, fmt.Errorf("%w: %gs at %g Hz is less than one sample", ErrInvalidWindow, windowSec, sampleRate)
	}
	if n > maxWindowSamples {
		return 0, fmt.Errorf("%w: %gs at %g Hz exceeds %d samples", ErrInvalidWindow, windowSec, sampleRate, maxWindowSamples)
	}
	return int(n), nil
}

// Estimate derives a wave height for every sample by integrating the
// gravity-free vertical acceleration twice with trailing moving sums.
//
// Samples must be in non-decreasing timestamp order; out-of-order input is
// rejected rather than reordered. The height at index i is defined once
// 2*window-1 samples ending at i are available.
func Estimate(samples []models.Sample, windowSec, sampleRate float64) ([]models.WaveEstimate, error) {
	window, err := WindowSamples(windowSec, sampleRate)
	if err != nil {
		return nil, err
	}
	if err := validateSamples(samples); err != nil {
		return nil, err
	}

	centered := make([]float64, len(samples))
	for i, s := range samples {
		centered[i] = s.VerticalAcceleration - StandardGravity
	}

	velocity, velocityOK := trailingIntegral(centered, nil, window, sampleRate)
	height, heightOK := trailingIntegral(velocity, velocityOK, window, sampleRate)

	estimates := make([]models.WaveEstimate, len(samples))
	for i, s := range samples {
		estimates[i] = models.WaveEstimate{
			Timestamp:   s.Timestamp,
			AccelZ:      s.VerticalAcceleration,
			Latitude:    s.Latitude,
			Longitude:   s.Longitude,
			WaveHeight:  height[i],
			HeightValid: heightOK[i],
		}
	}
	return estimates, nil
}

// trailingIntegral sums the window values ending at each position and
// divides by the sample rate. A position is defined only when every value in
// its window is defined. Definedness of the input is always a suffix, so the
// sum starts at the first defined value and then slides one value at a time
// with compensated add/remove, as pandas' rolling sum does.
func trailingIntegral(values []float64, defined []bool, window int, sampleRate float64) ([]float64, []bool) {
	out := make([]float64, len(values))
	ok := make([]bool, len(values))

	start := 0
	if defined != nil {
		for start < len(defined) && !defined[start] {
			start++
		}
	}
	if len(values)-start < window {
		return out, ok
	}

	sum := floats.Sum(values[start : start+window])
	var comp float64
	i := start + window - 1
	out[i] = sum / sampleRate
	ok[i] = true

	for i++; i < len(values); i++ {
		sum, comp = kahanAdd(sum, comp, values[i])
		sum, comp = kahanAdd(sum, comp, -values[i-window])
		out[i] = sum / sampleRate
		ok[i] = true
	}
	return out, ok
}

func kahanAdd(sum, comp, v float64) (float64, float64) {
	y := v - comp
	t := sum + y
	return t, (t - sum) - y
}

func validateSamples(samples []models.Sample) error {
	for i, s := range samples {
		if s.Timestamp.IsZero() {
			return fmt.Errorf("%w: sample %d has no timestamp", ErrMalformedSample, i)
		}
		if math.IsNaN(s.VerticalAcceleration) || math.IsInf(s.VerticalAcceleration, 0) {
			return fmt.Errorf("%w: sample %d has non-finite accel_z %g", ErrMalformedSample, i, s.VerticalAcceleration)
		}
		if i > 0 && s.Timestamp.Before(samples[i-1].Timestamp) {
			return fmt.Errorf("%w: sample %d at %s precedes sample %d at %s", ErrOutOfOrder,
				i, s.Timestamp.Format("15:04:05.000"), i-1, samples[i-1].Timestamp.Format("15:04:05.000"))
		}
	}
	return nil
}

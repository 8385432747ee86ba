package waveheight

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"wave-stack/internal/models"

	"github.com/relvacode/iso8601"
)

// SortByTimestamp returns a copy of samples in timestamp order. Samples
// sharing a timestamp keep their fetch order.
func SortByTimestamp(samples []models.Sample) []models.Sample {
	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b models.Sample) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

// FilterSince keeps samples at or after cutoff.
func FilterSince(samples []models.Sample, cutoff time.Time) []models.Sample {
	kept := make([]models.Sample, 0, len(samples))
	for _, s := range samples {
		if !s.Timestamp.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	return kept
}

// FilterBoat keeps samples from one boat. An empty id keeps everything.
func FilterBoat(samples []models.Sample, boatID string) []models.Sample {
	if boatID == "" {
		return slices.Clone(samples)
	}

	kept := make([]models.Sample, 0, len(samples))
	for _, s := range samples {
		if s.BoatID == boatID {
			kept = append(kept, s)
		}
	}
	return kept
}

// StartOfDay returns local midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ViewRange returns the estimates whose timestamps fall in [start, end].
// A zero bound leaves that side open.
func ViewRange(estimates []models.WaveEstimate, start, end time.Time) []models.WaveEstimate {
	view := make([]models.WaveEstimate, 0, len(estimates))
	for _, e := range estimates {
		if !start.IsZero() && e.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && e.Timestamp.After(end) {
			continue
		}
		view = append(view, e)
	}
	return view
}

var clockLayouts = []string{"15:04:05.999999999", "15:04:05", "15:04"}

// ParseViewBound parses a view boundary. A bare clock time such as
// "17:39:16.427042" is placed on day; anything else must be a full ISO-8601
// instant. Zoneless values use day's location. An empty value is the zero
// time.
func ParseViewBound(value string, day time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}

	for _, layout := range clockLayouts {
		clock, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		y, m, d := day.Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), day.Location()), nil
	}

	t, err := parseTimestamp(value, day.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid view bound %q: %w", value, err)
	}
	return t, nil
}

// parseTimestamp accepts ISO-8601 with either 'T' or a single space between
// date and time, as the boat_data table emits both.
func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > 10 && value[10] == ' ' {
		value = value[:10] + "T" + value[11:]
	}
	return iso8601.ParseInLocation([]byte(value), loc)
}

package waveheight

import (
	"testing"
	"time"

	"wave-stack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByTimestamp(t *testing.T) {
	at := func(sec int) time.Time { return testStart.Add(time.Duration(sec) * time.Second) }
	samples := []models.Sample{
		{Timestamp: at(3), BoatID: "a"},
		{Timestamp: at(1), BoatID: "b"},
		{Timestamp: at(3), BoatID: "c"},
		{Timestamp: at(2), BoatID: "d"},
	}

	sorted := SortByTimestamp(samples)

	var ids []string
	for _, s := range sorted {
		ids = append(ids, s.BoatID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids, "ties keep fetch order")
	assert.Equal(t, "a", samples[0].BoatID, "input must not be reordered")
}

func TestFilterSince(t *testing.T) {
	samples := makeSamples(10, gravity)
	cutoff := samples[4].Timestamp

	kept := FilterSince(samples, cutoff)
	require.Len(t, kept, 6)
	assert.Equal(t, cutoff, kept[0].Timestamp, "cutoff is inclusive")
}

func TestFilterBoat(t *testing.T) {
	samples := []models.Sample{{BoatID: "1"}, {BoatID: "2"}, {BoatID: "1"}}

	assert.Len(t, FilterBoat(samples, "1"), 2)
	assert.Len(t, FilterBoat(samples, "3"), 0)
	assert.Len(t, FilterBoat(samples, ""), 3)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("PDT", -7*60*60)
	now := time.Date(2025, 5, 1, 23, 59, 59, 999, loc)

	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, loc), StartOfDay(now))
}

func TestViewRange(t *testing.T) {
	estimates, err := Estimate(makeSamples(20, gravity), 0.1, 10)
	require.NoError(t, err)

	start := estimates[5].Timestamp
	end := estimates[9].Timestamp

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{name: "Closed range", start: start, end: end, expected: 5},
		{name: "Open start", end: end, expected: 10},
		{name: "Open end", start: start, expected: 15},
		{name: "Unbounded", expected: 20},
		{name: "Empty range", start: end.Add(time.Hour), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ViewRange(estimates, tt.start, tt.end), tt.expected)
		})
	}
}

func TestParseViewBound(t *testing.T) {
	loc := time.FixedZone("PDT", -7*60*60)
	day := time.Date(2025, 5, 1, 9, 0, 0, 0, loc)

	tests := []struct {
		name      string
		value     string
		expected  time.Time
		expectErr bool
	}{
		{name: "Empty", value: "", expected: time.Time{}},
		{name: "Clock with micros", value: "17:39:16.427042", expected: time.Date(2025, 5, 1, 17, 39, 16, 427042000, loc)},
		{name: "Clock seconds", value: "17:50:00", expected: time.Date(2025, 5, 1, 17, 50, 0, 0, loc)},
		{name: "Clock minutes", value: "08:15", expected: time.Date(2025, 5, 1, 8, 15, 0, 0, loc)},
		{name: "Full instant", value: "2025-04-30T12:00:00Z", expected: time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC)},
		{name: "Zoneless instant", value: "2025-04-30 12:00:00", expected: time.Date(2025, 4, 30, 12, 0, 0, 0, loc)},
		{name: "Garbage", value: "noon", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseViewBound(tt.value, day)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

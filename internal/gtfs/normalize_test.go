package gtfs

import (
	"testing"

	"github.com/passbi/transitcore/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name     string
		lat1     float64
		lon1     float64
		lat2     float64
		lon2     float64
		expected float64
		delta    float64
	}{
		{
			name:     "Zero distance",
			lat1:     14.7167,
			lon1:     -17.4677,
			lat2:     14.7167,
			lon2:     -17.4677,
			expected: 0,
			delta:    1,
		},
		{
			name:     "Approximately 1km",
			lat1:     14.7167,
			lon1:     -17.4677,
			lat2:     14.7257,
			lon2:     -17.4677,
			expected: 1000,
			delta:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := haversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, result, tt.delta)
		})
	}
}

func TestValidateAndCleanStops(t *testing.T) {
	tests := []struct {
		name     string
		stops    []models.GTFSStop
		expected int
	}{
		{
			name: "All valid stops",
			stops: []models.GTFSStop{
				{StopID: "1", Lat: 14.7, Lon: -17.4},
				{StopID: "2", Lat: 14.8, Lon: -17.5},
			},
			expected: 2,
		},
		{
			name: "Filter invalid latitude",
			stops: []models.GTFSStop{
				{StopID: "1", Lat: 14.7, Lon: -17.4},
				{StopID: "2", Lat: 95.0, Lon: -17.5},
			},
			expected: 1,
		},
		{
			name: "Filter null island",
			stops: []models.GTFSStop{
				{StopID: "1", Lat: 14.7, Lon: -17.4},
				{StopID: "2", Lat: 0.0, Lon: 0.0},
			},
			expected: 1,
		},
		{
			name: "Filter invalid longitude",
			stops: []models.GTFSStop{
				{StopID: "1", Lat: 14.7, Lon: -17.4},
				{StopID: "2", Lat: 14.8, Lon: 200.0},
			},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndCleanStops(tt.stops)
			assert.Equal(t, tt.expected, len(result))
		})
	}
}

func TestDeduplicateStopsMergesNearbyStops(t *testing.T) {
	stops := []models.GTFSStop{
		{StopID: "1", StopName: "Main St & 1st", Lat: 14.7167, Lon: -17.4677},
		{StopID: "2", StopName: "Main St & 1st (opposite side)", Lat: 14.71675, Lon: -17.46772},
		{StopID: "3", StopName: "Far away stop", Lat: 14.9, Lon: -17.6},
	}

	deduped, mapping := DeduplicateStops(stops, 50)

	assert.Len(t, deduped, 2)
	assert.Equal(t, "1", mapping["1"])
	assert.Equal(t, "1", mapping["2"])
	assert.Equal(t, "3", mapping["3"])
}

func TestDeduplicateStopsHandlesEmptyInput(t *testing.T) {
	deduped, mapping := DeduplicateStops(nil, 50)
	assert.Empty(t, deduped)
	assert.Empty(t, mapping)
}

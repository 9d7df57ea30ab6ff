package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCatalogue feeds base requests straight from the external JSON
// shape into the catalogue; a non-roundtrip bus must come out with its
// reverse pass appended (§4.E), exactly as the pinned wire format
// requires, with no separate expansion step in this package.
func TestBuildCatalogueExpandsNonRoundtripBus(t *testing.T) {
	requests := []baseRequest{
		{Type: "Stop", Name: "A", Latitude: 1, Longitude: 1},
		{Type: "Stop", Name: "B", Latitude: 2, Longitude: 2},
		{Type: "Bus", Name: "1", Stops: []string{"A", "B"}, IsRoundtrip: false},
	}

	cat, err := buildCatalogue(requests)
	require.NoError(t, err)

	bus, ok := cat.Bus("1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "A"}, bus.Route)
}

func TestBuildCatalogueLeavesRoundtripBusUnexpanded(t *testing.T) {
	requests := []baseRequest{
		{Type: "Stop", Name: "A", Latitude: 1, Longitude: 1},
		{Type: "Stop", Name: "B", Latitude: 2, Longitude: 2},
		{Type: "Stop", Name: "C", Latitude: 3, Longitude: 3},
		{Type: "Bus", Name: "1", Stops: []string{"A", "B", "C"}, IsRoundtrip: true},
	}

	cat, err := buildCatalogue(requests)
	require.NoError(t, err)

	bus, ok := cat.Bus("1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, bus.Route)
}

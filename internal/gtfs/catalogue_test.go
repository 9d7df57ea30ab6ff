package gtfs

import (
	"testing"

	"github.com/passbi/transitcore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalogueFromFeed(t *testing.T) {
	feed := &GTFSFeed{
		Stops: []models.GTFSStop{
			{StopID: "s1", StopName: "Alpha", Lat: 14.70, Lon: -17.40},
			{StopID: "s2", StopName: "Beta", Lat: 14.71, Lon: -17.41},
			{StopID: "s3", StopName: "Gamma", Lat: 14.72, Lon: -17.42},
		},
		Routes: []models.GTFSRoute{
			{RouteID: "r1", ShortName: "1"},
		},
		Trips: []models.GTFSTrip{
			{TripID: "t1", RouteID: "r1", Direction: 0},
		},
		StopTimes: []models.GTFSStopTime{
			{TripID: "t1", StopID: "s1", StopSequence: 0},
			{TripID: "t1", StopID: "s2", StopSequence: 1},
			{TripID: "t1", StopID: "s3", StopSequence: 2},
		},
	}

	cat, err := BuildCatalogueFromFeed(feed, 0)
	require.NoError(t, err)

	assert.Len(t, cat.Stops(), 3)
	bus, ok := cat.Bus("1")
	require.True(t, ok)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, bus.Route)
	assert.Greater(t, cat.Distance("Alpha", "Beta"), 0)
}

func TestBuildCatalogueFromFeedSkipsSingleStopTrips(t *testing.T) {
	feed := &GTFSFeed{
		Stops: []models.GTFSStop{
			{StopID: "s1", StopName: "Alpha", Lat: 14.70, Lon: -17.40},
		},
		Routes: []models.GTFSRoute{{RouteID: "r1", ShortName: "1"}},
		Trips:  []models.GTFSTrip{{TripID: "t1", RouteID: "r1"}},
		StopTimes: []models.GTFSStopTime{
			{TripID: "t1", StopID: "s1", StopSequence: 0},
		},
	}

	cat, err := BuildCatalogueFromFeed(feed, 0)
	require.NoError(t, err)
	assert.Empty(t, cat.Buses())
}

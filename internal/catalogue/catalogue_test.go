package catalogue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStopAndLookup(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 1.0, 2.0))

	got, ok := c.Stop("A")
	require.True(t, ok)
	assert.Equal(t, Stop{Name: "A", Lat: 1.0, Lon: 2.0}, got)
}

func TestAddStopRejectsDuplicate(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))

	err := c.AddStop("A", 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateStop)
}

func TestStopsPreservesInsertionOrder(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("B", 0, 0))
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("C", 0, 0))

	names := make([]string, 0, 3)
	for _, s := range c.Stops() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names)
}

func TestAddBusRejectsUnknownStop(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))

	err := c.AddBus("1", []string{"A", "B"}, false)
	assert.ErrorIs(t, err, ErrUnknownStop)
}

func TestAddBusRejectsTooFewStops(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))

	err := c.AddBus("1", []string{"A"}, true)
	assert.ErrorIs(t, err, ErrTooFewStops)
}

func TestAddBusRejectsDuplicateName(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("B", 0, 0))
	require.NoError(t, c.AddBus("1", []string{"A", "B"}, false))

	err := c.AddBus("1", []string{"A", "B"}, false)
	assert.ErrorIs(t, err, ErrDuplicateBus)
}

func TestDistanceFallsBackToReverseThenZero(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("B", 0, 0))
	require.NoError(t, c.AddStop("C", 0, 0))
	require.NoError(t, c.SetDistance("A", "B", 100))

	assert.Equal(t, 100, c.Distance("A", "B"))
	assert.Equal(t, 100, c.Distance("B", "A"), "falls back to reverse")
	assert.Equal(t, 0, c.Distance("A", "C"), "falls back to zero")
}

func TestSetDistanceRejectsNegative(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("B", 0, 0))

	err := c.SetDistance("A", "B", -1)
	assert.ErrorIs(t, err, ErrNegativeDistance)
}

func TestSetDistanceRejectsUnknownStop(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))

	err := c.SetDistance("A", "B", 10)
	assert.True(t, errors.Is(err, ErrUnknownStop))
}

func TestBusesAtStop(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("B", 0, 0))
	require.NoError(t, c.AddStop("C", 0, 0))
	require.NoError(t, c.AddBus("1", []string{"A", "B"}, false))
	require.NoError(t, c.AddBus("2", []string{"B", "C"}, false))

	assert.Equal(t, []string{"1"}, c.BusesAtStop("A"))
	assert.Equal(t, []string{"1", "2"}, c.BusesAtStop("B"))
	assert.Equal(t, []string{"2"}, c.BusesAtStop("C"))
	assert.Nil(t, c.BusesAtStop("ZZZ"))
}

// AddBus must expand a non-roundtrip route itself (§4.E): a caller
// passing the raw, un-expanded stop sequence — exactly what arrives at
// the external JSON boundary — gets back a stored route with the
// reverse pass appended.
func TestAddBusExpandsNonRoundtripRoute(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("B", 0, 0))

	require.NoError(t, c.AddBus("1", []string{"A", "B"}, false))

	bus, ok := c.Bus("1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "A"}, bus.Route)
}

// A three-stop non-roundtrip bus expands to the full forward-then-
// reverse traversal, not just the single final hop.
func TestAddBusExpandsLongerNonRoundtripRoute(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("B", 0, 0))
	require.NoError(t, c.AddStop("C", 0, 0))

	require.NoError(t, c.AddBus("1", []string{"A", "B", "C"}, false))

	bus, ok := c.Bus("1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C", "B", "A"}, bus.Route)
}

// AddBus stores a roundtrip route as given, with no reverse pass.
func TestAddBusRoundtripRouteIsNotExpanded(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("B", 0, 0))
	require.NoError(t, c.AddStop("C", 0, 0))

	require.NoError(t, c.AddBus("1", []string{"A", "B", "C"}, true))

	bus, ok := c.Bus("1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, bus.Route)
}

// AddExpandedBus stores its route verbatim even when isRoundtrip is
// false, for callers (GTFS trips, storage reload) that already hold a
// fully expanded traversal and must not have it expanded again.
func TestAddExpandedBusStoresRouteVerbatim(t *testing.T) {
	c := New()
	require.NoError(t, c.AddStop("A", 0, 0))
	require.NoError(t, c.AddStop("B", 0, 0))

	require.NoError(t, c.AddExpandedBus("1", []string{"A", "B"}, false))

	bus, ok := c.Bus("1")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, bus.Route)
}

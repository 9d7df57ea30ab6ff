package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalogue is a minimal, literal Catalogue for exercising the
// router without pulling in the real catalogue package.
type fakeCatalogue struct {
	stops     []Stop
	buses     []Bus
	distances map[[2]string]int
}

func newFakeCatalogue() *fakeCatalogue {
	return &fakeCatalogue{distances: make(map[[2]string]int)}
}

func (f *fakeCatalogue) addStop(name string) *fakeCatalogue {
	f.stops = append(f.stops, Stop{Name: name})
	return f
}

func (f *fakeCatalogue) addBus(name string, route []string, roundtrip bool) *fakeCatalogue {
	f.buses = append(f.buses, Bus{Name: name, Route: route, IsRoundtrip: roundtrip})
	return f
}

func (f *fakeCatalogue) setDistance(from, to string, meters int) *fakeCatalogue {
	f.distances[[2]string{from, to}] = meters
	return f
}

func (f *fakeCatalogue) Stops() []Stop { return f.stops }
func (f *fakeCatalogue) Buses() []Bus  { return f.buses }

func (f *fakeCatalogue) Distance(from, to string) int {
	if d, ok := f.distances[[2]string{from, to}]; ok {
		return d
	}
	if d, ok := f.distances[[2]string{to, from}]; ok {
		return d
	}
	return 0
}

func settings6and40() Settings {
	return Settings{BusWaitTimeMinutes: 6, BusVelocityKMH: 40}
}

// Scenario 1 — single bus, two stops.
func TestScenario1SingleBusTwoStops(t *testing.T) {
	cat := newFakeCatalogue().
		addStop("A").addStop("B").
		addBus("1", []string{"A", "B", "A"}, false).
		setDistance("A", "B", 6000).
		setDistance("B", "A", 6000)

	r := Construct(settings6and40(), cat)

	route, ok := r.GetRoute("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 15, route.TotalTime, 1e-9)
	require.Len(t, route.Items, 2)
	assert.Equal(t, Item{Kind: ItemWait, StopName: "A", Time: 6}, route.Items[0])
	assert.Equal(t, Item{Kind: ItemRide, BusName: "1", SpanCount: 1, Time: 9}, route.Items[1])
}

// Scenario 2 — same-stop query.
func TestScenario2SameStopQuery(t *testing.T) {
	cat := newFakeCatalogue().addStop("A").addStop("B").
		addBus("1", []string{"A", "B", "A"}, false).
		setDistance("A", "B", 6000)

	r := Construct(settings6and40(), cat)

	route, ok := r.GetRoute("A", "A")
	require.True(t, ok)
	assert.Equal(t, 0.0, route.TotalTime)
	assert.Empty(t, route.Items)
}

// Scenario 3 — transfer.
func TestScenario3Transfer(t *testing.T) {
	cat := newFakeCatalogue().
		addStop("A").addStop("B").addStop("C").
		addBus("1", []string{"A", "B", "A"}, false).
		addBus("2", []string{"B", "C", "B"}, false).
		setDistance("A", "B", 6000).
		setDistance("B", "A", 6000).
		setDistance("B", "C", 6000).
		setDistance("C", "B", 6000)

	r := Construct(settings6and40(), cat)

	route, ok := r.GetRoute("A", "C")
	require.True(t, ok)
	assert.InDelta(t, 30, route.TotalTime, 1e-9)
	require.Len(t, route.Items, 4)
	assert.Equal(t, Item{Kind: ItemWait, StopName: "A", Time: 6}, route.Items[0])
	assert.Equal(t, Item{Kind: ItemRide, BusName: "1", SpanCount: 1, Time: 9}, route.Items[1])
	assert.Equal(t, Item{Kind: ItemWait, StopName: "B", Time: 6}, route.Items[2])
	assert.Equal(t, Item{Kind: ItemRide, BusName: "2", SpanCount: 1, Time: 9}, route.Items[3])
}

// Scenario 4 — no-transfer shortcut: a single bus serving A,B,C directly
// beats the two-bus transfer because it avoids the second wait edge.
func TestScenario4NoTransferShortcut(t *testing.T) {
	cat := newFakeCatalogue().
		addStop("A").addStop("B").addStop("C").
		addBus("1", []string{"A", "B", "C", "B", "A"}, false).
		setDistance("A", "B", 6000).
		setDistance("B", "A", 6000).
		setDistance("B", "C", 6000).
		setDistance("C", "B", 6000)

	r := Construct(settings6and40(), cat)

	route, ok := r.GetRoute("A", "C")
	require.True(t, ok)
	assert.InDelta(t, 24, route.TotalTime, 1e-9)
	require.Len(t, route.Items, 2)
	assert.Equal(t, Item{Kind: ItemWait, StopName: "A", Time: 6}, route.Items[0])
	assert.Equal(t, Item{Kind: ItemRide, BusName: "1", SpanCount: 2, Time: 18}, route.Items[1])
}

// Scenario 5 — unreachable.
func TestScenario5Unreachable(t *testing.T) {
	cat := newFakeCatalogue().addStop("A").addStop("B")

	r := Construct(settings6and40(), cat)

	_, ok := r.GetRoute("A", "B")
	assert.False(t, ok)
}

// Scenario 6 — unknown stop.
func TestScenario6UnknownStop(t *testing.T) {
	cat := newFakeCatalogue().addStop("A")

	r := Construct(settings6and40(), cat)

	_, ok := r.GetRoute("A", "ZZZ")
	assert.False(t, ok)
}

// Property 1: exactly one wait edge per stop, with the prescribed
// endpoints and weight.
func TestPropertyOneWaitEdgePerStop(t *testing.T) {
	cat := newFakeCatalogue().addStop("A").addStop("B").addStop("C")
	g, _, _, _ := build(settings6and40(), cat)

	for k := 0; k < 3; k++ {
		found := 0
		for _, id := range g.IncidentEdges(platformVertex(k)) {
			e := g.GetEdge(id)
			if e.To == boardedVertex(k) {
				found++
				assert.Equal(t, 6.0, e.Weight)
			}
		}
		assert.Equal(t, 1, found, "stop %d", k)
	}
}

// Property 2: a bus with expanded route length L contributes exactly
// L*(L-1)/2 ride edges.
func TestPropertyRideEdgeCountMatchesCombinatorics(t *testing.T) {
	cat := newFakeCatalogue().
		addStop("A").addStop("B").addStop("C").addStop("D").
		addBus("1", []string{"A", "B", "C", "D"}, true).
		setDistance("A", "B", 100).
		setDistance("B", "C", 100).
		setDistance("C", "D", 100)

	g, _, _, meta := build(settings6and40(), cat)

	rideEdges := 0
	for id := 0; id < g.EdgeCount(); id++ {
		if _, ok := meta[id]; ok {
			rideEdges++
		}
	}
	const l = 4
	assert.Equal(t, l*(l-1)/2, rideEdges)
}

// Property 6 restated at the graph level: same-stop queries always
// report zero time and no items for every known stop, not just A.
func TestSameStopAlwaysZero(t *testing.T) {
	cat := newFakeCatalogue().addStop("A").addStop("B").addStop("C").
		addBus("1", []string{"A", "B", "C"}, true)
	r := Construct(settings6and40(), cat)

	for _, name := range []string{"A", "B", "C"} {
		route, ok := r.GetRoute(name, name)
		require.True(t, ok)
		assert.Equal(t, 0.0, route.TotalTime)
		assert.Empty(t, route.Items)
	}
}

// Property 7, asymmetric half: asymmetric distances produce different
// weights in each direction.
func TestAsymmetricDistancesProduceDifferentWeights(t *testing.T) {
	cat := newFakeCatalogue().
		addStop("A").addStop("B").
		addBus("1", []string{"A", "B", "A"}, false).
		setDistance("A", "B", 6000).
		setDistance("B", "A", 3000)

	r := Construct(settings6and40(), cat)

	ab, ok := r.GetRoute("A", "B")
	require.True(t, ok)
	ba, ok := r.GetRoute("B", "A")
	require.True(t, ok)

	assert.NotEqual(t, ab.TotalTime, ba.TotalTime)
}

// Property 8: an unused bus never changes an existing route.
func TestUnusedBusDoesNotAffectExistingRoutes(t *testing.T) {
	base := newFakeCatalogue().
		addStop("A").addStop("B").
		addBus("1", []string{"A", "B", "A"}, false).
		setDistance("A", "B", 6000).
		setDistance("B", "A", 6000)
	baseline := Construct(settings6and40(), base)
	baselineRoute, ok := baseline.GetRoute("A", "B")
	require.True(t, ok)

	withExtra := newFakeCatalogue().
		addStop("A").addStop("B").addStop("Z").
		addBus("1", []string{"A", "B", "A"}, false).
		addBus("unused", []string{"Z"}, true).
		setDistance("A", "B", 6000).
		setDistance("B", "A", 6000)
	withExtraRouter := Construct(settings6and40(), withExtra)
	withExtraRoute, ok := withExtraRouter.GetRoute("A", "B")
	require.True(t, ok)

	assert.Equal(t, baselineRoute, withExtraRoute)
}

func TestEmptyCatalogueYieldsZeroVertexGraphAndAbsentQueries(t *testing.T) {
	cat := newFakeCatalogue()
	r := Construct(settings6and40(), cat)

	assert.Equal(t, 0, r.graph.VertexCount())
	_, ok := r.GetRoute("anything", "else")
	assert.False(t, ok)
}

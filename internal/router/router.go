// Package router implements the journey router: construction of the
// "wait then ride" graph from a transit catalogue and execution of an
// all-pairs shortest-path search that reconstructs typed itineraries.
//
// A Router is single-threaded to build and immutable once built: after
// Construct returns, GetRoute may be called concurrently from any
// number of goroutines without synchronization.
package router

import (
	"github.com/passbi/transitcore/internal/graphcore"
)

// Stop is the router's view of one catalogue stop: just enough to
// assign it a vertex pair. Coordinates are carried through for parity
// with the catalogue but are not used by the router itself.
type Stop struct {
	Name string
	Lat  float64
	Lon  float64
}

// Bus is the router's view of one catalogue bus: its name and its
// already-expanded route (forward-then-reverse for non-roundtrip
// lines). IsRoundtrip is carried through only because the catalogue
// view contract mentions it; the router never reads it.
type Bus struct {
	Name        string
	Route       []string
	IsRoundtrip bool
}

// Catalogue is the read-only view the router consumes at construction
// time. It must enumerate stops and buses in a stable order across
// calls on the same instance.
type Catalogue interface {
	Stops() []Stop
	Buses() []Bus
	Distance(fromName, toName string) int
}

// Settings are the routing parameters pinned at construction.
type Settings struct {
	// BusWaitTimeMinutes is the fixed boarding delay charged once per
	// stop, regardless of which bus is boarded there.
	BusWaitTimeMinutes float64
	// BusVelocityKMH must be strictly positive; it is the divisor that
	// converts accumulated road distance into ride time.
	BusVelocityKMH float64
}

// edgeMeta is the side-band table recording {bus name, span count} for
// every ride edge, indexed by edge id. Wait edges have no entry.
type edgeMeta struct {
	busName   string
	spanCount int
}

// Router holds the built graph, the per-source shortest-path tables
// computed once at construction, and the lookup tables needed to turn
// an edge sequence back into named itinerary items.
type Router struct {
	graph       *graphcore.Graph
	settings    Settings
	stopIndex   map[string]int // stop name -> enumeration index k
	stopAtIndex []string       // enumeration index k -> stop name
	rideMeta    map[int]edgeMeta
	allPairs    []shortestPaths // allPairs[source vertex] = shortestPaths from that vertex
}

// Construct builds the graph from cat per the vertex-assignment, wait-
// edge, and ride-edge rules, then precomputes shortest paths from every
// vertex. It is total under valid inputs: an empty catalogue yields a
// zero-vertex graph and every subsequent query returns absent.
func Construct(settings Settings, cat Catalogue) *Router {
	g, stopIndex, stopAtIndex, meta := build(settings, cat)

	n := g.VertexCount()
	allPairs := make([]shortestPaths, n)
	for v := 0; v < n; v++ {
		allPairs[v] = runDijkstra(g, v)
	}

	return &Router{
		graph:       g,
		settings:    settings,
		stopIndex:   stopIndex,
		stopAtIndex: stopAtIndex,
		rideMeta:    meta,
		allPairs:    allPairs,
	}
}

// GetRoute returns the fastest itinerary from fromName to toName, or
// false if either name is unknown to this router or the target is
// unreachable from the source. When fromName == toName (and known) it
// returns the zero-length, zero-time itinerary.
func (r *Router) GetRoute(fromName, toName string) (RouteInfo, bool) {
	fromIdx, ok := r.stopIndex[fromName]
	if !ok {
		return RouteInfo{}, false
	}
	toIdx, ok := r.stopIndex[toName]
	if !ok {
		return RouteInfo{}, false
	}

	source := platformVertex(fromIdx)
	target := platformVertex(toIdx)

	sp := r.allPairs[source]
	if sp.dist[target] == unreached {
		return RouteInfo{}, false
	}

	edgeIDs := sp.edgesTo(r.graph, target)
	return r.assemble(edgeIDs), true
}

// platformVertex returns the platform-entry vertex 2k for stop index k.
func platformVertex(k int) int { return 2 * k }

// boardedVertex returns the boarded vertex 2k+1 for stop index k.
func boardedVertex(k int) int { return 2*k + 1 }

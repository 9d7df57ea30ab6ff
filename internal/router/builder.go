package router

import "github.com/passbi/transitcore/internal/graphcore"

// build performs the transit-to-graph reduction: one platform-entry and
// one boarded vertex per stop, one wait edge per stop, and ride edges
// over every ordered pair of stops along each bus's expanded route.
//
// Stops are enumerated in cat.Stops() order; that order becomes the
// stable k used throughout (vertex 2k / 2k+1). Buses are enumerated in
// cat.Buses() order, which only affects edge ids, not reachability.
func build(settings Settings, cat Catalogue) (*graphcore.Graph, map[string]int, []string, map[int]edgeMeta) {
	stops := cat.Stops()

	stopIndex := make(map[string]int, len(stops))
	stopAtIndex := make([]string, len(stops))
	for k, s := range stops {
		stopIndex[s.Name] = k
		stopAtIndex[k] = s.Name
	}

	g := graphcore.New(2 * len(stops))
	meta := make(map[int]edgeMeta)

	for k := range stops {
		g.AddEdge(platformVertex(k), boardedVertex(k), settings.BusWaitTimeMinutes)
	}

	metersPerMinute := settings.BusVelocityKMH * 1000 / 60

	for _, bus := range cat.Buses() {
		route := bus.Route
		for i := 0; i < len(route); i++ {
			var distance int
			for j := i + 1; j < len(route); j++ {
				distance += cat.Distance(route[j-1], route[j])

				fromVertex := boardedVertex(stopIndex[route[i]])
				toVertex := platformVertex(stopIndex[route[j]])
				weight := float64(distance) / metersPerMinute

				edgeID := g.AddEdge(fromVertex, toVertex, weight)
				meta[edgeID] = edgeMeta{busName: bus.Name, spanCount: j - i}
			}
		}
	}

	return g, stopIndex, stopAtIndex, meta
}

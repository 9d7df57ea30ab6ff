package router

// ItemKind distinguishes the two variants of the itinerary item sum
// type. Go has no tagged unions, so this is modeled as a flat struct
// with a discriminant field instead of an interface, keeping JSON
// marshaling at the boundary a single exhaustive switch.
type ItemKind int

const (
	// ItemWait is emitted for a wait edge: platform-entry to boarded at
	// the same stop.
	ItemWait ItemKind = iota
	// ItemRide is emitted for a ride edge: boarded at one stop to
	// platform-entry at another, possibly spanning several hops.
	ItemRide
)

// Item is one leg of a RouteInfo. For ItemWait, StopName and Time are
// populated and BusName/SpanCount are zero. For ItemRide, BusName,
// SpanCount, and Time are populated and StopName is empty.
type Item struct {
	Kind      ItemKind
	StopName  string
	BusName   string
	SpanCount int
	Time      float64
}

// RouteInfo is the reconstructed itinerary: total time plus the ordered
// sequence of wait/ride items, in path order from source to target.
type RouteInfo struct {
	TotalTime float64
	Items     []Item
}

// assemble converts a reconstructed edge-id sequence into a typed
// itinerary. An edge is classified as a wait edge iff its `from`
// vertex is even and its `to` vertex is from+1; every other edge is a
// ride edge. A ride edge id missing from the metadata table is an
// invariant violation in the construction path and is fatal.
func (r *Router) assemble(edgeIDs []int) RouteInfo {
	items := make([]Item, 0, len(edgeIDs))
	var total float64

	for _, edgeID := range edgeIDs {
		e := r.graph.GetEdge(edgeID)
		total += e.Weight

		if e.From%2 == 0 && e.To == e.From+1 {
			items = append(items, Item{
				Kind:     ItemWait,
				StopName: r.stopAtIndex[e.From/2],
				Time:     e.Weight,
			})
			continue
		}

		m, ok := r.rideMeta[edgeID]
		if !ok {
			panic("router: ride edge missing bus metadata (invariant violation)")
		}
		items = append(items, Item{
			Kind:      ItemRide,
			BusName:   m.busName,
			SpanCount: m.spanCount,
			Time:      e.Weight,
		})
	}

	return RouteInfo{TotalTime: total, Items: items}
}

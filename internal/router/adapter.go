package router

import "github.com/passbi/transitcore/internal/catalogue"

// catalogueAdapter adapts a *catalogue.Catalogue to the router's own
// Catalogue interface, keeping the router package decoupled from the
// concrete catalogue representation (it only ever needs the read-only
// view pinned by the construct contract).
type catalogueAdapter struct {
	cat *catalogue.Catalogue
}

// FromCatalogue wraps a catalogue.Catalogue as a router.Catalogue.
func FromCatalogue(cat *catalogue.Catalogue) Catalogue {
	return catalogueAdapter{cat: cat}
}

func (a catalogueAdapter) Stops() []Stop {
	src := a.cat.Stops()
	out := make([]Stop, len(src))
	for i, s := range src {
		out[i] = Stop{Name: s.Name, Lat: s.Lat, Lon: s.Lon}
	}
	return out
}

func (a catalogueAdapter) Buses() []Bus {
	src := a.cat.Buses()
	out := make([]Bus, len(src))
	for i, b := range src {
		out[i] = Bus{Name: b.Name, Route: b.Route, IsRoundtrip: b.IsRoundtrip}
	}
	return out
}

func (a catalogueAdapter) Distance(fromName, toName string) int {
	return a.cat.Distance(fromName, toName)
}

package gtfs

import (
	"fmt"
	"sort"

	"github.com/passbi/transitcore/internal/catalogue"
	"github.com/passbi/transitcore/internal/models"
)

// BuildCatalogueFromFeed turns a parsed GTFS feed into a catalogue: one
// stop per (deduplicated) GTFS stop, one bus per GTFS trip with at least
// two resolvable stops (trips that repeat a stop sequence are not
// merged; see uniqueBusName), and road distances derived from
// consecutive stop coordinates via the haversine formula, since GTFS
// carries no road-distance field of its own.
//
// dedupThresholdMeters is forwarded to DeduplicateStops; pass 0 to
// disable deduplication.
func BuildCatalogueFromFeed(feed *GTFSFeed, dedupThresholdMeters float64) (*catalogue.Catalogue, error) {
	cleanStops := ValidateAndCleanStops(feed.Stops)
	dedupedStops, stopMapping := DeduplicateStops(cleanStops, dedupThresholdMeters)

	cat := catalogue.New()
	stopNameByID := make(map[string]string, len(dedupedStops))
	for _, s := range dedupedStops {
		name := s.StopName
		if name == "" {
			name = s.StopID
		}
		if err := cat.AddStop(name, s.Lat, s.Lon); err != nil {
			return nil, fmt.Errorf("gtfs: adding stop %q: %w", name, err)
		}
		stopNameByID[s.StopID] = name
	}

	resolveStopName := func(gtfsStopID string) (string, bool) {
		kept := stopMapping[gtfsStopID]
		if kept == "" {
			kept = gtfsStopID
		}
		name, ok := stopNameByID[kept]
		return name, ok
	}

	tripStopTimes := make(map[string][]models.GTFSStopTime)
	for _, st := range feed.StopTimes {
		tripStopTimes[st.TripID] = append(tripStopTimes[st.TripID], st)
	}
	for tripID := range tripStopTimes {
		times := tripStopTimes[tripID]
		sort.Slice(times, func(i, j int) bool { return times[i].StopSequence < times[j].StopSequence })
		tripStopTimes[tripID] = times
	}

	routeNames := make(map[string]string, len(feed.Routes))
	for _, r := range feed.Routes {
		name := r.ShortName
		if name == "" {
			name = r.LongName
		}
		if name == "" {
			name = r.RouteID
		}
		routeNames[r.RouteID] = name
	}

	for _, trip := range feed.Trips {
		times := tripStopTimes[trip.TripID]
		if len(times) < 2 {
			continue
		}

		route := make([]string, 0, len(times))
		routeStopIDs := make([]string, 0, len(times))
		for _, st := range times {
			name, ok := resolveStopName(st.StopID)
			if !ok {
				continue
			}
			route = append(route, name)
			routeStopIDs = append(routeStopIDs, st.StopID)
		}
		if len(route) < 2 {
			continue
		}

		busName := routeNames[trip.RouteID]
		if busName == "" {
			busName = trip.RouteID
		}
		// GTFS trips of the same route already represent a single
		// expanded traversal (outbound or return direction is a
		// separate trip), so the route is used verbatim via
		// AddExpandedBus: it is not re-expanded the way a
		// hand-authored non-roundtrip bus is.
		if err := cat.AddExpandedBus(uniqueBusName(cat, busName, trip.TripID), route, trip.Direction == 0); err != nil {
			return nil, fmt.Errorf("gtfs: adding bus for trip %q: %w", trip.TripID, err)
		}

		for i := 1; i < len(route); i++ {
			lat1, lon1 := coordOf(dedupedStops, routeStopIDs[i-1], stopMapping)
			lat2, lon2 := coordOf(dedupedStops, routeStopIDs[i], stopMapping)
			meters := int(haversineDistance(lat1, lon1, lat2, lon2))
			if err := cat.SetDistance(route[i-1], route[i], meters); err != nil {
				return nil, fmt.Errorf("gtfs: setting distance %s->%s: %w", route[i-1], route[i], err)
			}
		}
	}

	return cat, nil
}

// uniqueBusName disambiguates same-route trips by suffixing the trip
// id whenever the bare route name is already taken by an earlier trip.
func uniqueBusName(cat *catalogue.Catalogue, routeName, tripID string) string {
	if _, exists := cat.Bus(routeName); !exists {
		return routeName
	}
	return routeName + "/" + tripID
}

func coordOf(stops []models.GTFSStop, gtfsStopID string, mapping map[string]string) (float64, float64) {
	kept := mapping[gtfsStopID]
	if kept == "" {
		kept = gtfsStopID
	}
	for _, s := range stops {
		if s.StopID == kept {
			return s.Lat, s.Lon
		}
	}
	return 0, 0
}

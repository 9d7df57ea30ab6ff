// Command transitcli is the direct Go analogue of the original
// interactive console tool: it reads a single JSON document from
// stdin describing base requests (stops, buses) and stat requests
// (bus/stop/route/map queries), builds an in-memory catalogue and
// router, and writes a JSON array of stat responses to stdout. No
// Postgres, no Redis — everything lives for the process lifetime,
// grounded on original_source/transport-catalogue/main.cpp's
// base-request-count-then-stat-request-count stdin protocol and
// json_reader.h's BaseStopRequest/BaseBusRequest/StatRequest shapes.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/passbi/transitcore/internal/catalogue"
	"github.com/passbi/transitcore/internal/mapsvg"
	"github.com/passbi/transitcore/internal/router"
)

// baseRequest is a tagged union over the two ways to populate the
// catalogue, matching json_reader.h's BaseStopRequest/BaseBusRequest
// folded into one JSON shape discriminated by Type.
type baseRequest struct {
	Type          string         `json:"type"`
	Name          string         `json:"name"`
	Latitude      float64        `json:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty"`
	RoadDistances map[string]int `json:"road_distances,omitempty"`
	Stops         []string       `json:"stops,omitempty"`
	IsRoundtrip   bool           `json:"is_roundtrip,omitempty"`
}

// statRequest is a tagged union over the four query classes the
// routing core answers, matching json_reader.h's StatRequest widened
// with the from/to pair route search needs.
type statRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type routingSettings struct {
	BusWaitTime int `json:"bus_wait_time"`
	BusVelocity int `json:"bus_velocity"`
}

type inputDocument struct {
	BaseRequests    []baseRequest         `json:"base_requests"`
	RoutingSettings routingSettings       `json:"routing_settings"`
	StatRequests    []statRequest         `json:"stat_requests"`
	RenderSettings  mapsvg.RenderSettings `json:"render_settings"`
}

// statResponse is the output envelope: request_id plus whichever
// fields the request type produced, or error_message on failure.
// Fields are flattened rather than nested, matching the original
// stat_reader's per-type JSON object construction.
type statResponse struct {
	RequestID       int            `json:"request_id"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Name            string         `json:"name,omitempty"`
	StopCount       int            `json:"stop_count,omitempty"`
	UniqueStopCount int            `json:"unique_stop_count,omitempty"`
	RouteLengthM    int            `json:"route_length_meters,omitempty"`
	Curvature       float64        `json:"curvature,omitempty"`
	Buses           *[]string      `json:"buses,omitempty"`
	TotalTime       *float64       `json:"total_time,omitempty"`
	Items           *[]interface{} `json:"items,omitempty"`
	Map             string         `json:"map,omitempty"`
}

func main() {
	var doc inputDocument
	if err := json.NewDecoder(os.Stdin).Decode(&doc); err != nil {
		log.Fatalf("transitcli: decoding input: %v", err)
	}

	cat, err := buildCatalogue(doc.BaseRequests)
	if err != nil {
		log.Fatalf("transitcli: %v", err)
	}

	settings := router.Settings{
		BusWaitTimeMinutes: float64(doc.RoutingSettings.BusWaitTime),
		BusVelocityKMH:     float64(doc.RoutingSettings.BusVelocity),
	}
	r := router.Construct(settings, router.FromCatalogue(cat))

	responses := make([]statResponse, len(doc.StatRequests))
	for i, req := range doc.StatRequests {
		responses[i] = answer(cat, r, doc.RenderSettings, req)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(responses); err != nil {
		log.Fatalf("transitcli: encoding output: %v", err)
	}
}

// buildCatalogue applies every base request to a fresh catalogue.
// Stops are added first so that road distances and bus routes can
// reference them; road distances are applied next, then buses.
func buildCatalogue(requests []baseRequest) (*catalogue.Catalogue, error) {
	cat := catalogue.New()

	for _, req := range requests {
		if req.Type != "Stop" {
			continue
		}
		if err := cat.AddStop(req.Name, req.Latitude, req.Longitude); err != nil {
			return nil, fmt.Errorf("adding stop %q: %w", req.Name, err)
		}
	}

	for _, req := range requests {
		if req.Type != "Stop" {
			continue
		}
		for toName, meters := range req.RoadDistances {
			if err := cat.SetDistance(req.Name, toName, meters); err != nil {
				return nil, fmt.Errorf("setting distance %s->%s: %w", req.Name, toName, err)
			}
		}
	}

	for _, req := range requests {
		if req.Type != "Bus" {
			continue
		}
		if err := cat.AddBus(req.Name, req.Stops, req.IsRoundtrip); err != nil {
			return nil, fmt.Errorf("adding bus %q: %w", req.Name, err)
		}
	}

	return cat, nil
}

// answer dispatches a single stat request to the matching query and
// flattens its result into the pinned response shape.
func answer(cat *catalogue.Catalogue, r *router.Router, render mapsvg.RenderSettings, req statRequest) statResponse {
	switch req.Type {
	case "Bus":
		return busStat(cat, req)
	case "Stop":
		return stopStat(cat, req)
	case "Route":
		return routeStat(r, req)
	case "Map":
		return mapStat(cat, render, req)
	default:
		return statResponse{RequestID: req.ID, ErrorMessage: fmt.Sprintf("unknown request type %q", req.Type)}
	}
}

func busStat(cat *catalogue.Catalogue, req statRequest) statResponse {
	bus, ok := cat.Bus(req.Name)
	if !ok {
		return statResponse{RequestID: req.ID, ErrorMessage: "not found"}
	}

	stopCount := len(bus.Route)
	unique := make(map[string]struct{}, stopCount)
	for _, s := range bus.Route {
		unique[s] = struct{}{}
	}

	routeLength := 0
	for i := 1; i < len(bus.Route); i++ {
		routeLength += cat.Distance(bus.Route[i-1], bus.Route[i])
	}

	geoLength := geographicLength(cat, bus.Route)
	curvature := 1.0
	if geoLength > 0 {
		curvature = float64(routeLength) / geoLength
	}

	return statResponse{
		RequestID:       req.ID,
		Name:            bus.Name,
		StopCount:       stopCount,
		UniqueStopCount: len(unique),
		RouteLengthM:    routeLength,
		Curvature:       curvature,
	}
}

func stopStat(cat *catalogue.Catalogue, req statRequest) statResponse {
	if _, ok := cat.Stop(req.Name); !ok {
		return statResponse{RequestID: req.ID, ErrorMessage: "not found"}
	}
	buses := cat.BusesAtStop(req.Name)
	if buses == nil {
		buses = []string{}
	}
	return statResponse{RequestID: req.ID, Name: req.Name, Buses: &buses}
}

func routeStat(r *router.Router, req statRequest) statResponse {
	info, ok := r.GetRoute(req.From, req.To)
	if !ok {
		return statResponse{RequestID: req.ID, ErrorMessage: "not found"}
	}

	items := make([]interface{}, len(info.Items))
	for i, it := range info.Items {
		switch it.Kind {
		case router.ItemWait:
			items[i] = map[string]interface{}{"type": "Wait", "stop_name": it.StopName, "time": it.Time}
		case router.ItemRide:
			items[i] = map[string]interface{}{"type": "Bus", "bus": it.BusName, "span_count": it.SpanCount, "time": it.Time}
		}
	}

	total := info.TotalTime
	return statResponse{RequestID: req.ID, TotalTime: &total, Items: &items}
}

func mapStat(cat *catalogue.Catalogue, render mapsvg.RenderSettings, req statRequest) statResponse {
	stops := cat.Stops()
	svgStops := make([]mapsvg.Stop, len(stops))
	for i, s := range stops {
		svgStops[i] = mapsvg.Stop{Name: s.Name, Lat: s.Lat, Lon: s.Lon}
	}

	buses := cat.Buses()
	svgBuses := make([]mapsvg.Bus, len(buses))
	for i, b := range buses {
		svgBuses[i] = mapsvg.Bus{Name: b.Name, Route: b.Route}
	}

	var buf bytes.Buffer
	mapsvg.Render(&buf, svgStops, svgBuses, render)

	return statResponse{RequestID: req.ID, Map: buf.String()}
}

func geographicLength(cat *catalogue.Catalogue, route []string) float64 {
	var total float64
	for i := 1; i < len(route); i++ {
		from, ok1 := cat.Stop(route[i-1])
		to, ok2 := cat.Stop(route[i])
		if !ok1 || !ok2 {
			continue
		}
		total += haversineMeters(from.Lat, from.Lon, to.Lat, to.Lon)
	}
	return total
}

// haversineMeters is the great-circle distance between two
// coordinates; the same formula internal/gtfs uses to derive road
// distances from GTFS stop coordinates.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Package httpapi is the Fiber-based JSON/SVG boundary over the
// routing core: bus info, stop info, the network map, and route
// search, plus a health check. Grounded on the teacher's
// internal/api/handlers.go request/response conventions (fiber.Map
// error bodies, a dedicated Health handler) but reduced to the four
// query classes the routing core actually answers.
package httpapi

import (
	"bytes"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/transitcore/internal/cache"
	"github.com/passbi/transitcore/internal/catalogue"
	"github.com/passbi/transitcore/internal/mapsvg"
	"github.com/passbi/transitcore/internal/models"
	"github.com/passbi/transitcore/internal/router"
	"github.com/passbi/transitcore/internal/storage"
)

// Deps bundles the read-only state every handler needs: the built
// catalogue and router (immutable after startup) plus the render
// settings used by Map. There is deliberately no mutable state here —
// mirrors the router's own construction-then-read contract.
type Deps struct {
	Catalogue *catalogue.Catalogue
	Router    *router.Router
	Render    mapsvg.RenderSettings
	CacheTTL  time.Duration
}

// BusInfo handles GET /buses/:name, answering the route-statistics
// query: stop count, unique stop count, total route length, and
// curvature (route length over straight-line geographic length).
func (d *Deps) BusInfo(c *fiber.Ctx) error {
	name := c.Params("name")

	bus, ok := d.Catalogue.Bus(name)
	if !ok {
		return c.JSON(models.BusInfoResponse{ErrorMessage: "not found"})
	}

	stopCount := len(bus.Route)
	unique := make(map[string]struct{}, stopCount)
	for _, s := range bus.Route {
		unique[s] = struct{}{}
	}

	routeLength := 0
	for i := 1; i < len(bus.Route); i++ {
		routeLength += d.Catalogue.Distance(bus.Route[i-1], bus.Route[i])
	}

	geoLength := geographicLength(d.Catalogue, bus.Route)
	curvature := 1.0
	if geoLength > 0 {
		curvature = float64(routeLength) / geoLength
	}

	return c.JSON(models.BusInfoResponse{
		Name:            bus.Name,
		StopCount:       stopCount,
		UniqueStopCount: len(unique),
		RouteLengthM:    routeLength,
		Curvature:       curvature,
	})
}

// geographicLength sums the great-circle distance between consecutive
// stops along route, the denominator of a bus's curvature.
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
// coordinates, grounded on the same formula internal/gtfs uses to
// derive road distances from GTFS stop coordinates.
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

// StopInfo handles GET /stops/:name, answering the stop-membership
// query: every bus whose expanded route visits this stop.
func (d *Deps) StopInfo(c *fiber.Ctx) error {
	name := c.Params("name")

	if _, ok := d.Catalogue.Stop(name); !ok {
		return c.JSON(models.StopInfoResponse{ErrorMessage: "not found"})
	}

	buses := d.Catalogue.BusesAtStop(name)
	if buses == nil {
		buses = []string{}
	}

	return c.JSON(models.StopInfoResponse{
		Name:  name,
		Buses: buses,
	})
}

// Map handles GET /map, rendering every bus line and stop in the
// catalogue to a single SVG document.
func (d *Deps) Map(c *fiber.Ctx) error {
	stops := d.Catalogue.Stops()
	svgStops := make([]mapsvg.Stop, len(stops))
	for i, s := range stops {
		svgStops[i] = mapsvg.Stop{Name: s.Name, Lat: s.Lat, Lon: s.Lon}
	}

	buses := d.Catalogue.Buses()
	svgBuses := make([]mapsvg.Bus, len(buses))
	for i, b := range buses {
		svgBuses[i] = mapsvg.Bus{Name: b.Name, Route: b.Route}
	}

	var buf bytes.Buffer
	mapsvg.Render(&buf, svgStops, svgBuses, d.Render)

	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.Send(buf.Bytes())
}

// RouteSearch handles GET /routes?from=X&to=Y, the journey-planning
// query. It consults the Redis route cache (keyed on the stop-name
// pair, per internal/cache.RouteKey) before falling back to the
// router: unlike the teacher's expensive per-request A* search, the
// router here is a read against an already-built, immutable
// structure, so no distributed lock is needed on a cache miss.
func (d *Deps) RouteSearch(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing required query parameters: from, to",
		})
	}

	ctx := c.Context()
	key := cache.RouteKey(from, to)

	if cached, err := cache.GetRoute(ctx, key); err == nil && cached != nil {
		c.Locals("cache_hit", true)
		return c.JSON(toRouteResponse(*cached, true))
	}

	info, ok := d.Router.GetRoute(from, to)
	if !ok {
		return c.JSON(models.RouteResponse{ErrorMessage: "not found"})
	}

	if err := cache.SetRoute(ctx, key, &info, d.cacheTTL()); err != nil {
		// Caching is best-effort; a failed write never fails the request.
		_ = err
	}

	return c.JSON(toRouteResponse(info, false))
}

func (d *Deps) cacheTTL() time.Duration {
	if d.CacheTTL > 0 {
		return d.CacheTTL
	}
	return 10 * time.Minute
}

// toRouteResponse converts a router.RouteInfo into the pinned JSON
// shape, dispatching each item to its Wait or Bus variant.
func toRouteResponse(info router.RouteInfo, _ bool) models.RouteResponse {
	items := make([]interface{}, len(info.Items))
	for i, it := range info.Items {
		switch it.Kind {
		case router.ItemWait:
			items[i] = models.WaitItem{Type: "Wait", StopName: it.StopName, Time: it.Time}
		case router.ItemRide:
			items[i] = models.RideItem{Type: "Bus", Bus: it.BusName, SpanCount: it.SpanCount, Time: it.Time}
		}
	}
	total := info.TotalTime
	return models.RouteResponse{TotalTime: &total, Items: items}
}

// Health reports whether the storage pool and cache client are both
// reachable. The router and catalogue are in-process and immutable
// once built, so they have nothing to check here.
func Health(c *fiber.Ctx) error {
	ctx := c.Context()

	dbStatus := "ok"
	if err := storage.HealthCheck(ctx); err != nil {
		dbStatus = err.Error()
	}

	cacheStatus := "ok"
	if err := cache.HealthCheck(ctx); err != nil {
		cacheStatus = err.Error()
	}

	status := "healthy"
	httpStatus := fiber.StatusOK
	if dbStatus != "ok" || cacheStatus != "ok" {
		status = "unhealthy"
		httpStatus = fiber.StatusServiceUnavailable
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": dbStatus,
			"cache":    cacheStatus,
		},
	})
}

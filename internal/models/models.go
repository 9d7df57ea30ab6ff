// Package models holds the plain data types shared across the ambient
// layers (GTFS ingestion, storage, HTTP boundary) that surround the
// routing core. None of these types are used by internal/router or
// internal/graphcore; the core only ever sees the narrow Stop/Bus/
// Catalogue views it declares itself.
package models

import (
	"encoding/json"
	"time"
)

// StopInfo names a stop inside a journey step.
type StopInfo struct {
	Name string `json:"name"`
}

// WaitItem is the pinned JSON shape of a router.Item with Kind ==
// ItemWait.
type WaitItem struct {
	Type     string  `json:"type"` // always "Wait"
	StopName string  `json:"stop_name"`
	Time     float64 `json:"time"`
}

// RideItem is the pinned JSON shape of a router.Item with Kind ==
// ItemRide.
type RideItem struct {
	Type      string  `json:"type"` // always "Bus"
	Bus       string  `json:"bus"`
	SpanCount int     `json:"span_count"`
	Time      float64 `json:"time"`
}

// RouteResponse is the JSON response for a route-search query: either
// TotalTime/Items are populated, or ErrorMessage is, never both.
type RouteResponse struct {
	TotalTime    *float64      `json:"total_time,omitempty"`
	Items        []interface{} `json:"items,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// MarshalJSON writes error_message alone for a failed search and
// otherwise total_time and items, with items always an array (empty
// for a same-stop route).
func (r RouteResponse) MarshalJSON() ([]byte, error) {
	if r.ErrorMessage != "" {
		return json.Marshal(map[string]string{"error_message": r.ErrorMessage})
	}
	items := r.Items
	if items == nil {
		items = []interface{}{}
	}
	return json.Marshal(map[string]interface{}{"total_time": r.TotalTime, "items": items})
}

// BusInfoResponse answers "what does this bus line look like".
type BusInfoResponse struct {
	Name            string  `json:"name,omitempty"`
	StopCount       int     `json:"stop_count,omitempty"`
	UniqueStopCount int     `json:"unique_stop_count,omitempty"`
	RouteLengthM    int     `json:"route_length_meters,omitempty"`
	Curvature       float64 `json:"curvature,omitempty"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// StopInfoResponse answers "which buses stop here".
type StopInfoResponse struct {
	Name         string   `json:"name,omitempty"`
	Buses        []string `json:"buses,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// MarshalJSON writes error_message alone for an unknown stop and
// otherwise name and buses, with buses always an array (empty for a
// stop no bus visits).
func (r StopInfoResponse) MarshalJSON() ([]byte, error) {
	if r.ErrorMessage != "" {
		return json.Marshal(map[string]string{"error_message": r.ErrorMessage})
	}
	buses := r.Buses
	if buses == nil {
		buses = []string{}
	}
	return json.Marshal(map[string]interface{}{"name": r.Name, "buses": buses})
}

// GTFS import structs - raw rows from a GTFS feed, kept close to the
// on-disk column names since they are mechanically parsed and never
// exposed outside the ingestion path.

// GTFSAgency represents an agency from agency.txt.
type GTFSAgency struct {
	AgencyID   string
	AgencyName string
	AgencyURL  string
	Timezone   string
}

// GTFSStop represents a stop from stops.txt.
type GTFSStop struct {
	StopID   string
	StopName string
	Lat      float64
	Lon      float64
}

// GTFSRoute represents a route from routes.txt.
type GTFSRoute struct {
	RouteID    string
	AgencyID   string
	ShortName  string
	LongName   string
	RouteType  int
	RouteColor string
}

// GTFSTrip represents a trip from trips.txt.
type GTFSTrip struct {
	RouteID   string
	ServiceID string
	TripID    string
	Headsign  string
	Direction int
}

// GTFSStopTime represents a stop time from stop_times.txt. Only
// StopSequence is used to order a trip's stops; the arrival/departure
// clock fields are carried through for completeness but the router
// never consults them (no per-trip timetables, per the non-goals).
type GTFSStopTime struct {
	TripID        string
	ArrivalTime   string
	DepartureTime string
	StopID        string
	StopSequence  int
}

// ImportLog records one GTFS import run against the storage layer.
type ImportLog struct {
	ID          int64
	AgencyID    string
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      string
	StopsCount  int
	BusesCount  int
	ErrorMsg    string
}

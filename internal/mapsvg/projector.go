package mapsvg

import "math"

const epsilon = 1e-6

// sphereProjector maps (lat, lon) pairs onto canvas (x, y) coordinates,
// scaling the bounding box of every coordinate it was built from to fit
// within width/height minus padding on each side.
//
// Grounded on original_source/transport-catalogue/map_renderer.h's
// SphereProjector: longitude maps to x, latitude maps to y (inverted,
// since SVG y grows downward while latitude grows northward), and the
// zoom coefficient is the smaller of the two axis scales so the whole
// bounding box fits without distortion.
type sphereProjector struct {
	padding   float64
	minLon    float64
	maxLat    float64
	zoomCoeff float64
}

func newSphereProjector(coords []coordinate, width, height, padding float64) sphereProjector {
	p := sphereProjector{padding: padding}
	if len(coords) == 0 {
		return p
	}

	minLon, maxLon := coords[0].lon, coords[0].lon
	minLat, maxLat := coords[0].lat, coords[0].lat
	for _, c := range coords[1:] {
		minLon = math.Min(minLon, c.lon)
		maxLon = math.Max(maxLon, c.lon)
		minLat = math.Min(minLat, c.lat)
		maxLat = math.Max(maxLat, c.lat)
	}
	p.minLon = minLon
	p.maxLat = maxLat

	var widthZoom, heightZoom float64
	haveWidthZoom := math.Abs(maxLon-minLon) >= epsilon
	if haveWidthZoom {
		widthZoom = (width - 2*padding) / (maxLon - minLon)
	}
	haveHeightZoom := math.Abs(maxLat-minLat) >= epsilon
	if haveHeightZoom {
		heightZoom = (height - 2*padding) / (maxLat - minLat)
	}

	switch {
	case haveWidthZoom && haveHeightZoom:
		p.zoomCoeff = math.Min(widthZoom, heightZoom)
	case haveWidthZoom:
		p.zoomCoeff = widthZoom
	case haveHeightZoom:
		p.zoomCoeff = heightZoom
	}

	return p
}

func (p sphereProjector) project(c coordinate) (x, y float64) {
	x = (c.lon-p.minLon)*p.zoomCoeff + p.padding
	y = (p.maxLat-c.lat)*p.zoomCoeff + p.padding
	return x, y
}

type coordinate struct {
	lat float64
	lon float64
}

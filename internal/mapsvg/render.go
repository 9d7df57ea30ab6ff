// Package mapsvg renders the full transit network — every bus line and
// every stop — to an SVG document. It is a pure function of the
// catalogue: it never consults the router.
//
// Drawing order mirrors original_source/transport-catalogue's
// MapRenderer: route polylines first, then bus name labels, then stop
// markers, then stop name labels, so labels always sit on top of the
// lines and markers they annotate.
package mapsvg

import (
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

// RenderSettings controls the canvas geometry and styling. Zero-value
// fields fall back to sane defaults in Render.
type RenderSettings struct {
	Width            int
	Height           int
	Padding          float64
	LineWidth        int
	StopRadius       int
	BusLabelFontSize int
	StopLabelFontSize int
	Palette          []string
	UnderlayerColor  string
	FontFamily       string
}

func (s RenderSettings) withDefaults() RenderSettings {
	if s.Width == 0 {
		s.Width = 1200
	}
	if s.Height == 0 {
		s.Height = 1200
	}
	if s.Padding == 0 {
		s.Padding = 50
	}
	if s.LineWidth == 0 {
		s.LineWidth = 14
	}
	if s.StopRadius == 0 {
		s.StopRadius = 5
	}
	if s.BusLabelFontSize == 0 {
		s.BusLabelFontSize = 20
	}
	if s.StopLabelFontSize == 0 {
		s.StopLabelFontSize = 18
	}
	if len(s.Palette) == 0 {
		s.Palette = []string{"green", "red", "blue", "brown", "purple"}
	}
	if s.UnderlayerColor == "" {
		s.UnderlayerColor = "white"
	}
	if s.FontFamily == "" {
		s.FontFamily = "Verdana"
	}
	return s
}

// Stop and Bus are the minimal view mapsvg needs from the catalogue;
// kept independent of the catalogue package so this renderer can be
// reused against any source of named, coordinated stops and ordered
// bus routes.
type Stop struct {
	Name string
	Lat  float64
	Lon  float64
}

type Bus struct {
	Name  string
	Route []string // stop names, in expanded order
}

// Render draws every bus route and every stop (in the given
// enumeration order) to w as a single SVG document.
func Render(w io.Writer, stops []Stop, buses []Bus, settings RenderSettings) {
	settings = settings.withDefaults()

	byName := make(map[string]Stop, len(stops))
	coords := make([]coordinate, len(stops))
	for i, s := range stops {
		byName[s.Name] = s
		coords[i] = coordinate{lat: s.Lat, lon: s.Lon}
	}
	proj := newSphereProjector(coords, float64(settings.Width), float64(settings.Height), settings.Padding)

	canvas := svg.New(w)
	canvas.Start(settings.Width, settings.Height)
	defer canvas.End()

	for i, bus := range buses {
		if len(bus.Route) < 2 {
			continue
		}
		color := settings.Palette[i%len(settings.Palette)]
		xs := make([]int, 0, len(bus.Route))
		ys := make([]int, 0, len(bus.Route))
		for _, stopName := range bus.Route {
			stop, ok := byName[stopName]
			if !ok {
				continue
			}
			x, y := proj.project(coordinate{lat: stop.Lat, lon: stop.Lon})
			xs = append(xs, int(x))
			ys = append(ys, int(y))
		}
		if len(xs) >= 2 {
			canvas.Polyline(xs, ys, svgStyle("fill:none;stroke:"+color, settings.LineWidth))
		}
	}

	for i, bus := range buses {
		if len(bus.Route) == 0 {
			continue
		}
		color := settings.Palette[i%len(settings.Palette)]
		renderBusLabel(canvas, proj, byName, bus.Route[0], bus.Name, color, settings)
		last := bus.Route[len(bus.Route)-1]
		if last != bus.Route[0] {
			renderBusLabel(canvas, proj, byName, last, bus.Name, color, settings)
		}
	}

	for _, stop := range stops {
		x, y := proj.project(coordinate{lat: stop.Lat, lon: stop.Lon})
		canvas.Circle(int(x), int(y), settings.StopRadius, "fill:white")
	}

	for _, stop := range stops {
		x, y := proj.project(coordinate{lat: stop.Lat, lon: stop.Lon})
		canvas.Text(int(x), int(y)+settings.StopLabelFontSize, stop.Name,
			fontStyle(settings.FontFamily, settings.StopLabelFontSize, "black"))
	}
}

func renderBusLabel(canvas *svg.SVG, proj sphereProjector, byName map[string]Stop, stopName, busName, color string, settings RenderSettings) {
	stop, ok := byName[stopName]
	if !ok {
		return
	}
	x, y := proj.project(coordinate{lat: stop.Lat, lon: stop.Lon})
	canvas.Text(int(x), int(y)-settings.BusLabelFontSize, busName,
		fontStyle(settings.FontFamily, settings.BusLabelFontSize, color))
}

func svgStyle(base string, strokeWidth int) string {
	return base + ";stroke-width:" + strconv.Itoa(strokeWidth) + ";stroke-linecap:round;stroke-linejoin:round"
}

func fontStyle(family string, size int, fill string) string {
	return "font-family:" + family + ";font-size:" + strconv.Itoa(size) + "px;fill:" + fill
}

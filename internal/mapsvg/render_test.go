package mapsvg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProducesWellFormedSVGDocument(t *testing.T) {
	stops := []Stop{
		{Name: "A", Lat: 55.0, Lon: 37.0},
		{Name: "B", Lat: 55.1, Lon: 37.2},
	}
	buses := []Bus{
		{Name: "1", Route: []string{"A", "B", "A"}},
	}

	var buf bytes.Buffer
	Render(&buf, stops, buses, RenderSettings{})

	out := buf.String()
	assert.True(t, strings.Contains(out, "<svg"))
	assert.True(t, strings.Contains(out, "</svg>"))
	assert.True(t, strings.Contains(out, ">A<"))
	assert.True(t, strings.Contains(out, ">1<"))
}

func TestRenderHandlesEmptyCatalogue(t *testing.T) {
	var buf bytes.Buffer
	assert.NotPanics(t, func() {
		Render(&buf, nil, nil, RenderSettings{})
	})
	assert.True(t, strings.Contains(buf.String(), "<svg"))
}

func TestSphereProjectorSingleCoordinate(t *testing.T) {
	p := newSphereProjector([]coordinate{{lat: 1, lon: 1}}, 100, 100, 10)
	x, y := p.project(coordinate{lat: 1, lon: 1})
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 10.0, y)
}

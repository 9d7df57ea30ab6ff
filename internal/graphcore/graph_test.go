package graphcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmptyGraph(t *testing.T) {
	g := New(4)
	assert.Equal(t, 4, g.VertexCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.IncidentEdges(0))
}

func TestAddEdgeAssignsSequentialIDs(t *testing.T) {
	g := New(3)
	id0 := g.AddEdge(0, 1, 1.5)
	id1 := g.AddEdge(0, 2, 2.5)
	id2 := g.AddEdge(1, 2, 3.5)

	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)
	assert.Equal(t, 3, g.EdgeCount())
}

func TestAddEdgeAllowsMultiEdges(t *testing.T) {
	g := New(2)
	first := g.AddEdge(0, 1, 1)
	second := g.AddEdge(0, 1, 2)

	require.NotEqual(t, first, second)
	assert.ElementsMatch(t, []int{first, second}, g.IncidentEdges(0))
}

func TestGetEdgeReturnsStoredFields(t *testing.T) {
	g := New(2)
	id := g.AddEdge(0, 1, 4.2)

	e := g.GetEdge(id)
	assert.Equal(t, 0, e.From)
	assert.Equal(t, 1, e.To)
	assert.Equal(t, 4.2, e.Weight)
}

func TestIncidentEdgesPreservesInsertionOrder(t *testing.T) {
	g := New(2)
	a := g.AddEdge(0, 1, 1)
	b := g.AddEdge(0, 1, 2)
	c := g.AddEdge(0, 1, 3)

	assert.Equal(t, []int{a, b, c}, g.IncidentEdges(0))
}

func TestAddEdgeOutOfRangePanics(t *testing.T) {
	g := New(2)
	assert.Panics(t, func() { g.AddEdge(2, 0, 1) })
	assert.Panics(t, func() { g.AddEdge(0, -1, 1) })
}

func TestAddEdgeNegativeWeightPanics(t *testing.T) {
	g := New(2)
	assert.Panics(t, func() { g.AddEdge(0, 1, -1) })
}

func TestGetEdgeOutOfRangePanics(t *testing.T) {
	g := New(2)
	assert.Panics(t, func() { g.GetEdge(0) })
}

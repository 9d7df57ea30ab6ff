package router

import (
	"container/heap"
	"math"

	"github.com/passbi/transitcore/internal/graphcore"
)

// shortestPaths is the precomputed result of a single-source Dijkstra
// run: for every vertex reachable from the source, the total weight and
// the id of the last edge on the optimal path.
type shortestPaths struct {
	dist     []float64 // dist[v] = min weight from source to v, unreached (math.MaxFloat64) if not reached
	predEdge []int     // predEdge[v] = edge id of the last hop on the optimal path to v, -1 if none
}

const unreached = math.MaxFloat64

// runDijkstra computes single-source shortest paths from source over g.
// Weights must be non-negative; relaxation uses strict improvement
// (new < old) so the result is deterministic for a fixed insertion
// order, per the edge-relaxation tie-break rule.
func runDijkstra(g *graphcore.Graph, source int) shortestPaths {
	n := g.VertexCount()

	dist := make([]float64, n)
	predEdge := make([]int, n)
	visited := make([]bool, n)
	for v := 0; v < n; v++ {
		dist[v] = unreached
		predEdge[v] = -1
	}
	dist[source] = 0

	pq := &vertexHeap{{vertex: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(vertexItem)
		u := item.vertex
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, edgeID := range g.IncidentEdges(u) {
			e := g.GetEdge(edgeID)
			if visited[e.To] {
				continue
			}
			candidate := dist[u] + e.Weight
			if candidate < dist[e.To] {
				dist[e.To] = candidate
				predEdge[e.To] = edgeID
				heap.Push(pq, vertexItem{vertex: e.To, dist: candidate})
			}
		}
	}

	return shortestPaths{dist: dist, predEdge: predEdge}
}

// edgesTo reconstructs the edge-id sequence of the optimal path from the
// Dijkstra run's source to target by walking predEdge backwards.
func (sp shortestPaths) edgesTo(g *graphcore.Graph, target int) []int {
	if sp.dist[target] == unreached {
		return nil
	}

	var reversed []int
	v := target
	for sp.predEdge[v] != -1 {
		edgeID := sp.predEdge[v]
		reversed = append(reversed, edgeID)
		v = g.GetEdge(edgeID).From
	}

	// reverse in place to get source->target order
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	return reversed
}

// vertexItem is one entry in the Dijkstra frontier.
type vertexItem struct {
	vertex int
	dist   float64
}

// vertexHeap implements container/heap.Interface as a min-heap on dist,
// mirroring the lazy-decrease-key priority queue pattern: stale entries
// are simply skipped on pop via the visited set in runDijkstra.
type vertexHeap []vertexItem

func (h vertexHeap) Len() int            { return len(h) }
func (h vertexHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h vertexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *vertexHeap) Push(x interface{}) { *h = append(*h, x.(vertexItem)) }
func (h *vertexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

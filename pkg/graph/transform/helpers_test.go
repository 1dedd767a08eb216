package transform

import (
	"math"
	"testing"

	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
)

// lineDistance treats longitude as a kilometer coordinate on a straight line,
// which keeps expected weights exact in tests.
func lineDistance(a, b geo.Position) float64 { return math.Abs(a.Lon - b.Lon) }

// onLine builds nodes placed at the given line coordinates.
func onLine(t *testing.T, coords map[string]float64, order ...string) *graph.Graph {
	t.Helper()
	g := graph.New(nil)
	for _, id := range order {
		x, ok := coords[id]
		if !ok {
			t.Fatalf("no coordinate for %s", id)
		}
		if err := g.AddNode(graph.Node{ID: id, Pos: &geo.Position{Lat: 0, Lon: x}}); err != nil {
			t.Fatalf("AddNode(%s) error: %v", id, err)
		}
	}
	return g
}

func connect(t *testing.T, g *graph.Graph, pairs ...[2]string) {
	t.Helper()
	for _, p := range pairs {
		if _, err := g.AddEdge(graph.Edge{U: p[0], V: p[1]}); err != nil {
			t.Fatalf("AddEdge(%s, %s) error: %v", p[0], p[1], err)
		}
	}
}

// weighted builds a graph with pre-assigned weights and no positions.
func weighted(t *testing.T, nodes []string, edges ...weightedEdge) *graph.Graph {
	t.Helper()
	g := graph.New(nil)
	for _, id := range nodes {
		if err := g.AddNode(graph.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s) error: %v", id, err)
		}
	}
	for _, e := range edges {
		if _, err := g.AddEdge(graph.Edge{U: e.u, V: e.v, Weight: e.w, Weighted: true}); err != nil {
			t.Fatalf("AddEdge(%s, %s) error: %v", e.u, e.v, err)
		}
	}
	return g
}

type weightedEdge struct {
	u, v string
	w    float64
}

func weightOf(t *testing.T, g *graph.Graph, u, v string) float64 {
	t.Helper()
	e, ok := g.EdgeBetween(u, v)
	if !ok {
		t.Fatalf("edge %s-%s not found", u, v)
	}
	return e.Weight
}

func assertNoDegreeTwo(t *testing.T, g *graph.Graph, except ...string) {
	t.Helper()
	allowed := make(map[string]bool, len(except))
	for _, id := range except {
		allowed[id] = true
	}
	for _, id := range g.NodeIDs() {
		if g.Degree(id) == 2 && !allowed[id] {
			t.Errorf("node %s still has degree 2", id)
		}
	}
}

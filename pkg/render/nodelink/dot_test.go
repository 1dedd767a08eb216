package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
)

func roadGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(nil)
	for _, n := range []graph.Node{
		{ID: "1", Pos: &geo.Position{Lat: 56.3400, Lon: -2.8000}},
		{ID: "2", Pos: &geo.Position{Lat: 56.3500, Lon: -2.7800}},
		{ID: "3"},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := g.AddEdge(graph.Edge{U: "1", V: "2", Weight: 0.25, Weighted: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(graph.Edge{U: "2", V: "3"}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(roadGraph(t), Options{Weights: true, Width: 10})

	for _, want := range []string{
		"graph G {",
		`"1" [pos="0.0000,0.0000!"]`,
		`"1" -- "2" [label="0.250"]`,
		`"2" -- "3";`,
		`"3";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "->") {
		t.Error("road graphs are undirected; DOT must not contain arcs")
	}
}

func TestToDOT_WidthScaling(t *testing.T) {
	dot := ToDOT(roadGraph(t), Options{Width: 10})
	// The easternmost node sits at the full drawing width.
	if !strings.Contains(dot, `"2" [pos="10.0000,`) {
		t.Errorf("node 2 not placed at x=10:\n%s", dot)
	}
}

func TestToDOT_Labels(t *testing.T) {
	dot := ToDOT(roadGraph(t), Options{Labels: true})
	if !strings.Contains(dot, `xlabel="3"`) {
		t.Errorf("labels missing:\n%s", dot)
	}
	if strings.Contains(dot, "label=\"0.250\"") {
		t.Error("weights drawn without Weights option")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be returned unchanged")
	}
}

package transform

import (
	"math"
	"testing"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/graph"
)

func TestCheckWeights(t *testing.T) {
	tests := []struct {
		name        string
		edge        graph.Edge
		maxDistance float64
		wantErr     bool
	}{
		{"ok", graph.Edge{U: "A", V: "B", Weight: 3, Weighted: true}, 5, false},
		{"at max", graph.Edge{U: "A", V: "B", Weight: 5, Weighted: true}, 5, false},
		{"within tolerance", graph.Edge{U: "A", V: "B", Weight: 5 + Tolerance/2, Weighted: true}, 5, false},
		{"negative weight", graph.Edge{U: "A", V: "B", Weight: -2, Weighted: true}, 5, false},
		{"unweighted", graph.Edge{U: "A", V: "B"}, 5, true},
		{"above max", graph.Edge{U: "A", V: "B", Weight: 6, Weighted: true}, 5, true},
		{"nan weight", graph.Edge{U: "A", V: "B", Weight: math.NaN(), Weighted: true}, 5, true},
		{"nan max", graph.Edge{U: "A", V: "B", Weight: 1, Weighted: true}, math.NaN(), true},
		{"infinite max", graph.Edge{U: "A", V: "B", Weight: 1, Weighted: true}, math.Inf(1), true},
		{"negative max", graph.Edge{U: "A", V: "B", Weight: -1, Weighted: true}, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New(nil)
			for _, id := range []string{"A", "B"} {
				if err := g.AddNode(graph.Node{ID: id}); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := g.AddEdge(tt.edge); err != nil {
				t.Fatal(err)
			}

			err := CheckWeights(g, tt.maxDistance)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckWeights() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.IsConsistency(err) {
					t.Errorf("error code = %s, want CONSISTENCY", errors.GetCode(err))
				}
				if got := errors.GetStage(err); got != errors.StageCollapse {
					t.Errorf("stage = %q, want %q", got, errors.StageCollapse)
				}
			}
		})
	}
}

func TestSimplify_WeightErrorStopsBeforeCollapse(t *testing.T) {
	g := graph.New(nil)
	if err := g.AddNode(graph.Node{ID: "A"}); err != nil {
		t.Fatal(err)
	}

	res, err := Simplify(g, WeightOptions{Distance: lineDistance}, CollapseOptions{})
	if !errors.IsInput(err) {
		t.Fatalf("Simplify() error = %v, want INVALID_INPUT", err)
	}
	if got := errors.GetStage(err); got != errors.StageWeight {
		t.Errorf("stage = %q, want %q", got, errors.StageWeight)
	}
	if res != (Result{}) {
		t.Errorf("Result = %+v, want zero", res)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestSimplify_UnknownRoot(t *testing.T) {
	g := onLine(t, map[string]float64{"A": 0, "B": 1}, "A", "B")
	connect(t, g, [2]string{"A", "B"})

	_, err := Simplify(g, WeightOptions{Root: "Z", Distance: lineDistance}, CollapseOptions{})
	if !errors.IsInput(err) {
		t.Fatalf("Simplify() error = %v, want INVALID_INPUT", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("graph modified: EdgeCount() = %d", g.EdgeCount())
	}
}

package transform

import "github.com/matzehuels/roadnet/pkg/graph"

// Result summarizes a Simplify run.
type Result struct {
	MaxDistance float64
	Collapse    CollapseStats
}

// Simplify runs AssignWeights followed by CollapseDegreeTwo on g, threading
// the max_distance from the first stage into the second unchanged.
func Simplify(g graph.Container, wopts WeightOptions, copts CollapseOptions) (Result, error) {
	maxDistance, err := AssignWeights(g, wopts)
	if err != nil {
		return Result{}, err
	}
	stats, err := CollapseDegreeTwo(g, maxDistance, copts)
	if err != nil {
		return Result{MaxDistance: maxDistance}, err
	}
	return Result{MaxDistance: maxDistance, Collapse: stats}, nil
}

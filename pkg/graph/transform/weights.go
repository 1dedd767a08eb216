package transform

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
)

// MetaMaxDistance is the graph metadata key under which AssignWeights
// records the shift constant. CollapseDegreeTwo never changes it.
const MetaMaxDistance = "max_distance"

// ComponentRule selects which connected component AssignWeights keeps.
type ComponentRule int

const (
	// ComponentLargest keeps the component with the most nodes. Ties go to
	// the component whose earliest node was inserted first.
	ComponentLargest ComponentRule = iota
	// ComponentFirst keeps the component containing the first inserted node.
	ComponentFirst
)

var componentRuleNames = map[ComponentRule]string{
	ComponentLargest: "largest",
	ComponentFirst:   "first",
}

func (r ComponentRule) String() string {
	if s, ok := componentRuleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ComponentRule(%d)", int(r))
}

// ParseComponentRule converts "largest" or "first" to a ComponentRule.
// The empty string selects ComponentLargest.
func ParseComponentRule(s string) (ComponentRule, error) {
	if s == "" {
		return ComponentLargest, nil
	}
	for r, name := range componentRuleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown component rule %q (want largest or first)", s)
}

// WeightOptions configures AssignWeights.
type WeightOptions struct {
	// Component is the selection rule used when Root is empty.
	Component ComponentRule
	// Root, if set, keeps the component containing this node instead.
	Root string
	// Distance overrides the distance function. Defaults to geo.Distance.
	Distance geo.DistanceFunc
	// Workers > 1 computes edge distances concurrently.
	Workers int
}

// AssignWeights restricts g to a single connected component and gives every
// edge an inverted-distance weight. It returns max_distance, the largest raw
// geodesic distance across the kept edges.
//
// The weight of edge (u, v) is max_distance - distance(u, v): physically
// closer nodes get larger weights, all weights are non-negative and the
// longest edge gets weight 0. Weights are assigned in two passes because
// the shift constant is only known once every edge has been measured.
//
// g is modified in place: nodes outside the selected component are removed
// and max_distance is recorded in g.Meta()[MetaMaxDistance].
//
// AssignWeights fails with an INVALID_INPUT error if the graph has no nodes,
// if any node lacks a valid position, if Root names an unknown node, or if
// the selected component has no edges.
func AssignWeights(g graph.Container, opts WeightOptions) (float64, error) {
	if g.NodeCount() == 0 {
		return 0, errors.Input(errors.StageWeight, "graph has no nodes")
	}
	for _, n := range g.Nodes() {
		if !n.HasPosition() {
			return 0, errors.Input(errors.StageWeight, "node %q has no position", n.ID)
		}
		if !n.Pos.Valid() {
			return 0, errors.Input(errors.StageWeight, "node %q has invalid position %v", n.ID, *n.Pos)
		}
	}

	keep, err := SelectComponent(g, opts.Component, opts.Root)
	if err != nil {
		return 0, err
	}
	g.Retain(keep)

	edges := g.Edges()
	if len(edges) == 0 {
		return 0, errors.Input(errors.StageWeight, "selected component has no edges")
	}

	dist := opts.Distance
	if dist == nil {
		dist = geo.Distance
	}

	// Pass 1: negated distances and their global maximum magnitude.
	closeness, err := measure(g, edges, dist, opts.Workers)
	if err != nil {
		return 0, err
	}
	maxDistance := 0.0
	for _, c := range closeness {
		if math.Abs(c) > maxDistance {
			maxDistance = math.Abs(c)
		}
	}

	// Pass 2: shift by the now-known maximum.
	for i, e := range edges {
		if err := g.SetWeight(e.ID, closeness[i]+maxDistance); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInternal, err, "set weight").InStage(errors.StageWeight)
		}
	}

	g.Meta()[MetaMaxDistance] = maxDistance
	return maxDistance, nil
}

// SelectComponent returns the node IDs of the component AssignWeights keeps.
// If root is non-empty it takes precedence over rule.
func SelectComponent(g graph.Container, rule ComponentRule, root string) ([]string, error) {
	comps := g.Components()
	if len(comps) == 0 {
		return nil, errors.Input(errors.StageWeight, "graph has no nodes")
	}

	if root != "" {
		if !g.HasNode(root) {
			return nil, errors.Input(errors.StageWeight, "root node %q not found", root)
		}
		for _, c := range comps {
			for _, id := range c {
				if id == root {
					return c, nil
				}
			}
		}
	}

	switch rule {
	case ComponentFirst:
		return comps[0], nil
	case ComponentLargest:
		best := comps[0]
		for _, c := range comps[1:] {
			if len(c) > len(best) {
				best = c
			}
		}
		return best, nil
	default:
		return nil, errors.Input(errors.StageWeight, "unknown component rule %v", rule)
	}
}

// measure returns the negated distance of every edge, index-aligned with
// edges. With workers > 1 the edges are split into contiguous chunks; each
// goroutine writes only its own slots, so no synchronization is needed
// beyond the final Wait.
func measure(g graph.Container, edges []graph.Edge, dist geo.DistanceFunc, workers int) ([]float64, error) {
	out := make([]float64, len(edges))

	run := func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			u, _ := g.Node(edges[i].U)
			v, _ := g.Node(edges[i].V)
			d := dist(*u.Pos, *v.Pos)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return errors.Input(errors.StageWeight, "distance between %q and %q is not finite", u.ID, v.ID)
			}
			out[i] = -d
		}
		return nil
	}

	if workers <= 1 || len(edges) < 2*workers {
		if err := run(0, len(edges)); err != nil {
			return nil, err
		}
		return out, nil
	}

	var eg errgroup.Group
	chunk := (len(edges) + workers - 1) / workers
	for lo := 0; lo < len(edges); lo += chunk {
		hi := min(lo+chunk, len(edges))
		eg.Go(func() error { return run(lo, hi) })
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

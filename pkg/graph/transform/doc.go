// Package transform turns a raw positional road graph into a simplified,
// distance-weighted connectivity graph.
//
// # Overview
//
// Two transforms run in strict sequence on the same in-memory graph:
//
//  1. [AssignWeights] keeps one connected component and weights every edge
//     by inverted geodesic distance, returning max_distance.
//  2. [CollapseDegreeTwo] removes every degree-2 node, joining its two
//     neighbors with one composite edge.
//
// [Simplify] chains both. Each transform modifies its graph in place, as the
// rest of the graph tooling does.
//
// # Inverted-Distance Weights
//
// For every edge (u, v) the raw distance d(u, v) is measured with the
// Haversine formula (see package geo). The weight is
//
//	weight(u, v) = max_distance - d(u, v)
//
// where max_distance is the largest d over the kept component. Closer node
// pairs therefore get larger weights, every weight is in [0, max_distance]
// and the longest edge weighs exactly 0. The shift is applied in a second
// pass because max_distance is unknown until the last edge is measured.
//
// # Component Selection
//
// Road extracts are often disconnected (clipped ways, islands, private
// roads). Only one component is kept:
//
//   - [ComponentLargest] (default): most nodes, ties to the earliest inserted
//   - [ComponentFirst]: the component of the first inserted node
//   - WeightOptions.Root: the component containing a given node
//
// # Degree-2 Collapse
//
// A node with exactly two edges (n, a) and (n, b) carries no topological
// information. Removing it yields an edge (a, b) with weight
//
//	weight(n,a) + weight(n,b) - max_distance
//
// so a chain p → n1 → ... → nk → q of original edges w1..wk+1 collapses to
// one edge of weight sum(wi) - k*max_distance. Composite edges keep the
// "higher is closer" convention and may go negative for long chains.
//
// # Usage
//
//	maxDistance, err := transform.AssignWeights(g, transform.WeightOptions{})
//	if err != nil {
//	    return err
//	}
//	stats, err := transform.CollapseDegreeTwo(g, maxDistance, transform.CollapseOptions{})
package transform

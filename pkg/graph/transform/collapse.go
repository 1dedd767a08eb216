package transform

import (
	"fmt"
	"math"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/graph"
)

// Tolerance is the slack, in kilometers, allowed when checking that an edge
// weight does not exceed max_distance.
const Tolerance = 1e-9

// ParallelPolicy decides what happens when a collapse produces an edge
// between two nodes that are already connected.
type ParallelPolicy int

const (
	// ParallelOverwrite replaces the existing edge weight with the composite one.
	ParallelOverwrite ParallelPolicy = iota
	// ParallelKeepMin keeps the smaller of the existing and composite weights.
	ParallelKeepMin
)

var parallelPolicyNames = map[ParallelPolicy]string{
	ParallelOverwrite: "overwrite",
	ParallelKeepMin:   "keep-min",
}

func (p ParallelPolicy) String() string {
	if s, ok := parallelPolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("ParallelPolicy(%d)", int(p))
}

// ParseParallelPolicy converts "overwrite" or "keep-min" to a ParallelPolicy.
// The empty string selects ParallelOverwrite.
func ParseParallelPolicy(s string) (ParallelPolicy, error) {
	if s == "" {
		return ParallelOverwrite, nil
	}
	for p, name := range parallelPolicyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown parallel edge policy %q (want overwrite or keep-min)", s)
}

// CollapseOptions configures CollapseDegreeTwo.
type CollapseOptions struct {
	Parallel ParallelPolicy
}

// CollapseStats reports what CollapseDegreeTwo did.
type CollapseStats struct {
	Passes         int // Full scans over the node snapshot, including the final idle one
	Collapsed      int // Nodes removed
	MergedParallel int // Collapses whose composite edge landed on an existing edge
	SkippedLoops   int // Surviving degree-2 nodes whose both edges lead to the same neighbor
}

// CollapseDegreeTwo removes every node with exactly two incident edges and
// joins its two neighbors with a single composite edge.
//
// For a node n with edges (n, a) and (n, b) the composite weight is
//
//	(weight(n,a) - maxDistance) + (weight(n,b) - maxDistance) + maxDistance
//
// which undoes the stage-one shift on both edges, adds the two negated
// distances and shifts once. Along a chain of k removed nodes the final
// weight is therefore sum(w_i) - k*maxDistance. Composite weights may be
// negative when the chain is longer than maxDistance.
//
// Each pass walks a snapshot of the node IDs in insertion order; nodes that
// are gone or no longer of degree two when reached are skipped. Passes
// repeat until one removes nothing. Policies:
//
//   - The two incident edges are taken in edge insertion order, and the
//     composite edge is oriented from the first neighbor to the second.
//   - If a and b already share an edge, opts.Parallel decides the weight.
//   - A node whose two edges both lead to the same neighbor is never
//     collapsed, because that would create a self-loop. It survives with
//     degree two and is counted in SkippedLoops.
//
// maxDistance is never modified. CollapseDegreeTwo fails with a CONSISTENCY
// error if maxDistance is negative or not finite, if any edge is unweighted,
// or if any edge weight exceeds maxDistance (which would imply a negative
// distance). The graph is checked before any mutation, so a failure leaves
// it untouched.
func CollapseDegreeTwo(g graph.Container, maxDistance float64, opts CollapseOptions) (CollapseStats, error) {
	var stats CollapseStats
	if err := CheckWeights(g, maxDistance); err != nil {
		return stats, err
	}

	skipped := make(map[string]struct{})
	for {
		stats.Passes++
		removed := 0

		for _, id := range g.NodeIDs() {
			if !g.HasNode(id) || g.Degree(id) != 2 {
				continue
			}
			inc := g.IncidentEdges(id)
			a, b := inc[0].Other(id), inc[1].Other(id)
			if a == b {
				skipped[id] = struct{}{}
				continue
			}

			weight := compositeWeight(inc[0].Weight, inc[1].Weight, maxDistance)
			if existing, ok := g.EdgeBetween(a, b); ok {
				stats.MergedParallel++
				if opts.Parallel == ParallelKeepMin {
					weight = math.Min(existing.Weight, weight)
				}
			}

			g.RemoveNode(id)
			if _, _, err := g.SetEdge(a, b, weight); err != nil {
				return stats, errors.Wrap(errors.ErrCodeInternal, err, "reconnect %q-%q after removing %q", a, b, id).InStage(errors.StageCollapse)
			}
			removed++
		}

		stats.Collapsed += removed
		if removed == 0 {
			break
		}
	}

	for id := range skipped {
		if g.HasNode(id) && g.Degree(id) == 2 {
			stats.SkippedLoops++
		}
	}
	return stats, nil
}

// CheckWeights verifies that g can be collapsed against maxDistance: every
// edge is weighted with a finite weight no larger than maxDistance.
func CheckWeights(g graph.Container, maxDistance float64) error {
	if math.IsNaN(maxDistance) || math.IsInf(maxDistance, 0) || maxDistance < 0 {
		return errors.Consistency(errors.StageCollapse, "max_distance %v must be finite and non-negative", maxDistance)
	}
	for _, e := range g.Edges() {
		if !e.Weighted {
			return errors.Consistency(errors.StageCollapse, "edge %s-%s has no weight", e.U, e.V)
		}
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return errors.Consistency(errors.StageCollapse, "edge %s-%s has non-finite weight %v", e.U, e.V, e.Weight)
		}
		if e.Weight > maxDistance+Tolerance {
			return errors.Consistency(errors.StageCollapse,
				"edge %s-%s weight %v exceeds max_distance %v", e.U, e.V, e.Weight, maxDistance)
		}
	}
	return nil
}

func compositeWeight(w1, w2, maxDistance float64) float64 {
	return (w1 - maxDistance) + (w2 - maxDistance) + maxDistance
}

package graph

import (
	"errors"
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/matzehuels/roadnet/pkg/geo"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by edge operations when an endpoint does not
	// exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned by [Graph.SetWeight] when the edge ID is not
	// present in the graph.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrSelfLoop is returned by [Graph.AddEdge] and [Graph.SetEdge] when both
	// endpoints are the same node. Road graphs never need self-loops.
	ErrSelfLoop = errors.New("self-loop edges are not allowed")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist or the incidence index disagrees
	// with the edge set. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Metadata stores arbitrary key-value pairs attached to nodes, edges or the
// graph. Metadata maps are never nil once stored in a graph.
type Metadata map[string]any

// Node is a vertex of the road graph.
//
// Pos is nil when the data source did not supply coordinates for the node.
// Positions are never modified by the transforms.
type Node struct {
	ID   string        // Unique identifier (OSM node IDs are stored in decimal)
	Pos  *geo.Position // Geographic position, nil if unknown
	Meta Metadata      // Arbitrary key-value metadata (never nil after AddNode)
}

// HasPosition reports whether the node carries coordinates.
func (n Node) HasPosition() bool { return n.Pos != nil }

// EdgeID identifies an edge within a single graph. IDs are assigned in
// insertion order and never reused.
type EdgeID int64

// Edge is an undirected connection between two distinct nodes.
//
// U and V keep the orientation in which the edge was inserted, which only
// matters for deterministic output ordering. Weight is meaningful only when
// Weighted is true.
type Edge struct {
	ID       EdgeID
	U, V     string
	Weight   float64
	Weighted bool
	Meta     Metadata
}

// Other returns the endpoint opposite to id. If id is not an endpoint, U is
// returned.
func (e Edge) Other(id string) string {
	if e.U == id {
		return e.V
	}
	return e.U
}

// Connects reports whether the edge joins a and b in either orientation.
func (e Edge) Connects(a, b string) bool {
	return (e.U == a && e.V == b) || (e.U == b && e.V == a)
}

// Graph is an undirected multigraph of positioned nodes and weighted edges.
//
// Nodes and edges are indexed in insertion order, so every traversal
// ([Graph.Nodes], [Graph.Edges], [Graph.IncidentEdges], [Graph.Components])
// is deterministic for a given construction sequence. Parallel edges are
// allowed because raw map data can contain them; self-loops are not.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    *orderedmap.OrderedMap[string, *Node]
	edges    *orderedmap.OrderedMap[EdgeID, *Edge]
	incident map[string][]EdgeID // nodeID -> incident edge IDs in insertion order
	nextEdge EdgeID
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    orderedmap.New[string, *Node](),
		edges:    orderedmap.New[EdgeID, *Edge](),
		incident: make(map[string][]EdgeID),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the ID is
// empty or ErrDuplicateNodeID if it is already in use.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes.Get(n.ID); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	if n.Pos != nil {
		p := *n.Pos
		n.Pos = &p
	}
	node := &n
	g.nodes.Set(node.ID, node)
	return nil
}

// RemoveNode removes the node and all of its incident edges.
// It reports whether the node existed.
func (g *Graph) RemoveNode(id string) bool {
	if _, ok := g.nodes.Get(id); !ok {
		return false
	}
	for _, eid := range slices.Clone(g.incident[id]) {
		g.RemoveEdge(eid)
	}
	delete(g.incident, id)
	g.nodes.Delete(id)
	return true
}

// AddEdge adds an undirected edge between two existing, distinct nodes and
// returns its ID. The ID field of e is ignored. An existing edge between the
// same nodes is left untouched; use SetEdge for upsert semantics.
func (g *Graph) AddEdge(e Edge) (EdgeID, error) {
	if e.U == e.V {
		return 0, fmt.Errorf("%w: %s", ErrSelfLoop, e.U)
	}
	if _, ok := g.nodes.Get(e.U); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNode, e.U)
	}
	if _, ok := g.nodes.Get(e.V); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNode, e.V)
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.nextEdge++
	e.ID = g.nextEdge
	edge := &e
	g.edges.Set(e.ID, edge)
	g.incident[e.U] = append(g.incident[e.U], e.ID)
	g.incident[e.V] = append(g.incident[e.V], e.ID)
	return e.ID, nil
}

// SetEdge sets the weight of the first edge between u and v, creating a new
// edge oriented u→v if none exists. It reports whether an edge already
// existed. Parallel edges beyond the first are not modified.
func (g *Graph) SetEdge(u, v string, weight float64) (EdgeID, bool, error) {
	if existing, ok := g.EdgeBetween(u, v); ok {
		existing.Weight = weight
		existing.Weighted = true
		return existing.ID, true, nil
	}
	id, err := g.AddEdge(Edge{U: u, V: v, Weight: weight, Weighted: true})
	return id, false, err
}

// SetWeight assigns a weight to an existing edge.
func (g *Graph) SetWeight(id EdgeID, weight float64) error {
	e, ok := g.edges.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEdge, id)
	}
	e.Weight = weight
	e.Weighted = true
	return nil
}

// RemoveEdge removes the edge with the given ID. It reports whether the
// edge existed.
func (g *Graph) RemoveEdge(id EdgeID) bool {
	e, ok := g.edges.Get(id)
	if !ok {
		return false
	}
	g.edges.Delete(id)
	drop := func(x EdgeID) bool { return x == id }
	g.incident[e.U] = slices.DeleteFunc(g.incident[e.U], drop)
	g.incident[e.V] = slices.DeleteFunc(g.incident[e.V], drop)
	return true
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the node stored in the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	return g.nodes.Get(id)
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes.Get(id)
	return ok
}

// Edge returns a copy of the edge with the given ID.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	e, ok := g.edges.Get(id)
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// EdgeBetween returns the first edge (in insertion order) joining u and v.
func (g *Graph) EdgeBetween(u, v string) (*Edge, bool) {
	for _, id := range g.incident[u] {
		e, _ := g.edges.Get(id)
		if e.Connects(u, v) {
			return e, true
		}
	}
	return nil, false
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// nodes stored in the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, g.nodes.Len())
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		nodes = append(nodes, p.Value)
	}
	return nodes
}

// NodeIDs returns the IDs of all nodes in insertion order. The result is a
// snapshot: mutating the graph afterwards does not affect it.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, g.nodes.Len())
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		ids = append(ids, p.Key)
	}
	return ids
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges.Len())
	for p := g.edges.Oldest(); p != nil; p = p.Next() {
		edges = append(edges, *p.Value)
	}
	return edges
}

// IncidentEdges returns copies of the edges touching the node, in insertion
// order. Returns nil if the node has no edges or doesn't exist.
func (g *Graph) IncidentEdges(id string) []Edge {
	ids := g.incident[id]
	if len(ids) == 0 {
		return nil
	}
	out := make([]Edge, len(ids))
	for i, eid := range ids {
		e, _ := g.edges.Get(eid)
		out[i] = *e
	}
	return out
}

// Neighbors returns the node on the far side of each incident edge, in edge
// insertion order. A neighbor reached through parallel edges appears once
// per edge.
func (g *Graph) Neighbors(id string) []string {
	ids := g.incident[id]
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, eid := range ids {
		e, _ := g.edges.Get(eid)
		out[i] = e.Other(id)
	}
	return out
}

// Degree returns the number of edges incident to the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) Degree(id string) int { return len(g.incident[id]) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return g.nodes.Len() }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return g.edges.Len() }

// Clone returns a deep copy of the graph, preserving node order, edge order
// and edge IDs.
func (g *Graph) Clone() *Graph {
	c := New(cloneMeta(g.meta))
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		n := *p.Value
		n.Meta = cloneMeta(n.Meta)
		c.nodes.Set(n.ID, &n)
	}
	for p := g.edges.Oldest(); p != nil; p = p.Next() {
		e := *p.Value
		e.Meta = cloneMeta(e.Meta)
		c.edges.Set(e.ID, &e)
	}
	for id, ids := range g.incident {
		c.incident[id] = slices.Clone(ids)
	}
	c.nextEdge = g.nextEdge
	return c
}

// Validate checks graph integrity and returns nil if valid. It verifies
// that every edge joins two existing, distinct nodes and that the incidence
// index matches the edge set.
func (g *Graph) Validate() error {
	counts := make(map[string]int, g.nodes.Len())
	for p := g.edges.Oldest(); p != nil; p = p.Next() {
		e := p.Value
		if !g.HasNode(e.U) || !g.HasNode(e.V) {
			return fmt.Errorf("%w: edge %d (%s-%s)", ErrInvalidEdgeEndpoint, e.ID, e.U, e.V)
		}
		if e.U == e.V {
			return fmt.Errorf("%w: edge %d", ErrSelfLoop, e.ID)
		}
		counts[e.U]++
		counts[e.V]++
	}
	for id, ids := range g.incident {
		if len(ids) != counts[id] {
			return fmt.Errorf("%w: node %s indexes %d edges, has %d", ErrInvalidEdgeEndpoint, id, len(ids), counts[id])
		}
	}
	for id, n := range counts {
		if len(g.incident[id]) != n {
			return fmt.Errorf("%w: node %s indexes %d edges, has %d", ErrInvalidEdgeEndpoint, id, len(g.incident[id]), n)
		}
	}
	return nil
}

func cloneMeta(m Metadata) Metadata {
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

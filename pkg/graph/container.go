package graph

// Container is the set of graph capabilities the transforms depend on.
// [*Graph] is the reference implementation; any container offering the same
// semantics (insertion-ordered traversal, undirected multi-edges, no
// self-loops) can be transformed.
type Container interface {
	AddNode(n Node) error
	RemoveNode(id string) bool
	Node(id string) (*Node, bool)
	HasNode(id string) bool
	Nodes() []*Node
	NodeIDs() []string
	NodeCount() int

	AddEdge(e Edge) (EdgeID, error)
	SetEdge(u, v string, weight float64) (EdgeID, bool, error)
	SetWeight(id EdgeID, weight float64) error
	RemoveEdge(id EdgeID) bool
	EdgeBetween(u, v string) (*Edge, bool)
	Edges() []Edge
	EdgeCount() int

	IncidentEdges(id string) []Edge
	Neighbors(id string) []string
	Degree(id string) int

	Components() [][]string
	Retain(keep []string) int

	Meta() Metadata
}

var _ Container = (*Graph)(nil)

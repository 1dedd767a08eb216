package osm

import (
	"strconv"

	"github.com/paulmach/osm"

	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
)

// Edge metadata keys set by Build.
const (
	MetaWay     = "way"
	MetaHighway = "highway"
	MetaName    = "name"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// OnlyRoads keeps only ways that carry a "highway" tag.
	OnlyRoads bool
}

// Build converts decoded OSM data into an undirected road graph.
func Build(o *osm.OSM, opts BuildOptions) *graph.Graph {
	positions := make(map[osm.NodeID]geo.Position, len(o.Nodes))
	for _, n := range o.Nodes {
		positions[n.ID] = geo.Position{Lat: n.Lat, Lon: n.Lon}
	}

	g := graph.New(nil)
	addNode := func(id osm.NodeID) string {
		key := NodeKey(id)
		if g.HasNode(key) {
			return key
		}
		n := graph.Node{ID: key}
		if p, ok := positions[id]; ok {
			n.Pos = &p
		}
		_ = g.AddNode(n)
		return key
	}

	for _, w := range o.Ways {
		if opts.OnlyRoads && !w.Tags.HasTag("highway") {
			continue
		}
		for i := 1; i < len(w.Nodes); i++ {
			prev, cur := w.Nodes[i-1].ID, w.Nodes[i].ID
			if prev == cur {
				continue
			}
			u, v := addNode(prev), addNode(cur)
			if _, exists := g.EdgeBetween(u, v); exists {
				continue
			}
			_, _ = g.AddEdge(graph.Edge{U: u, V: v, Meta: wayMeta(w)})
		}
	}
	return g
}

// NodeKey returns the graph node ID used for an OSM node.
func NodeKey(id osm.NodeID) string {
	return strconv.FormatInt(int64(id), 10)
}

func wayMeta(w *osm.Way) graph.Metadata {
	m := graph.Metadata{MetaWay: int64(w.ID)}
	if v := w.Tags.Find("highway"); v != "" {
		m[MetaHighway] = v
	}
	if v := w.Tags.Find("name"); v != "" {
		m[MetaName] = v
	}
	return m
}

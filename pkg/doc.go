// Package pkg provides the core libraries for roadnet road network
// simplification.
//
// # Overview
//
// Roadnet turns the road network inside a bounding box into a small
// weighted graph: one connected component, every edge weighted by how much
// shorter it is than the longest edge, and every pass-through node folded
// into a single composite edge between junctions.
//
// # Architecture
//
// The typical data flow through roadnet:
//
//	OSM API / .osm / .pbf / .json
//	         ↓
//	    [osm] package (download and build the road graph)
//	         ↓
//	    [graph/transform] package (select component, weight, collapse)
//	         ↓
//	    [io] and [render/nodelink] packages (JSON, GeoJSON, DOT, SVG, PNG)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/roadnet/pkg/geo"
//	    "github.com/matzehuels/roadnet/pkg/graph/transform"
//	    "github.com/matzehuels/roadnet/pkg/osm"
//	)
//
//	f := osm.NewFetcher(osm.FetchOptions{})
//	g, _ := f.FetchRoadGraph(ctx, geo.Bounds{MinLon: -2.85, MinLat: 56.32, MaxLon: -2.76, MaxLat: 56.37},
//	    osm.BuildOptions{OnlyRoads: true})
//
//	res, _ := transform.Simplify(g, transform.WeightOptions{}, transform.CollapseOptions{})
//	fmt.Println(res.MaxDistance, g.NodeCount())
//
// # Main Packages
//
// [graph] - Undirected road graph with insertion-ordered nodes and edges,
// optional positions and connected components.
//
// [graph/transform] - The weight assignor and the degree-2 collapser.
//
// [osm] - OSM API client and file readers that build road graphs.
//
// [pipeline] - Fetch, simplify and render with caching, shared by the CLI
// and the HTTP server.
//
// [cache] - File and Redis caches for fetched graphs and results.
//
// [store] - MongoDB and in-memory storage for server runs.
//
// [server] - HTTP API.
//
// [observability] - Hooks for metrics, with a Prometheus collector in
// [observability/prom].
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/graph
// [graph/transform]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/graph/transform
// [osm]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/osm
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/observability/prom
//
// [io]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/render/nodelink
package pkg

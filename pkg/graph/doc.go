// Package graph provides the in-memory road network container.
//
// # Overview
//
// A [Graph] holds positioned nodes and undirected, optionally weighted edges.
// It is the structure handed between the acquisition layer (package osm),
// the transforms (package graph/transform) and the exporters (package io).
//
// Every index is insertion-ordered (backed by github.com/wk8/go-ordered-map),
// which makes component selection and degree-2 collapse reproducible: the
// same input always produces the same output, edge orientation included.
//
// # Multi-edges
//
// [Graph.AddEdge] accepts parallel edges, since OSM data can connect the
// same two nodes through distinct ways. [Graph.SetEdge] upserts the first
// edge between two nodes and is what the collapse transform uses for
// composite edges. Self-loops are rejected with [ErrSelfLoop].
//
// # Usage
//
//	g := graph.New(nil)
//	_ = g.AddNode(graph.Node{ID: "1", Pos: &geo.Position{Lat: 56.34, Lon: -2.80}})
//	_ = g.AddNode(graph.Node{ID: "2", Pos: &geo.Position{Lat: 56.35, Lon: -2.79}})
//	_, _ = g.AddEdge(graph.Edge{U: "1", V: "2"})
//
//	for _, c := range g.Components() {
//	    fmt.Println(len(c), "nodes")
//	}
package graph

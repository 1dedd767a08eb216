// Package nodelink renders road graphs as node-link diagrams.
//
// # Overview
//
// Nodes are drawn as small points placed at their geographic position and
// edges as straight segments, so the diagram looks like a schematic map.
// Rendering happens in-process through Graphviz with the neato engine, which
// honors pinned positions ("pos" with a trailing "!").
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Weights: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Labels: draw node IDs next to the points
//   - Weights: label edges with their weight
//   - Width: drawing width in inches (height follows the aspect ratio)
//
// Nodes without a position are left unpinned and neato places them.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly; no system installation is required.
package nodelink

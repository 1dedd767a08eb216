// Package osm turns OpenStreetMap data into road graphs.
//
// # Sources
//
// [Fetcher] downloads a bounding box from the OSM API v0.6 "map" call
// through github.com/paulmach/osm/osmapi, retrying transient failures with
// exponential backoff. [ReadFile] loads a local extract instead: OSM XML
// (.osm, .xml), protobuf (.pbf) or the roadnet JSON graph format (.json).
//
// # Graph Construction
//
// [Build] converts decoded OSM data into a [graph.Graph]:
//
//   - With OnlyRoads, only ways carrying a "highway" tag are used.
//   - Every consecutive pair of way nodes becomes an undirected edge.
//     Repeated pairs (shared by several ways, or listed twice) yield a
//     single edge, and zero-length hops are dropped.
//   - Nodes are inserted in order of first appearance along the ways and
//     carry their OSM coordinates. Nodes referenced by a way but missing
//     from the payload are added without a position; weight assignment
//     rejects such graphs.
//
// Edges keep the OSM way ID and its "highway" and "name" tags in their
// metadata.
//
// [graph.Graph]: github.com/matzehuels/roadnet/pkg/graph.Graph
package osm

// Package io provides JSON and GeoJSON serialization for road graphs.
//
// # JSON Format
//
// The native format has a "nodes" array, an "edges" array and an optional
// graph-level "meta" object:
//
//	{
//	  "meta": {"max_distance": 0.41},
//	  "nodes": [
//	    {"id": "1", "lat": 56.3398, "lon": -2.7967},
//	    {"id": "2", "lat": 56.3402, "lon": -2.7931}
//	  ],
//	  "edges": [
//	    {"u": "1", "v": "2", "weight": 0.18}
//	  ]
//	}
//
// A node without "lat"/"lon" has no position. An edge without "weight" is
// unweighted; a present weight marks the edge as weighted, including 0.
// Node and edge "meta" objects carry freeform data such as OSM tags.
//
// Use [ReadJSON]/[ImportJSON] to decode and [WriteJSON]/[ExportJSON] to
// encode. Edges are written in insertion order and read back in the same
// order, so a round trip preserves the neighbor ordering the collapse
// transform depends on.
//
// # GeoJSON
//
// [WriteGeoJSON] emits a FeatureCollection with one Point per positioned
// node and one LineString per edge whose endpoints both have positions.
// Edge features carry "u", "v" and, when weighted, "weight" properties.
// GeoJSON is export-only.
package io

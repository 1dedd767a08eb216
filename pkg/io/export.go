package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/roadnet/pkg/graph"
)

type document struct {
	Meta  graph.Metadata `json:"meta,omitempty"`
	Nodes []node         `json:"nodes"`
	Edges []edge         `json:"edges"`
}

type node struct {
	ID   string         `json:"id"`
	Lat  *float64       `json:"lat,omitempty"`
	Lon  *float64       `json:"lon,omitempty"`
	Meta graph.Metadata `json:"meta,omitempty"`
}

type edge struct {
	U      string         `json:"u"`
	V      string         `json:"v"`
	Weight *float64       `json:"weight,omitempty"`
	Meta   graph.Metadata `json:"meta,omitempty"`
}

// WriteJSON encodes g as JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g graph.Container, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()
	out := document{
		Meta:  g.Meta(),
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}

	for i, n := range nodes {
		nd := node{ID: n.ID, Meta: n.Meta}
		if n.HasPosition() {
			lat, lon := n.Pos.Lat, n.Pos.Lon
			nd.Lat, nd.Lon = &lat, &lon
		}
		out.Nodes[i] = nd
	}
	for i, e := range edges {
		ed := edge{U: e.U, V: e.V, Meta: e.Meta}
		if e.Weighted {
			w := e.Weight
			ed.Weight = &w
		}
		out.Edges[i] = ed
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g graph.Container, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// MarshalJSON returns the JSON encoding of g.
func MarshalJSON(g graph.Container) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GeoJSON builds a FeatureCollection for g.
func GeoJSON(g graph.Container) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, n := range g.Nodes() {
		if !n.HasPosition() {
			continue
		}
		f := geojson.NewFeature(n.Pos.Point())
		f.Properties["id"] = n.ID
		f.Properties["degree"] = g.Degree(n.ID)
		fc.Append(f)
	}
	for _, e := range g.Edges() {
		u, _ := g.Node(e.U)
		v, _ := g.Node(e.V)
		if !u.HasPosition() || !v.HasPosition() {
			continue
		}
		f := geojson.NewFeature(orb.LineString{u.Pos.Point(), v.Pos.Point()})
		f.Properties["u"] = e.U
		f.Properties["v"] = e.V
		if e.Weighted {
			f.Properties["weight"] = e.Weight
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON encodes g as a GeoJSON FeatureCollection and writes it to w.
func WriteGeoJSON(g graph.Container, w io.Writer) error {
	data, err := GeoJSON(g).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}

// ExportGeoJSON writes g to a GeoJSON file at path.
func ExportGeoJSON(g graph.Container, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGeoJSON(g, f)
}

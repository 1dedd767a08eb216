package io

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
)

func sample(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(graph.Metadata{"max_distance": 0.5})
	nodes := []graph.Node{
		{ID: "1", Pos: &geo.Position{Lat: 56.3398, Lon: -2.7967}},
		{ID: "2", Pos: &geo.Position{Lat: 56.3402, Lon: -2.7931}, Meta: graph.Metadata{"highway": "residential"}},
		{ID: "3"},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode() error: %v", err)
		}
	}
	if _, err := g.AddEdge(graph.Edge{U: "1", V: "2", Weight: 0, Weighted: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(graph.Edge{U: "2", V: "3"}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(graph.Edge{U: "2", V: "1", Weight: -0.25, Weighted: true}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestJSONRoundTrip(t *testing.T) {
	g := sample(t)

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}

	if diff := cmp.Diff(g.NodeIDs(), got.NodeIDs()); diff != "" {
		t.Errorf("node order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.Edges(), got.Edges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.Meta(), got.Meta()); diff != "" {
		t.Errorf("meta mismatch (-want +got):\n%s", diff)
	}

	n1, _ := got.Node("1")
	if n1.Pos == nil || *n1.Pos != (geo.Position{Lat: 56.3398, Lon: -2.7967}) {
		t.Errorf("node 1 position = %v", n1.Pos)
	}
	if n3, _ := got.Node("3"); n3.HasPosition() {
		t.Error("node 3 gained a position")
	}
}

func TestWriteJSON_ZeroWeightIsWeighted(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sample(t), &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	var doc struct {
		Edges []map[string]any `json:"edges"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Edges[0]["weight"]; !ok {
		t.Error("zero weight omitted from output")
	}
	if _, ok := doc.Edges[1]["weight"]; ok {
		t.Error("unweighted edge written with a weight")
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"nodes": [`},
		{"duplicate node", `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`},
		{"empty id", `{"nodes": [{"id": ""}], "edges": []}`},
		{"half position", `{"nodes": [{"id": "a", "lat": 1}], "edges": []}`},
		{"unknown endpoint", `{"nodes": [{"id": "a"}], "edges": [{"u": "a", "v": "b"}]}`},
		{"self loop", `{"nodes": [{"id": "a"}], "edges": [{"u": "a", "v": "a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ReadJSON() error = nil")
			}
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(sample(t), path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}
	g, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Errorf("got %d nodes, %d edges; want 3, 3", g.NodeCount(), g.EdgeCount())
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON(missing) error = nil")
	}
}

func TestGeoJSON(t *testing.T) {
	fc := GeoJSON(sample(t))

	var points, lines int
	for _, f := range fc.Features {
		switch f.Geometry.GeoJSONType() {
		case "Point":
			points++
		case "LineString":
			lines++
			if f.Properties["u"] == nil || f.Properties["v"] == nil {
				t.Errorf("edge feature missing endpoints: %v", f.Properties)
			}
		}
	}
	// Node 3 has no position, so it and its edge are left out.
	if points != 2 || lines != 2 {
		t.Errorf("got %d points, %d lines; want 2, 2", points, lines)
	}

	var buf bytes.Buffer
	if err := WriteGeoJSON(sample(t), &buf); err != nil {
		t.Fatalf("WriteGeoJSON() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"FeatureCollection"`) {
		t.Errorf("output is not a FeatureCollection: %s", buf.String())
	}
}

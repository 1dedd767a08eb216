package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
)

// ReadJSON decodes a JSON road graph from r.
//
// Each node must have an "id"; "lat" and "lon" must be given together or not
// at all. Each edge must reference known, distinct nodes. Parallel edges are
// kept as separate edges.
//
// Errors carry the INVALID_FORMAT code and name the node or edge at fault.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}

	g := graph.New(data.Meta)
	for _, n := range data.Nodes {
		nd := graph.Node{ID: n.ID, Meta: n.Meta}
		switch {
		case n.Lat != nil && n.Lon != nil:
			nd.Pos = &geo.Position{Lat: *n.Lat, Lon: *n.Lon}
		case n.Lat != nil || n.Lon != nil:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %s: lat and lon must be given together", n.ID)
		}
		if err := g.AddNode(nd); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %s", n.ID)
		}
	}
	for _, e := range data.Edges {
		ed := graph.Edge{U: e.U, V: e.V, Meta: e.Meta}
		if e.Weight != nil {
			ed.Weight, ed.Weighted = *e.Weight, true
		}
		if _, err := g.AddEdge(ed); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edge %s-%s", e.U, e.V)
		}
	}
	return g, nil
}

// UnmarshalJSON decodes a road graph from data.
func UnmarshalJSON(data []byte) (*graph.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

package osm

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/graph"
	rio "github.com/matzehuels/roadnet/pkg/io"
)

// Scanner is the common surface of the osmxml and osmpbf scanners.
type Scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

// ReadFile loads a road graph from a local file. The format is chosen by
// extension: .osm and .xml are OSM XML, .pbf is OSM protobuf, and .json is
// the roadnet graph format (opts is ignored for JSON).
func ReadFile(ctx context.Context, path string, opts BuildOptions) (*graph.Graph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		return rio.ImportJSON(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var data *osm.OSM
	switch ext {
	case ".osm", ".xml":
		data, err = Decode(osmxml.New(ctx, f))
	case ".pbf":
		data, err = Decode(osmpbf.New(ctx, f, runtime.GOMAXPROCS(0)))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported file type %q (want .osm, .xml, .pbf or .json)", ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", path)
	}
	return Build(data, opts), nil
}

// ReadXML decodes OSM XML from r and builds its road graph.
func ReadXML(ctx context.Context, r io.Reader, opts BuildOptions) (*graph.Graph, error) {
	data, err := Decode(osmxml.New(ctx, r))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode osm xml")
	}
	return Build(data, opts), nil
}

// Decode drains s into an osm.OSM, keeping nodes and ways. It closes s.
func Decode(s Scanner) (*osm.OSM, error) {
	defer s.Close()

	o := &osm.OSM{}
	for s.Scan() {
		switch v := s.Object().(type) {
		case *osm.Node:
			o.Nodes = append(o.Nodes, v)
		case *osm.Way:
			o.Ways = append(o.Ways, v)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/roadnet/pkg/graph"
	rio "github.com/matzehuels/roadnet/pkg/io"
	"github.com/matzehuels/roadnet/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = rio.MarshalJSON(g)
		case FormatGeoJSON:
			var buf bytes.Buffer
			err = rio.WriteGeoJSON(g, &buf)
			data = buf.Bytes()
		case FormatDOT, FormatSVG, FormatPNG:
			if dot == "" {
				dot = nodelink.ToDOT(g, nodelink.Options{Labels: opts.Labels, Weights: opts.Weights})
			}
			switch format {
			case FormatDOT:
				data = []byte(dot)
			case FormatSVG:
				data, err = nodelink.RenderSVG(ctx, dot)
			case FormatPNG:
				data, err = nodelink.RenderPNG(ctx, dot)
			}
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
	"github.com/matzehuels/roadnet/pkg/osm"
	"github.com/matzehuels/roadnet/pkg/pipeline"
)

// stdout is the --output value that writes a single artifact to standard output.
const stdout = "-"

// sourceOpts selects where a command gets its road graph: a bounding box
// downloaded from OSM, or a local file.
type sourceOpts struct {
	bbox    string // "min_lon,min_lat,max_lon,max_lat"
	input   string // .json, .osm, .xml or .pbf file
	allWays bool   // keep ways without a highway tag
	refresh bool   // bypass cache
	noCache bool   // disable cache entirely
}

func (o *sourceOpts) register(cmd *cobra.Command, withInput bool) {
	cmd.Flags().StringVarP(&o.bbox, "bbox", "b", "", "bounding box: min_lon,min_lat,max_lon,max_lat")
	if withInput {
		cmd.Flags().StringVarP(&o.input, "input", "i", "", "read the graph from a file (.json, .osm, .xml, .pbf) instead of OSM")
	}
	cmd.Flags().BoolVar(&o.allWays, "all-ways", false, "keep ways without a highway tag")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
}

// validate checks that exactly one source is given and parses the bbox.
func (o *sourceOpts) validate() (geo.Bounds, error) {
	switch {
	case o.bbox == "" && o.input == "":
		return geo.Bounds{}, errors.New(errors.ErrCodeInvalidInput, "one of --bbox or --input is required")
	case o.bbox != "" && o.input != "":
		return geo.Bounds{}, errors.New(errors.ErrCodeInvalidInput, "--bbox and --input are mutually exclusive")
	case o.input != "":
		return geo.Bounds{}, nil
	}
	b, err := geo.ParseBounds(o.bbox)
	if err != nil {
		return geo.Bounds{}, errors.Wrap(errors.ErrCodeInvalidBounds, err, "--bbox")
	}
	return b, nil
}

// apply copies the source flags into pipeline options.
func (o *sourceOpts) apply(opts *pipeline.Options, b geo.Bounds) {
	opts.Bounds = b
	opts.Refresh = o.refresh
	if o.allWays {
		off := false
		opts.OnlyRoads = &off
	}
}

// readInput loads the --input file.
func (c *CLI) readInput(ctx context.Context, o *sourceOpts, opts pipeline.Options) (*graph.Graph, error) {
	prog := newProgress(c.Logger)
	g, err := osm.ReadFile(ctx, o.input, osm.BuildOptions{OnlyRoads: opts.RoadsOnly()})
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Read %s: %d nodes, %d edges", o.input, g.NodeCount(), g.EdgeCount()))
	return g, nil
}

// outputOpts holds the flags that control written artifacts.
type outputOpts struct {
	output  string // output file, base path for several formats, or "-" for stdout
	formats string // comma-separated formats
	labels  bool
	weights bool
}

func (o *outputOpts) register(cmd *cobra.Command, defaultFormat string) {
	o.formats = defaultFormat
	cmd.Flags().StringVarP(&o.output, "output", "o", "", `output file, base path for several formats, or "-" for stdout`)
	cmd.Flags().StringVarP(&o.formats, "format", "f", defaultFormat, "output format(s): json, geojson, dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&o.labels, "labels", false, "label nodes with their IDs (dot, svg, png)")
	cmd.Flags().BoolVar(&o.weights, "weights", false, "label edges with their weights (dot, svg, png)")
}

// apply validates the formats and copies the render flags into opts.
func (o *outputOpts) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(o.formats)
	opts.Labels = o.labels
	opts.Weights = o.weights
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	if o.output == stdout && len(opts.Formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format")
	}
	return nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the base output path from the output flag and a fallback.
// If output is empty, fallback is used.
// If output has a format extension (.svg, .json, etc.), that extension is stripped.
func basePath(output, fallback string) string {
	if output == "" {
		return fallback
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file for one format. A single format honours an
// explicit --output as given.
func outputPath(output, fallback, format string, single bool) string {
	if single && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return basePath(output, fallback) + "." + format
}

// writeArtifacts writes each rendered format and prints the file list.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, fallback string) error {
	if output == stdout {
		_, err := os.Stdout.Write(artifacts[formats[0]])
		return err
	}
	for _, f := range formats {
		path := outputPath(output, fallback, f, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// fallbackName is the default output base: the input file's stem, or
// "roads" for a downloaded bbox.
func fallbackName(o *sourceOpts, suffix string) string {
	if o.input != "" {
		base := strings.TrimSuffix(o.input, filepath.Ext(o.input))
		return base + suffix
	}
	return "roads" + suffix
}

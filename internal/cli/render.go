package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	rio "github.com/matzehuels/roadnet/pkg/io"
	"github.com/matzehuels/roadnet/pkg/pipeline"
)

// renderCommand creates the render command, which draws a graph JSON file
// written by fetch or simplify.
func (c *CLI) renderCommand() *cobra.Command {
	var out outputOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a road graph file as GeoJSON, DOT, SVG or PNG",
		Long: `Render a road graph previously written as JSON by fetch or simplify.
Node positions are used as fixed coordinates in the drawings.`,
		Example: `  roadnet render roads-simplified.json
  roadnet render roads.json -f geojson,png --labels --weights -o out/town`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &out)
		},
	}

	out.register(cmd, pipeline.FormatSVG)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, out *outputOpts) error {
	var opts pipeline.Options
	if err := out.apply(&opts); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	g, err := rio.ImportJSON(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded graph", "path", input, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	artifacts, err := pipeline.Render(ctx, g, opts)
	if err != nil {
		return err
	}
	if out.output == stdout {
		return writeArtifacts(artifacts, opts.Formats, out.output, "")
	}

	prog.done("Rendered " + filepath.Base(input))
	printStats(g.NodeCount(), g.EdgeCount(), false)
	return writeArtifacts(artifacts, opts.Formats, out.output, strings.TrimSuffix(input, filepath.Ext(input)))
}

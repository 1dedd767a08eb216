package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadnet/pkg/pipeline"
)

// fetchCommand creates the fetch command, which downloads the raw road
// graph without transforming it.
func (c *CLI) fetchCommand() *cobra.Command {
	var src sourceOpts
	var out outputOpts

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the road graph inside a bounding box",
		Long: `Download every way inside a bounding box from the OpenStreetMap API and
write the resulting road graph. Nodes carry positions; edges are unweighted.

The box may cover at most 0.25 square degrees.`,
		Example: `  roadnet fetch --bbox -2.8473,56.3207,-2.7600,56.3672 -o standrews.json
  roadnet fetch --bbox -2.8473,56.3207,-2.7600,56.3672 -f json,geojson,svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), &src, &out)
		},
	}

	src.register(cmd, false)
	out.register(cmd, pipeline.FormatJSON)

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, src *sourceOpts, out *outputOpts) error {
	b, err := src.validate()
	if err != nil {
		return err
	}

	opts := c.transformDefaults()
	src.apply(&opts, b)
	if err := out.apply(&opts); err != nil {
		return err
	}
	if err := opts.ValidateForFetch(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, src.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Fetching %s", b))
	spinner.Start()
	g, hit, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.StopWithError("Fetch cancelled")
		} else {
			spinner.Stop()
		}
		return err
	}

	spinner.SetMessage(fmt.Sprintf("Rendering %s", strings.Join(opts.Formats, ", ")))
	artifacts, err := pipeline.Render(ctx, g, opts)
	if err != nil {
		spinner.Stop()
		return err
	}
	if out.output == stdout {
		spinner.Stop()
		return writeArtifacts(artifacts, opts.Formats, out.output, "")
	}

	spinner.StopWithSuccess("Fetched road graph")
	printStats(g.NodeCount(), g.EdgeCount(), hit)
	if err := writeArtifacts(artifacts, opts.Formats, out.output, fallbackName(src, "")); err != nil {
		return err
	}
	if len(opts.Formats) == 1 && opts.Formats[0] == pipeline.FormatJSON {
		printNextStep("Simplify it", fmt.Sprintf("%s simplify --input %s", appName, outputPath(out.output, "roads", pipeline.FormatJSON, true)))
	}
	return nil
}

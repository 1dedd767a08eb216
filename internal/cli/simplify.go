package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadnet/pkg/pipeline"
)

// transformOpts holds the flags for the weight and collapse stages.
type transformOpts struct {
	component string
	root      string
	parallel  string
	workers   int
}

func (o *transformOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.component, "component", "", "component to keep: largest, first (default from config)")
	cmd.Flags().StringVar(&o.root, "root", "", "keep the component containing this node ID")
	cmd.Flags().StringVar(&o.parallel, "parallel", "", "when a collapse lands on an existing edge: overwrite, keep-min (default from config)")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "goroutines for distance computation (default from config)")
}

// apply copies non-empty flags over the config defaults in opts.
func (o *transformOpts) apply(opts *pipeline.Options) {
	if o.component != "" {
		opts.Component = o.component
	}
	if o.root != "" {
		opts.Root = o.root
	}
	if o.parallel != "" {
		opts.Parallel = o.parallel
	}
	if o.workers != 0 {
		opts.Workers = o.workers
	}
}

// simplifyCommand creates the simplify command, which runs the full
// pipeline: fetch or read, weight, collapse, render.
func (c *CLI) simplifyCommand() *cobra.Command {
	var src sourceOpts
	var tf transformOpts
	var out outputOpts

	cmd := &cobra.Command{
		Use:   "simplify",
		Short: "Weight a road graph and collapse its degree-2 nodes",
		Long: `Build a road graph from a bounding box or a local file, keep a single
connected component, weight each edge by max_distance - length and replace
every chain of pass-through nodes with one composite edge.`,
		Example: `  roadnet simplify --bbox -2.8473,56.3207,-2.7600,56.3672
  roadnet simplify --input standrews.json -f json,svg --parallel keep-min
  roadnet simplify --input extract.osm.pbf --root 26862564 -o town`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimplify(cmd.Context(), &src, &tf, &out)
		},
	}

	src.register(cmd, true)
	tf.register(cmd)
	out.register(cmd, pipeline.FormatJSON)

	return cmd
}

func (c *CLI) runSimplify(ctx context.Context, src *sourceOpts, tf *transformOpts, out *outputOpts) error {
	b, err := src.validate()
	if err != nil {
		return err
	}

	opts := c.transformDefaults()
	src.apply(&opts, b)
	tf.apply(&opts)
	if err := out.apply(&opts); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, src.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := c.execute(ctx, runner, src, opts)
	if err != nil {
		return err
	}
	if out.output == stdout {
		return writeArtifacts(res.Artifacts, opts.Formats, out.output, "")
	}

	printSuccess("Simplified road graph: %s", StyleNumber.Render(fmt.Sprintf("%d nodes", res.Stats.FinalNodes)))
	printStats(res.Stats.FinalNodes, res.Stats.FinalEdges, res.CacheInfo.SimplifyHit)
	printSummary(res)
	return writeArtifacts(res.Artifacts, opts.Formats, out.output, fallbackName(src, "-simplified"))
}

// execute runs the pipeline on the selected source.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, src *sourceOpts, opts pipeline.Options) (*pipeline.Result, error) {
	if src.input == "" {
		spinner := newSpinner(ctx, fmt.Sprintf("Fetching and simplifying %s", opts.Bounds))
		spinner.Start()
		defer spinner.Stop()
		return runner.Execute(ctx, opts)
	}

	g, err := c.readInput(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	return runner.ExecuteGraph(ctx, g, opts)
}

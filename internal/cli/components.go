package cli

import (
	"context"
	"fmt"
	"math"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
	"github.com/matzehuels/roadnet/pkg/pipeline"
)

// componentInfo summarizes one connected component.
type componentInfo struct {
	Index   int
	Root    string // earliest inserted node
	Nodes   int
	Edges   int
	Bounds  geo.Bounds
	Largest bool // the component the default rule keeps
}

// summarizeComponents describes every component of g in insertion order.
func summarizeComponents(g *graph.Graph) []componentInfo {
	comps := g.Components()
	of := make(map[string]int, g.NodeCount())
	infos := make([]componentInfo, len(comps))
	largest := 0
	for i, ids := range comps {
		infos[i] = componentInfo{Index: i, Root: ids[0], Nodes: len(ids), Bounds: nodeBounds(g, ids)}
		for _, id := range ids {
			of[id] = i
		}
		if len(ids) > len(comps[largest]) {
			largest = i
		}
	}
	for _, e := range g.Edges() {
		infos[of[e.U]].Edges++
	}
	if len(infos) > 0 {
		infos[largest].Largest = true
	}
	return infos
}

// nodeBounds returns the extent of the positioned nodes among ids.
func nodeBounds(g *graph.Graph, ids []string) geo.Bounds {
	b := geo.Bounds{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
	found := false
	for _, id := range ids {
		n, ok := g.Node(id)
		if !ok || !n.HasPosition() {
			continue
		}
		found = true
		b.MinLon = math.Min(b.MinLon, n.Pos.Lon)
		b.MinLat = math.Min(b.MinLat, n.Pos.Lat)
		b.MaxLon = math.Max(b.MaxLon, n.Pos.Lon)
		b.MaxLat = math.Max(b.MaxLat, n.Pos.Lat)
	}
	if !found {
		return geo.Bounds{}
	}
	return b
}

// componentsCommand creates the components command, which lists the
// connected components of a road graph and optionally simplifies one.
func (c *CLI) componentsCommand() *cobra.Command {
	var src sourceOpts
	var tf transformOpts
	var out outputOpts
	var pick bool

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List the connected components of a road graph",
		Long: `List the connected components of a road graph. Simplification keeps only
one of them: the largest by default. With --pick, choose a component
interactively and simplify it.`,
		Example: `  roadnet components --input standrews.json
  roadnet components --bbox -2.8473,56.3207,-2.7600,56.3672 --pick -f svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runComponents(cmd.Context(), &src, &tf, &out, pick)
		},
	}

	src.register(cmd, true)
	tf.register(cmd)
	out.register(cmd, pipeline.FormatJSON)
	cmd.Flags().BoolVar(&pick, "pick", false, "choose a component interactively and simplify it")

	return cmd
}

func (c *CLI) runComponents(ctx context.Context, src *sourceOpts, tf *transformOpts, out *outputOpts, pick bool) error {
	b, err := src.validate()
	if err != nil {
		return err
	}
	opts := c.transformDefaults()
	src.apply(&opts, b)

	runner, err := c.newRunner(ctx, src.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var g *graph.Graph
	if src.input != "" {
		g, err = c.readInput(ctx, src, opts)
	} else {
		g, err = runner.Fetch(ctx, opts)
	}
	if err != nil {
		return err
	}

	infos := summarizeComponents(g)
	if !pick {
		printInfo("%d components", len(infos))
		fmt.Println(componentTable(infos, -1))
		return nil
	}

	p := tea.NewProgram(NewComponentListModel(infos), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(ComponentListModel)
	if !ok || m.Selected == nil {
		printInfo("No component selected")
		return nil
	}

	tf.root = m.Selected.Root
	tf.apply(&opts)
	if err := out.apply(&opts); err != nil {
		return err
	}
	res, err := runner.ExecuteGraph(ctx, g, opts)
	if err != nil {
		return err
	}

	printSuccess("Simplified component %d: %s", m.Selected.Index, StyleNumber.Render(fmt.Sprintf("%d nodes", res.Stats.FinalNodes)))
	printSummary(res)
	return writeArtifacts(res.Artifacts, opts.Formats, out.output, fallbackName(src, fmt.Sprintf("-component%d", m.Selected.Index)))
}

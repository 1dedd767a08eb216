package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/roadnet/pkg/cache"
	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
	"github.com/matzehuels/roadnet/pkg/observability"
	"github.com/matzehuels/roadnet/pkg/osm"
)

// stubFetcher returns a fixed road graph: a hub with three two-segment
// arms, plus a separate short street.
type stubFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *stubFetcher) FetchRoadGraph(_ context.Context, _ geo.Bounds, _ osm.BuildOptions) (*graph.Graph, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return sampleGraph(), nil
}

func sampleGraph() *graph.Graph {
	g := graph.New(nil)
	add := func(id string, lat, lon float64) {
		_ = g.AddNode(graph.Node{ID: id, Pos: &geo.Position{Lat: lat, Lon: lon}})
	}
	add("hub", 56.3400, -2.8000)
	add("n1", 56.3410, -2.8000)
	add("n2", 56.3420, -2.8000)
	add("e1", 56.3400, -2.7980)
	add("e2", 56.3400, -2.7960)
	add("s1", 56.3390, -2.8000)
	add("s2", 56.3380, -2.8000)
	add("x1", 56.3600, -2.7700)
	add("x2", 56.3605, -2.7700)
	for _, e := range [][2]string{
		{"hub", "n1"}, {"n1", "n2"},
		{"hub", "e1"}, {"e1", "e2"},
		{"hub", "s1"}, {"s1", "s2"},
		{"x1", "x2"},
	} {
		_, _ = g.AddEdge(graph.Edge{U: e[0], V: e[1]})
	}
	return g
}

// edgeSummary drops edge IDs, which are not stable across a cache round trip.
func edgeSummary(g *graph.Graph) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, fmt.Sprintf("%s-%s:%g", e.U, e.V, e.Weight))
	}
	return out
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestRunner(t *testing.T, f Fetcher) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, f, quietLogger())
}

func TestRunnerExecute(t *testing.T) {
	f := &stubFetcher{}
	r := newTestRunner(t, f)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{Bounds: standrews, Formats: []string{FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	// The x1-x2 street is discarded; every arm collapses onto the hub.
	if diff := cmp.Diff([]string{"hub", "n2", "e2", "s2"}, res.Graph.NodeIDs()); diff != "" {
		t.Errorf("final nodes mismatch (-want +got):\n%s", diff)
	}
	want := Stats{FetchedNodes: 9, FetchedEdges: 7, KeptNodes: 7, KeptEdges: 6, FinalNodes: 4, FinalEdges: 3}
	got := res.Stats
	got.FetchTime, got.WeightTime, got.CollapseTime, got.RenderTime = 0, 0, 0, 0
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if res.Collapse.Collapsed != 3 {
		t.Errorf("Collapsed = %d, want 3", res.Collapse.Collapsed)
	}
	if res.MaxDistance <= 0 {
		t.Errorf("MaxDistance = %v, want > 0", res.MaxDistance)
	}
	if res.GraphHash == "" {
		t.Error("GraphHash is empty")
	}
	if res.CacheInfo.FetchHit || res.CacheInfo.SimplifyHit {
		t.Errorf("first run should miss the cache: %+v", res.CacheInfo)
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"max_distance"`) {
		t.Error("JSON artifact lacks max_distance")
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "graph G {") {
		t.Error("DOT artifact is not an undirected graph")
	}
}

func TestRunnerExecuteUsesCache(t *testing.T) {
	f := &stubFetcher{}
	r := newTestRunner(t, f)
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Bounds: standrews})
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	second, err := r.Execute(ctx, Options{Bounds: standrews})
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}

	if f.calls.Load() != 1 {
		t.Errorf("fetcher called %d times, want 1", f.calls.Load())
	}
	if !second.CacheInfo.FetchHit || !second.CacheInfo.SimplifyHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if diff := cmp.Diff(edgeSummary(first.Graph), edgeSummary(second.Graph)); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}
	if first.MaxDistance != second.MaxDistance || first.Collapse != second.Collapse {
		t.Errorf("cached summary differs: %v/%+v vs %v/%+v",
			first.MaxDistance, first.Collapse, second.MaxDistance, second.Collapse)
	}

	// Refresh bypasses the cache.
	if _, err := r.Execute(ctx, Options{Bounds: standrews, Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if f.calls.Load() != 2 {
		t.Errorf("refresh should fetch again; fetcher called %d times", f.calls.Load())
	}

	// A different component rule is a different result.
	res, err := r.Execute(ctx, Options{Bounds: standrews, Root: "x1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.SimplifyHit {
		t.Error("different transform options should miss the result cache")
	}
	if diff := cmp.Diff([]string{"x1", "x2"}, res.Graph.NodeIDs()); diff != "" {
		t.Errorf("root selection mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerExecuteGraphLeavesInputUntouched(t *testing.T) {
	r := NewRunner(nil, nil, &stubFetcher{}, quietLogger())
	g := sampleGraph()
	before := g.Edges()

	res, err := r.ExecuteGraph(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("ExecuteGraph() error: %v", err)
	}
	if res.Stats.FinalNodes != 4 {
		t.Errorf("FinalNodes = %d, want 4", res.Stats.FinalNodes)
	}
	if diff := cmp.Diff(before, g.Edges()); diff != "" {
		t.Errorf("input graph modified (-before +after):\n%s", diff)
	}
	if g.NodeCount() != 9 {
		t.Errorf("input NodeCount() = %d, want 9", g.NodeCount())
	}
}

func TestRunnerErrors(t *testing.T) {
	ctx := context.Background()

	fetchErr := errors.New(errors.ErrCodeNetwork, "boom").InStage(errors.StageFetch)
	r := NewRunner(nil, nil, &stubFetcher{err: fetchErr}, quietLogger())
	if _, err := r.Execute(ctx, Options{Bounds: standrews}); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("fetch failure: error = %v, want NETWORK_ERROR", err)
	}

	// A node without position fails in the weight stage.
	g := sampleGraph()
	_ = g.AddNode(graph.Node{ID: "ghost"})
	_, _ = g.AddEdge(graph.Edge{U: "ghost", V: "hub"})
	_, err := r.ExecuteGraph(ctx, g, Options{})
	if !errors.IsInput(err) || errors.GetStage(err) != errors.StageWeight {
		t.Errorf("missing position: error = %v, want INVALID_INPUT in %q", err, errors.StageWeight)
	}

	if _, err := r.ExecuteGraph(ctx, sampleGraph(), Options{Root: "nowhere"}); !errors.IsInput(err) {
		t.Errorf("unknown root: error = %v, want INVALID_INPUT", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingHooks) OnFetchStart(context.Context, string) {
	h.events = append(h.events, "fetch:start")
}
func (h *recordingHooks) OnFetchComplete(_ context.Context, _ string, _, _ int, _ time.Duration, err error) {
	h.events = append(h.events, "fetch:done")
}
func (h *recordingHooks) OnWeightStart(context.Context, int, int) {
	h.events = append(h.events, "weight:start")
}
func (h *recordingHooks) OnWeightComplete(context.Context, float64, time.Duration, error) {
	h.events = append(h.events, "weight:done")
}
func (h *recordingHooks) OnCollapseStart(context.Context, int) {
	h.events = append(h.events, "collapse:start")
}
func (h *recordingHooks) OnCollapseComplete(context.Context, int, int, time.Duration, error) {
	h.events = append(h.events, "collapse:done")
}

func TestRunnerEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, &stubFetcher{}, quietLogger())
	if _, err := r.Execute(context.Background(), Options{Bounds: standrews}); err != nil {
		t.Fatal(err)
	}

	want := []string{"fetch:start", "fetch:done", "weight:start", "weight:done", "collapse:start", "collapse:done"}
	if diff := cmp.Diff(want, hooks.events); diff != "" {
		t.Errorf("hook events mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	g := sampleGraph()
	artifacts, err := Render(context.Background(), g, Options{Formats: []string{FormatGeoJSON, FormatDOT}, Labels: true})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(string(artifacts[FormatGeoJSON]), "FeatureCollection") {
		t.Error("geojson artifact is not a FeatureCollection")
	}
	if !strings.Contains(string(artifacts[FormatDOT]), `xlabel="hub"`) {
		t.Error("dot artifact lacks node labels")
	}
	if _, err := Render(context.Background(), g, Options{Formats: []string{"pdf"}}); err == nil {
		t.Error("Render(pdf) error = nil")
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadnet/pkg/cache"
	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
	"github.com/matzehuels/roadnet/pkg/graph/transform"
	rio "github.com/matzehuels/roadnet/pkg/io"
	"github.com/matzehuels/roadnet/pkg/observability"
	"github.com/matzehuels/roadnet/pkg/osm"
)

// Fetcher downloads the road graph for a bounding box.
// *osm.Fetcher implements it.
type Fetcher interface {
	FetchRoadGraph(ctx context.Context, b geo.Bounds, opts osm.BuildOptions) (*graph.Graph, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetcher and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and fetcher.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If fetcher is nil, an osm.Fetcher with default options is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, fetcher Fetcher, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if fetcher == nil {
		fetcher = osm.NewFetcher(osm.FetchOptions{})
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// Simplified is the output of the weight and collapse stages.
type Simplified struct {
	InputHash   string // Content hash of the graph before simplification
	Graph       *graph.Graph
	MaxDistance float64
	Collapse    transform.CollapseStats
	KeptNodes   int
	KeptEdges   int

	WeightTime   time.Duration
	CollapseTime time.Duration
}

// simplifiedEntry is the cached form of Simplified.
type simplifiedEntry struct {
	Graph       json.RawMessage         `json:"graph"`
	MaxDistance float64                 `json:"max_distance"`
	Collapse    transform.CollapseStats `json:"collapse"`
	KeptNodes   int                     `json:"kept_nodes"`
	KeptEdges   int                     `json:"kept_edges"`
}

// Execute runs the complete fetch → weight → collapse → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	g, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.FetchedNodes = g.NodeCount()
	result.Stats.FetchedEdges = g.EdgeCount()
	result.CacheInfo.FetchHit = fetchHit

	r.Logger.Info("fetched road graph",
		"bbox", opts.Bounds,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", fetchHit,
		"duration", result.Stats.FetchTime)

	// Stages 2 and 3: Weight and collapse
	return r.finish(ctx, g, opts, result)
}

// ExecuteGraph runs the weight → collapse → render stages on a graph the
// caller already holds. g is not modified.
func (r *Runner) ExecuteGraph(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateForSimplify(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}
	result.Stats.FetchedNodes = g.NodeCount()
	result.Stats.FetchedEdges = g.EdgeCount()
	return r.finish(ctx, g, opts, result)
}

func (r *Runner) finish(ctx context.Context, g *graph.Graph, opts Options, result *Result) (*Result, error) {
	simplified, simplifyHit, err := r.SimplifyWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = simplified.Graph
	result.GraphHash = simplified.InputHash
	result.MaxDistance = simplified.MaxDistance
	result.Collapse = simplified.Collapse
	result.Stats.KeptNodes = simplified.KeptNodes
	result.Stats.KeptEdges = simplified.KeptEdges
	result.Stats.FinalNodes = simplified.Graph.NodeCount()
	result.Stats.FinalEdges = simplified.Graph.EdgeCount()
	result.Stats.WeightTime = simplified.WeightTime
	result.Stats.CollapseTime = simplified.CollapseTime
	result.CacheInfo.SimplifyHit = simplifyHit

	r.Logger.Info("simplified road graph",
		"nodes", result.Stats.FinalNodes,
		"edges", result.Stats.FinalEdges,
		"max_distance", result.MaxDistance,
		"cached", simplifyHit)

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, err := Render(ctx, result.Graph, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// FetchWithCacheInfo downloads the road graph with caching and returns cache hit info.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.GraphKey(opts.Bounds, opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if g, ok := r.cachedGraph(ctx, cacheKey); ok {
			return g, true, nil
		}
	}

	hooks := observability.Pipeline()
	bbox := opts.Bounds.String()
	hooks.OnFetchStart(ctx, bbox)
	start := time.Now()
	g, err := r.Fetcher.FetchRoadGraph(ctx, opts.Bounds, osm.BuildOptions{OnlyRoads: opts.RoadsOnly()})
	if err != nil {
		hooks.OnFetchComplete(ctx, bbox, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnFetchComplete(ctx, bbox, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)

	if data, err := rio.MarshalJSON(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.GraphTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeGraph, len(data))
		}
	}
	return g, false, nil
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, err := r.FetchWithCacheInfo(ctx, opts)
	return g, err
}

func (r *Runner) cachedGraph(ctx context.Context, key string) (*graph.Graph, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeGraph)
		return nil, false
	}
	g, err := rio.UnmarshalJSON(data)
	if err != nil {
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeGraph)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyTypeGraph)
	return g, true
}

// SimplifyWithCacheInfo assigns weights and collapses degree-2 nodes on a
// copy of g, with caching, and returns cache hit info. g is not modified.
func (r *Runner) SimplifyWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*Simplified, bool, error) {
	if err := opts.ValidateForSimplify(); err != nil {
		return nil, false, err
	}

	hash := graphHash(g)
	cacheKey := r.Keyer.ResultKey(hash, opts.ResultKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		var entry simplifiedEntry
		ok, err := cache.GetJSON(ctx, r.Cache, cache.KeyTypeResult, cacheKey, &entry)
		if err != nil {
			r.Logger.Warn("cache read failed", "key", cacheKey, "err", err)
		}
		if ok {
			if out, err := rio.UnmarshalJSON(entry.Graph); err == nil {
				return &Simplified{
					InputHash:   hash,
					Graph:       out,
					MaxDistance: entry.MaxDistance,
					Collapse:    entry.Collapse,
					KeptNodes:   entry.KeptNodes,
					KeptEdges:   entry.KeptEdges,
				}, true, nil
			}
		}
	}

	out, err := r.simplify(ctx, g.Clone(), opts)
	if err != nil {
		return nil, false, err
	}
	out.InputHash = hash

	if data, err := rio.MarshalJSON(out.Graph); err == nil {
		entry := simplifiedEntry{
			Graph:       data,
			MaxDistance: out.MaxDistance,
			Collapse:    out.Collapse,
			KeptNodes:   out.KeptNodes,
			KeptEdges:   out.KeptEdges,
		}
		if err := cache.SetJSON(ctx, r.Cache, cache.KeyTypeResult, cacheKey, entry, cache.ResultTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		}
	}
	return out, false, nil
}

// Simplify is a convenience wrapper that calls SimplifyWithCacheInfo and discards the cache hit info.
func (r *Runner) Simplify(ctx context.Context, g *graph.Graph, opts Options) (*Simplified, error) {
	out, _, err := r.SimplifyWithCacheInfo(ctx, g, opts)
	return out, err
}

// simplify runs both transforms on g in place, reporting each stage to the
// pipeline hooks and the logger.
func (r *Runner) simplify(ctx context.Context, g *graph.Graph, opts Options) (*Simplified, error) {
	hooks := observability.Pipeline()
	out := &Simplified{Graph: g}

	hooks.OnWeightStart(ctx, g.NodeCount(), g.EdgeCount())
	start := time.Now()
	maxDistance, err := transform.AssignWeights(g, opts.WeightOptions())
	out.WeightTime = time.Since(start)
	hooks.OnWeightComplete(ctx, maxDistance, out.WeightTime, err)
	if err != nil {
		return nil, err
	}
	out.MaxDistance = maxDistance
	out.KeptNodes, out.KeptEdges = g.NodeCount(), g.EdgeCount()

	r.Logger.Debug("assigned weights",
		"nodes", out.KeptNodes,
		"edges", out.KeptEdges,
		"max_distance", maxDistance,
		"duration", out.WeightTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks.OnCollapseStart(ctx, g.NodeCount())
	start = time.Now()
	stats, err := transform.CollapseDegreeTwo(g, maxDistance, opts.CollapseOptions())
	out.CollapseTime = time.Since(start)
	hooks.OnCollapseComplete(ctx, stats.Collapsed, stats.Passes, out.CollapseTime, err)
	if err != nil {
		return nil, err
	}
	out.Collapse = stats

	r.Logger.Debug("collapsed degree-2 nodes",
		"removed", stats.Collapsed,
		"passes", stats.Passes,
		"merged_parallel", stats.MergedParallel,
		"skipped_loops", stats.SkippedLoops,
		"duration", out.CollapseTime)

	return out, nil
}

// graphHash returns the content hash of g's JSON encoding.
func graphHash(g *graph.Graph) string {
	data, err := rio.MarshalJSON(g)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

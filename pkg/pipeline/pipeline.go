// Package pipeline provides the road network simplification pipeline.
//
// This package implements the complete fetch → weight → collapse → render
// pipeline used by both the CLI and the HTTP API. By centralizing this
// logic, both entry points share caching, logging and instrumentation.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Fetch: Download the road graph for a bounding box (cached by bbox)
//  2. Weight: Keep one connected component and assign inverted-distance weights
//  3. Collapse: Remove degree-2 nodes until none are left
//  4. Render: Encode the result as JSON, GeoJSON, DOT, SVG or PNG
//
// Stages 2 and 3 are cached together, keyed by the input graph's content
// hash and the transform options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, fetcher, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Bounds:  geo.Bounds{MinLon: -2.8473, MinLat: 56.3207, MaxLon: -2.76, MaxLat: 56.3672},
//	    Formats: []string{pipeline.FormatJSON},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Graph.NodeCount())
//
// Run individual stages:
//
//	g, err := runner.Fetch(ctx, opts)
//	simplified, err := runner.Simplify(ctx, g, opts)
//	artifacts, err := Render(ctx, simplified.Graph, opts)
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/roadnet/pkg/cache"
	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
	"github.com/matzehuels/roadnet/pkg/graph/transform"
	"github.com/matzehuels/roadnet/pkg/osm"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultComponent keeps the largest connected component.
	DefaultComponent = "largest"

	// DefaultParallel overwrites an existing edge when a collapse lands on it.
	DefaultParallel = "overwrite"

	// DefaultWorkers computes edge distances sequentially.
	DefaultWorkers = 1

	// MaxWorkers caps the distance workers a request may ask for.
	MaxWorkers = 64
)

// Format constants for output formats.
const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatPNG     = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:    true,
	FormatGeoJSON: true,
	FormatDOT:     true,
	FormatSVG:     true,
	FormatPNG:     true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	Bounds    geo.Bounds `json:"bbox"`
	OnlyRoads *bool      `json:"only_roads,omitempty"` // nil means true
	Refresh   bool       `json:"refresh,omitempty"`

	// Transform options
	Component string `json:"component,omitempty"` // largest or first
	Root      string `json:"root,omitempty"`      // keep the component of this node instead
	Parallel  string `json:"parallel,omitempty"`  // overwrite or keep-min
	Workers   int    `json:"workers,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Weights bool     `json:"weights,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the simplified road graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the fetched graph.
	GraphHash string

	// MaxDistance is the longest edge, in kilometers, of the weighted graph.
	MaxDistance float64

	// Collapse reports what the collapse stage did.
	Collapse transform.CollapseStats

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FetchedNodes int // Nodes in the fetched graph
	FetchedEdges int
	KeptNodes    int // Nodes in the selected component
	KeptEdges    int
	FinalNodes   int // Nodes after collapsing
	FinalEdges   int

	FetchTime    time.Duration
	WeightTime   time.Duration
	CollapseTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit    bool // Whether the road graph came from cache
	SimplifyHit bool // Whether the weighted and collapsed graph came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, geojson, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForSimplify(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks the bounding box.
func (o *Options) ValidateForFetch() error {
	b := o.Bounds
	if err := errors.ValidateBounds(b.MinLon, b.MinLat, b.MaxLon, b.MaxLat, osm.MaxArea); err != nil {
		return err
	}
	return nil
}

// ValidateForSimplify checks and defaults the transform options.
func (o *Options) ValidateForSimplify() error {
	if o.Component == "" {
		o.Component = DefaultComponent
	}
	if o.Parallel == "" {
		o.Parallel = DefaultParallel
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if _, err := transform.ParseComponentRule(o.Component); err != nil {
		return err
	}
	if _, err := transform.ParseParallelPolicy(o.Parallel); err != nil {
		return err
	}
	if o.Root != "" {
		if err := errors.ValidateNodeID(o.Root); err != nil {
			return err
		}
	}
	if o.Workers < 0 || o.Workers > MaxWorkers {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be between 1 and %d", MaxWorkers)
	}
	return nil
}

// RoadsOnly reports whether only highway ways are used.
func (o *Options) RoadsOnly() bool {
	return o.OnlyRoads == nil || *o.OnlyRoads
}

// WeightOptions returns the options for transform.AssignWeights.
// ValidateForSimplify must have succeeded.
func (o *Options) WeightOptions() transform.WeightOptions {
	rule, _ := transform.ParseComponentRule(o.Component)
	return transform.WeightOptions{Component: rule, Root: o.Root, Workers: o.Workers}
}

// CollapseOptions returns the options for transform.CollapseDegreeTwo.
// ValidateForSimplify must have succeeded.
func (o *Options) CollapseOptions() transform.CollapseOptions {
	policy, _ := transform.ParseParallelPolicy(o.Parallel)
	return transform.CollapseOptions{Parallel: policy}
}

// GraphKeyOpts returns cache key options for a fetched graph.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{OnlyRoads: o.RoadsOnly()}
}

// ResultKeyOpts returns cache key options for a simplified graph.
// Workers is left out because it does not change the result.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{Component: o.Component, Root: o.Root, Parallel: o.Parallel}
}

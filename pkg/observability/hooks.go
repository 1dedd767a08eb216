// Package observability lets binaries observe the pipeline, the caches and
// outgoing OSM requests without the libraries depending on a metrics
// backend.
//
// Libraries report events through the package-level accessors:
//
//	observability.Pipeline().OnWeightStart(ctx, nodes, edges)
//	maxDistance, err := transform.AssignWeights(g, opts)
//	observability.Pipeline().OnWeightComplete(ctx, maxDistance, time.Since(start), err)
//
// Binaries register implementations at startup. The serve command
// registers the Prometheus collector from [prom]; [LogPipelineHooks]
// writes stage timings to a logger:
//
//	c := prom.NewCollector()
//	observability.SetPipelineHooks(c)
//	observability.SetCacheHooks(c)
//	observability.SetHTTPHooks(c)
//
// Until then every hook is a no-op.
//
// [prom]: https://pkg.go.dev/github.com/matzehuels/roadnet/pkg/observability/prom
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the simplification pipeline.
type PipelineHooks interface {
	// Fetch events
	OnFetchStart(ctx context.Context, bbox string)
	OnFetchComplete(ctx context.Context, bbox string, nodeCount, edgeCount int, duration time.Duration, err error)

	// Weight assignment events
	OnWeightStart(ctx context.Context, nodeCount, edgeCount int)
	OnWeightComplete(ctx context.Context, maxDistance float64, duration time.Duration, err error)

	// Collapse events
	OnCollapseStart(ctx context.Context, nodeCount int)
	OnCollapseComplete(ctx context.Context, collapsed, passes int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing HTTP requests, such as OSM API calls.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string) {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnWeightStart(context.Context, int, int)                            {}
func (NoopPipelineHooks) OnWeightComplete(context.Context, float64, time.Duration, error)    {}
func (NoopPipelineHooks) OnCollapseStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnCollapseComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registry is swapped as a whole so readers never see a half-updated set.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var (
	current atomic.Pointer[registry]
	setMu   sync.Mutex // serializes writers
)

func init() { Reset() }

func update(f func(r *registry)) {
	setMu.Lock()
	defer setMu.Unlock()
	r := *current.Load()
	f(&r)
	current.Store(&r)
}

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
// Call it once at startup, before the first pipeline run.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests that register hooks defer it.
func Reset() {
	setMu.Lock()
	defer setMu.Unlock()
	current.Store(&registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}

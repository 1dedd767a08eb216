// Package prom implements the observability hooks on top of Prometheus.
//
// A [Collector] owns its own registry so several collectors can coexist in
// tests. Register it with the global hook registry and expose [Collector.Handler]
// on an HTTP route:
//
//	c := prom.NewCollector()
//	observability.SetPipelineHooks(c)
//	observability.SetCacheHooks(c)
//	observability.SetHTTPHooks(c)
//	r.Handle("/metrics", c.Handler())
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/roadnet/pkg/observability"
)

const namespace = "roadnet"

const (
	labelStage   = "stage"
	labelStatus  = "status"
	labelKeyType = "key_type"
	labelMethod  = "method"
	labelHost    = "host"
	labelRoute   = "route"
	labelCode    = "code"
)

// Stage label values.
const (
	stageFetch    = "fetch"
	stageWeight   = "weight"
	stageCollapse = "collapse"
)

// Collector records pipeline, cache, HTTP client and HTTP server metrics.
type Collector struct {
	registry *prometheus.Registry

	stageTotal     *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	graphNodes     *prometheus.HistogramVec
	maxDistance    prometheus.Gauge
	collapsedNodes prometheus.Counter
	collapsePasses prometheus.Histogram

	cacheTotal *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	clientTotal    *prometheus.CounterVec
	clientDuration *prometheus.HistogramVec

	serverTotal    *prometheus.CounterVec
	serverDuration *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Collector)(nil)
	_ observability.CacheHooks    = (*Collector)(nil)
	_ observability.HTTPHooks     = (*Collector)(nil)
)

// NewCollector creates a Collector with a fresh registry that also carries
// the Go runtime and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		stageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "stage_total", Help: "Pipeline stage executions"},
			[]string{labelStage, labelStatus},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{labelStage},
		),
		graphNodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_nodes",
				Help:      "Node count entering each pipeline stage",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
			},
			[]string{labelStage},
		),
		maxDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "max_distance_kilometers",
			Help:      "Longest edge of the most recently weighted graph",
		}),
		collapsedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collapsed_nodes_total",
			Help:      "Degree-2 nodes removed by the collapse stage",
		}),
		collapsePasses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collapse_passes",
			Help:      "Passes needed to reach the collapse fixed point",
			Buckets:   prometheus.LinearBuckets(1, 1, 8),
		}),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "cache_requests_total", Help: "Cache lookups and writes"},
			[]string{labelKeyType, labelStatus},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "cache_written_bytes_total", Help: "Bytes written to the cache"},
			[]string{labelKeyType},
		),
		clientTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_client_requests_total", Help: "Outgoing HTTP requests"},
			[]string{labelMethod, labelHost, labelCode},
		),
		clientDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_client_duration_seconds",
				Help:      "Outgoing HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{labelMethod, labelHost},
		),
		serverTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Served HTTP requests"},
			[]string{labelMethod, labelRoute, labelCode},
		),
		serverDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Served HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{labelMethod, labelRoute},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.stageTotal, c.stageDuration, c.graphNodes, c.maxDistance, c.collapsedNodes, c.collapsePasses,
		c.cacheTotal, c.cacheBytes,
		c.clientTotal, c.clientDuration,
		c.serverTotal, c.serverDuration,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveRequest records a served HTTP request. route is the matched route
// pattern, not the raw path.
func (c *Collector) ObserveRequest(method, route string, code int, duration time.Duration) {
	c.serverTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.serverDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) observeStage(stage string, duration time.Duration, err error) {
	c.stageTotal.WithLabelValues(stage, status(err)).Inc()
	c.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Pipeline hooks

func (c *Collector) OnFetchStart(context.Context, string) {}

func (c *Collector) OnFetchComplete(_ context.Context, _ string, nodeCount, _ int, duration time.Duration, err error) {
	c.observeStage(stageFetch, duration, err)
	if err == nil {
		c.graphNodes.WithLabelValues(stageFetch).Observe(float64(nodeCount))
	}
}

func (c *Collector) OnWeightStart(_ context.Context, nodeCount, _ int) {
	c.graphNodes.WithLabelValues(stageWeight).Observe(float64(nodeCount))
}

func (c *Collector) OnWeightComplete(_ context.Context, maxDistance float64, duration time.Duration, err error) {
	c.observeStage(stageWeight, duration, err)
	if err == nil {
		c.maxDistance.Set(maxDistance)
	}
}

func (c *Collector) OnCollapseStart(_ context.Context, nodeCount int) {
	c.graphNodes.WithLabelValues(stageCollapse).Observe(float64(nodeCount))
}

func (c *Collector) OnCollapseComplete(_ context.Context, collapsed, passes int, duration time.Duration, err error) {
	c.observeStage(stageCollapse, duration, err)
	if err == nil {
		c.collapsedNodes.Add(float64(collapsed))
		c.collapsePasses.Observe(float64(passes))
	}
}

// Cache hooks

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.cacheTotal.WithLabelValues(keyType, "set").Inc()
	c.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// HTTP client hooks

func (c *Collector) OnRequest(context.Context, string, string, string) {}

func (c *Collector) OnResponse(_ context.Context, method, host, _ string, statusCode int, duration time.Duration) {
	c.clientTotal.WithLabelValues(method, host, strconv.Itoa(statusCode)).Inc()
	c.clientDuration.WithLabelValues(method, host).Observe(duration.Seconds())
}

func (c *Collector) OnError(_ context.Context, method, host, _ string, _ error) {
	c.clientTotal.WithLabelValues(method, host, "error").Inc()
}

// Package server exposes the road-graph pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness probe
//	POST /v1/simplify      weight and collapse a graph posted as JSON
//	POST /v1/runs          fetch a bbox from OSM, simplify it and store the run
//	GET  /v1/runs          list stored runs, newest first
//	GET  /v1/runs/{id}     fetch one stored run
//	GET  /metrics          Prometheus metrics (when a collector is configured)
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with an
// HTTP status derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/roadnet/pkg/observability/prom"
	"github.com/matzehuels/roadnet/pkg/pipeline"
	"github.com/matzehuels/roadnet/pkg/store"
)

// Defaults for Options.
const (
	DefaultMaxBodyBytes = 32 << 20
	DefaultTimeout      = 5 * time.Minute
	DefaultListLimit    = 50
	shutdownTimeout     = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Runner  *pipeline.Runner
	Store   store.Store     // nil keeps runs in memory
	Metrics *prom.Collector // nil disables /metrics and request metrics
	Logger  *log.Logger

	// Defaults fills transform options a request leaves empty.
	Defaults pipeline.Options

	MaxBodyBytes int64         // Request body limit
	Timeout      time.Duration // Per-request pipeline timeout
}

// Server is the HTTP API. It is safe for concurrent use.
type Server struct {
	opts   Options
	router chi.Router
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	s := &Server{opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/simplify", s.handleSimplify)
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.handleCreateRun)
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the store.
func (s *Server) Close() error {
	return s.opts.Store.Close()
}

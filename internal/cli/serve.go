package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadnet/pkg/observability"
	"github.com/matzehuels/roadnet/pkg/observability/prom"
	"github.com/matzehuels/roadnet/pkg/server"
	"github.com/matzehuels/roadnet/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simplification pipeline over HTTP",
		Long: `Serve the HTTP API:

  POST /v1/simplify     simplify a graph sent as JSON
  POST /v1/runs         fetch a bounding box, simplify it and store the run
  GET  /v1/runs         list stored runs, newest first
  GET  /v1/runs/{id}    fetch one stored run
  GET  /healthz         liveness probe
  GET  /metrics         Prometheus metrics

Runs are kept in MongoDB when [store] mongo_uri is set, in memory otherwise.`,
		Example: `  roadnet serve
  ROADNET_MONGO_URI=mongodb://localhost:27017 roadnet serve --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache, !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache, metrics bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}

	var collector *prom.Collector
	if metrics {
		collector = prom.NewCollector()
		observability.SetPipelineHooks(collector)
		observability.SetCacheHooks(collector)
		observability.SetHTTPHooks(collector)
		defer observability.Reset()
	}

	srv := server.New(server.Options{
		Runner:   runner,
		Store:    st,
		Metrics:  collector,
		Logger:   c.Logger,
		Defaults: c.transformDefaults(),
	})
	defer srv.Close()

	printInfo("Listening on %s", StyleHighlight.Render(addr))
	return srv.ListenAndServe(ctx, addr)
}

// openStore opens MongoDB when a URI is configured, memory otherwise.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	if cfg.MongoURI == "" {
		c.Logger.Debug("keeping runs in memory")
		return store.NewMemoryStore(), nil
	}
	st, err := store.NewMongoStore(ctx, store.MongoOptions{
		URI:        cfg.MongoURI,
		Database:   cfg.Database,
		Collection: cfg.Collection,
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Info("storing runs in mongodb", "database", cfg.Database, "collection", cfg.Collection)
	return st, nil
}

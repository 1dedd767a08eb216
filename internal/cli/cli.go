// Package cli implements the roadnet command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadnet/pkg/buildinfo"
	"github.com/matzehuels/roadnet/pkg/cache"
	"github.com/matzehuels/roadnet/pkg/config"
	"github.com/matzehuels/roadnet/pkg/observability"
	"github.com/matzehuels/roadnet/pkg/osm"
	"github.com/matzehuels/roadnet/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "roadnet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
	envFile    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Roadnet simplifies OpenStreetMap road networks",
		Long: `Roadnet downloads the road network inside a bounding box from OpenStreetMap,
keeps one connected component, weights every edge by inverted length and
collapses pass-through (degree-2) nodes into single composite edges.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/roadnet/config.toml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file with ROADNET_* overrides")

	// Register all subcommands
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.simplifyCommand())
	root.AddCommand(c.componentsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the dotenv file and the config file.
func (c *CLI) loadConfig() error {
	if err := config.LoadDotEnv(c.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend, "osm", cfg.Fetch.BaseURL)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. With --verbose the
// pipeline stages are logged.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.SetPipelineHooks(observability.NewLogPipelineHooks(c.Logger))
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cache.EndpointScope(c.Config.Fetch.BaseURL))
	fetcher := osm.NewFetcher(c.Config.FetchOptions())
	return pipeline.NewRunner(ch, keyer, fetcher, c.Logger), nil
}

// openCache opens the configured cache. A broken file cache degrades to no
// caching; an unreachable redis is an error.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := c.Config.CacheOptions()
	ch, err := cache.Open(ctx, opts)
	if err != nil {
		if opts.Backend == cache.BackendRedis {
			return nil, err
		}
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// cacheDir returns the file cache directory from the config, defaulting
// to the user cache directory (~/.cache/roadnet/ on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// transformDefaults returns pipeline options seeded from the [fetch] and
// [transform] config sections.
func (c *CLI) transformDefaults() pipeline.Options {
	onlyRoads := c.Config.Fetch.OnlyRoads
	return pipeline.Options{
		OnlyRoads: &onlyRoads,
		Component: c.Config.Transform.Component,
		Parallel:  c.Config.Transform.Parallel,
		Workers:   c.Config.Transform.Workers,
	}
}

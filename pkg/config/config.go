// Package config loads roadnet settings from a TOML file, a .env file and
// ROADNET_* environment variables.
//
// Precedence, lowest to highest: built-in defaults, the config file,
// environment variables (including those loaded from .env), then whatever
// the caller applies on top (the CLI applies its flags last).
//
// A config file looks like:
//
//	[fetch]
//	base_url = "https://api.openstreetmap.org/api/0.6"
//	timeout = "60s"
//	only_roads = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[transform]
//	component = "largest"
//	parallel = "keep-min"
//	workers = 4
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/roadnet/pkg/buildinfo"
	"github.com/matzehuels/roadnet/pkg/cache"
	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/graph/transform"
	"github.com/matzehuels/roadnet/pkg/osm"
)

const appName = "roadnet"

// Defaults for settings without an osm, cache or transform counterpart.
const (
	DefaultServerAddr = ":8080"
	DefaultDatabase   = "roadnet"
	DefaultCollection = "runs"
)

// Config holds every roadnet setting.
type Config struct {
	Fetch     FetchConfig     `toml:"fetch"`
	Cache     CacheConfig     `toml:"cache"`
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
	Transform TransformConfig `toml:"transform"`
}

// FetchConfig configures the OSM API client.
type FetchConfig struct {
	BaseURL   string   `toml:"base_url"`
	Timeout   Duration `toml:"timeout"`
	OnlyRoads bool     `toml:"only_roads"`
	UserAgent string   `toml:"user_agent"`
	Attempts  int      `toml:"attempts"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisDB       int    `toml:"redis_db"`
	RedisPassword string `toml:"redis_password"`
}

// StoreConfig configures where the server keeps run results.
// An empty MongoURI keeps runs in memory.
type StoreConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// TransformConfig holds the default transform options.
type TransformConfig struct {
	Component string `toml:"component"`
	Parallel  string `toml:"parallel"`
	Workers   int    `toml:"workers"`
}

// Duration is a time.Duration written as a string ("90s", "2m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			BaseURL:   osm.DefaultBaseURL,
			Timeout:   Duration{osm.DefaultTimeout},
			OnlyRoads: true,
			UserAgent: buildinfo.UserAgent(),
			Attempts:  osm.DefaultAttempts,
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
		},
		Store: StoreConfig{
			Database:   DefaultDatabase,
			Collection: DefaultCollection,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
		Transform: TransformConfig{
			Component: transform.ComponentLargest.String(),
			Parallel:  transform.ParallelOverwrite.String(),
			Workers:   1,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/roadnet/config.toml, falling back
// to the platform's user config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path means DefaultPath, which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		// A missing default file is fine.
		if err := cfg.decodeFile(path); err != nil && (explicit || !os.IsNotExist(err)) {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidFormat, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate rejects unknown enum values and out-of-range numbers.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if _, err := transform.ParseComponentRule(c.Transform.Component); err != nil {
		return fmt.Errorf("transform.component: %w", err)
	}
	if _, err := transform.ParseParallelPolicy(c.Transform.Parallel); err != nil {
		return fmt.Errorf("transform.parallel: %w", err)
	}
	if c.Transform.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "transform.workers must be at least 1")
	}
	if c.Fetch.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "fetch.timeout must not be negative")
	}
	if c.Fetch.Attempts < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "fetch.attempts must not be negative")
	}
	return nil
}

// FetchOptions converts the [fetch] section for osm.NewFetcher.
func (c *Config) FetchOptions() osm.FetchOptions {
	return osm.FetchOptions{
		BaseURL:   c.Fetch.BaseURL,
		Timeout:   c.Fetch.Timeout.Duration,
		UserAgent: c.Fetch.UserAgent,
		Attempts:  c.Fetch.Attempts,
	}
}

// CacheOptions converts the [cache] section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
		RedisDB:   c.Cache.RedisDB,
		Password:  c.Cache.RedisPassword,
	}
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

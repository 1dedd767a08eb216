package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/roadnet/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ROADNET_"

// envSetting maps one ROADNET_* variable onto a field.
type envSetting struct {
	name  string
	apply func(c *Config, v string) error
}

var envSettings = []envSetting{
	{"OSM_URL", func(c *Config, v string) error { c.Fetch.BaseURL = v; return nil }},
	{"FETCH_TIMEOUT", func(c *Config, v string) error { return setDuration(&c.Fetch.Timeout, v) }},
	{"ONLY_ROADS", func(c *Config, v string) error { return setBool(&c.Fetch.OnlyRoads, v) }},
	{"USER_AGENT", func(c *Config, v string) error { c.Fetch.UserAgent = v; return nil }},
	{"FETCH_ATTEMPTS", func(c *Config, v string) error { return setInt(&c.Fetch.Attempts, v) }},
	{"CACHE_BACKEND", func(c *Config, v string) error { c.Cache.Backend = v; return nil }},
	{"CACHE_DIR", func(c *Config, v string) error { c.Cache.Dir = v; return nil }},
	{"REDIS_ADDR", func(c *Config, v string) error { c.Cache.RedisAddr = v; return nil }},
	{"REDIS_DB", func(c *Config, v string) error { return setInt(&c.Cache.RedisDB, v) }},
	{"REDIS_PASSWORD", func(c *Config, v string) error { c.Cache.RedisPassword = v; return nil }},
	{"MONGO_URI", func(c *Config, v string) error { c.Store.MongoURI = v; return nil }},
	{"MONGO_DATABASE", func(c *Config, v string) error { c.Store.Database = v; return nil }},
	{"MONGO_COLLECTION", func(c *Config, v string) error { c.Store.Collection = v; return nil }},
	{"ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"COMPONENT", func(c *Config, v string) error { c.Transform.Component = v; return nil }},
	{"PARALLEL", func(c *Config, v string) error { c.Transform.Parallel = v; return nil }},
	{"WORKERS", func(c *Config, v string) error { return setInt(&c.Transform.Workers, v) }},
}

// ApplyEnv overrides fields from ROADNET_* variables found by lookup.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, s := range envSettings {
		v, ok := lookup(EnvPrefix + s.name)
		if !ok || v == "" {
			continue
		}
		if err := s.apply(c, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, s.name)
		}
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set win. Missing files are
// skipped; with no arguments ".env" in the working directory is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "load env file")
	}
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func setDuration(dst *Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	dst.Duration = d
	return nil
}

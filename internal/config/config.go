// Package config resolves how the cache and its backing store are set up.
//
// Values come from defaults, then an optional YAML file, then PARAMCACHE_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leonardcser/ssm-cache/internal/cache"
	"github.com/leonardcser/ssm-cache/internal/logger"
)

const (
	BackendSSM   = "ssm"
	BackendLocal = "local"

	EnvConfig   = "PARAMCACHE_CONFIG"
	EnvBackend  = "PARAMCACHE_BACKEND"
	EnvSecret   = "PARAMCACHE_SECRET"
	EnvBasePath = "PARAMCACHE_BASE_PATH"
	EnvKeyID    = "PARAMCACHE_KMS_KEY_ID"
	EnvRegion   = "PARAMCACHE_REGION"
	EnvSocket   = "PARAMCACHE_SOCK"
	EnvDB       = "PARAMCACHE_DB"
)

type Config struct {
	// Backend is "ssm" or "local".
	Backend string `yaml:"backend"`
	// Secret selects SecureString parameters. Nil means true.
	Secret   *bool  `yaml:"secret"`
	BasePath string `yaml:"base_path"`
	KeyID    string `yaml:"key_id"`
	Region   string `yaml:"region"`
	// Socket and DB locate the local parameter daemon.
	Socket string `yaml:"socket"`
	DB     string `yaml:"db"`
}

func Default() *Config {
	return &Config{
		Backend:  BackendSSM,
		BasePath: cache.DefaultBasePath,
		Socket:   defaultPath("paramstore.sock"),
		DB:       defaultPath("paramstore.bbolt"),
	}
}

// Load is Read followed by Validate.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read applies the YAML file at path (or PARAMCACHE_CONFIG when path is
// empty) and the environment on top of the defaults. The result is not
// validated, so callers can layer further overrides before Validate.
func Read(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvSecret); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSecret, err)
		}
		c.Secret = &b
	}
	if v := os.Getenv(EnvBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvKeyID); v != "" {
		c.KeyID = v
	}
	if v := os.Getenv(EnvRegion); v != "" {
		c.Region = v
	}
	if v := os.Getenv(EnvSocket); v != "" {
		c.Socket = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.DB = v
	}
	return nil
}

func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendSSM, BackendLocal:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendSSM, BackendLocal)
	}
	if c.Backend == BackendLocal && c.Socket == "" {
		return fmt.Errorf("local backend requires a socket path")
	}
	return nil
}

// SecretEnabled reports the effective Secret setting.
func (c *Config) SecretEnabled() bool {
	return c.Secret == nil || *c.Secret
}

// CacheOptions returns the cache options this configuration describes,
// with cache misses logged at debug level.
func (c *Config) CacheOptions() []cache.Option {
	opts := []cache.Option{
		cache.WithSecret(c.SecretEnabled()),
		cache.WithKeyID(c.KeyID),
		cache.WithLogger(logger.Debugf),
	}
	if c.BasePath != "" {
		opts = append(opts, cache.WithBasePath(c.BasePath))
	}
	return opts
}

func defaultPath(name string) string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "ssm-cache", name)
}

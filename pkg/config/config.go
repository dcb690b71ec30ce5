// Package config loads jsontree's TOML configuration file.
//
// The file is looked up at $JSONTREE_CONFIG, then
// $XDG_CONFIG_HOME/jsontree/config.toml, then ~/.config/jsontree/config.toml.
// A missing file at the default location is not an error; defaults apply.
//
// Example:
//
//	theme = "dark"
//	max_depth = 500
//	focus_delay = "100ms"
//
//	[server]
//	addr = ":8080"
//	allowed_origins = ["http://localhost:5173"]
//	session_ttl = "24h"
//	session_store = "redis"
//
//	[cache]
//	backend = "file"
//	ttl = "168h"
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/jsontree/pkg/cache"
	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/jsonvalue"
	"github.com/matzehuels/jsontree/pkg/schedule"
	"github.com/matzehuels/jsontree/pkg/style"
)

// AppName names the config and cache directories.
const AppName = "jsontree"

// Environment variables.
const (
	EnvConfig = "JSONTREE_CONFIG"
	EnvPort   = "PORT"
)

// Cache backends.
const (
	CacheNull  = cache.BackendNull
	CacheFile  = cache.BackendFile
	CacheRedis = cache.BackendRedis
	CacheMongo = cache.BackendMongo
)

// Session stores.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// =============================================================================
// Types
// =============================================================================

// Duration is a time.Duration written as a string ("250ms", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration.
type Config struct {
	Theme      string   `toml:"theme"`
	MaxDepth   int      `toml:"max_depth"`
	FocusDelay Duration `toml:"focus_delay"`

	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// ServerConfig configures `jsontree serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	SessionTTL     Duration `toml:"session_ttl"`
	SessionStore   string   `toml:"session_store"`
	SessionDir     string   `toml:"session_dir"`
	MaxInputSize   int      `toml:"max_input_size"`
}

// CacheConfig selects the graph cache backend.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// RedisConfig is shared by the Redis cache and session store.
type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// MongoConfig configures the MongoDB cache.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// =============================================================================
// Defaults
// =============================================================================

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Theme:      style.ThemeLight,
		MaxDepth:   jsonvalue.DefaultMaxDepth,
		FocusDelay: Duration{schedule.DefaultDelay},
		Server: ServerConfig{
			Addr:         ":8080",
			SessionTTL:   Duration{24 * time.Hour},
			SessionStore: StoreMemory,
			MaxInputSize: errors.DefaultMaxInputSize,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: AppName,
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   AppName,
			Collection: "graph_cache",
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the configuration at path, or at DefaultPath when path is empty.
// Unset keys keep their defaults; PORT overrides the server port.
// An explicit path that does not exist is a FILE_NOT_FOUND error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			cfg.ApplyEnv()
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		if keys := md.Undecoded(); len(keys) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, joinKeys(keys))
		}
	case stderrors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults
	case stderrors.Is(err, fs.ErrNotExist):
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
	default:
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func joinKeys(keys []toml.Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if port := os.Getenv(EnvPort); port != "" {
		c.Server.Addr = ":" + port
	}
}

// Validate reports the first invalid setting as an INVALID_INPUT error.
func (c Config) Validate() error {
	if _, err := style.ThemeByName(c.Theme); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_depth must be >= 0")
	}
	if c.FocusDelay.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "focus_delay must be >= 0")
	}
	if !slices.Contains([]string{CacheNull, CacheFile, CacheRedis, CacheMongo}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend %q (want null, file, redis or mongo)", c.Cache.Backend)
	}
	if !slices.Contains([]string{StoreMemory, StoreFile, StoreRedis}, c.Server.SessionStore) {
		return errors.New(errors.ErrCodeInvalidInput, "server.session_store %q (want memory, file or redis)", c.Server.SessionStore)
	}
	if c.Server.SessionTTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.session_ttl must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server.addr is required")
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/jsontree/).
// A configured cache.dir wins.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultCacheDir returns $XDG_CACHE_HOME/jsontree or ~/.cache/jsontree.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// CacheOptions converts the [cache] section for cache.Open.
func (c Config) CacheOptions() (cache.Options, error) {
	dir, err := c.CacheDir()
	if err != nil && c.Cache.Backend == CacheFile {
		return cache.Options{}, fmt.Errorf("cache dir: %w", err)
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis:   c.RedisOptions(),
		Mongo: cache.MongoOptions{
			URI:        c.Mongo.URI,
			Database:   c.Mongo.Database,
			Collection: c.Mongo.Collection,
		},
	}, nil
}

// RedisOptions converts the [redis] section.
func (c Config) RedisOptions() cache.RedisOptions {
	return cache.RedisOptions{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB}
}

// SessionDir returns where the file session store keeps sessions.
func (c Config) SessionDir() (string, error) {
	if c.Server.SessionDir != "" {
		return c.Server.SessionDir, nil
	}
	dir, err := c.CacheDir()
	if err != nil {
		return "", fmt.Errorf("session dir: %w", err)
	}
	return filepath.Join(dir, "sessions"), nil
}

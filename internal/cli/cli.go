package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsontree/pkg/cache"
	"github.com/matzehuels/jsontree/pkg/config"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

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
	Config config.Config

	configPath string
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

// loadConfig reads the --config file (or the default location).
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured graph cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	gc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(gc, c.keyer(), c.Logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := c.Config.CacheOptions()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	gc, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	c.Logger.Debug("cache ready", "backend", opts.Backend)
	return gc, nil
}

func (c *CLI) keyer() cache.Keyer {
	if p := c.Config.Redis.KeyPrefix; p != "" {
		return cache.NewScopedKeyer(nil, p+":")
	}
	return cache.NewDefaultKeyer()
}

// newStore opens the session store named by server.session_store.
func (c *CLI) newStore(ctx context.Context) (session.Store, error) {
	switch c.Config.Server.SessionStore {
	case config.StoreFile:
		dir, err := c.Config.SessionDir()
		if err != nil {
			return nil, err
		}
		return session.NewFileStore(dir)
	case config.StoreRedis:
		return session.DialRedisStore(ctx, c.Config.RedisOptions(), c.keyer())
	}
	return session.NewMemoryStore(), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/jsontree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// graphCacheDir is where the file cache keeps graphs: cache.dir when
// configured, cacheDir otherwise.
func (c *CLI) graphCacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions applies configured defaults to options from flags.
func (c *CLI) pipelineOptions(theme string, maxDepth int, refresh bool) pipeline.Options {
	if theme == "" {
		theme = c.Config.Theme
	}
	if maxDepth == 0 {
		maxDepth = c.Config.MaxDepth
	}
	return pipeline.Options{
		Theme:        theme,
		MaxDepth:     maxDepth,
		Refresh:      refresh,
		MaxInputSize: c.Config.Server.MaxInputSize,
		Logger:       c.Logger,
	}
}

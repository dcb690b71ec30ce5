package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsontree/pkg/cache"
	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/jsonvalue"
	"github.com/matzehuels/jsontree/pkg/layout"
	"github.com/matzehuels/jsontree/pkg/observability"
	"github.com/matzehuels/jsontree/pkg/search"
	"github.com/matzehuels/jsontree/pkg/style"
	"github.com/matzehuels/jsontree/pkg/tree"
)

// TTLGraph is how long compiled graphs stay cached.
const TTLGraph = 7 * 24 * time.Hour

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and sessions share one Runner.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached graphs. Zero means TTLGraph.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    TTLGraph,
	}
}

// Generate turns JSON text into a styled graph, consulting the cache first
// unless opts.Refresh is set. Parse failures are returned unwrapped so that
// callers can read their error code and message.
func (r *Runner) Generate(ctx context.Context, text string, opts Options) (result *Result, err error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnGenerateStart(ctx, len(text))
	defer func() {
		n := 0
		if result != nil {
			n = result.Stats.NodeCount
		}
		observability.Pipeline().OnGenerateComplete(ctx, n, time.Since(start), err)
	}()

	if opts.MaxInputSize > 0 {
		if err := errors.ValidateInputSize(len(text), opts.MaxInputSize); err != nil {
			return nil, err
		}
	}

	hash := cache.Hash([]byte(text))
	key := r.Keyer.GraphKey(hash, opts.GraphKeyOpts())

	if !opts.Refresh {
		if g, ok := r.lookup(ctx, key); ok {
			opts.Logger.Debug("graph cache hit", "hash", short(hash))
			return &Result{
				Graph:    g,
				Hash:     hash,
				Theme:    opts.ResolvedTheme(),
				Stats:    statsOf(g),
				CacheHit: true,
			}, nil
		}
	}

	result, err = generate(text, opts)
	if err != nil {
		return nil, err
	}
	result.Hash = hash

	opts.Logger.Debug("generated graph",
		"nodes", result.Stats.NodeCount,
		"depth", result.Stats.Depth,
		"parse", result.Stats.ParseTime,
		"build", result.Stats.BuildTime,
		"layout", result.Stats.LayoutTime)

	r.store(ctx, key, result.Graph, opts.Logger)
	return result, nil
}

// Search runs a path search over g and reports it to the pipeline hooks.
func (r *Runner) Search(ctx context.Context, g graph.Graph, query string, theme style.Theme) (search.Result, error) {
	start := time.Now()
	res, err := search.Search(g.Nodes, query, theme)
	observability.Pipeline().OnSearch(ctx, query, res.Outcome.String(), time.Since(start))
	return res, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, key string) (graph.Graph, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return graph.Graph{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, cache.PrefixGraph)
		return graph.Graph{}, false
	}
	g, err := graph.Unmarshal(data)
	if err != nil || g.Empty() {
		// Unreadable entries are recomputed and overwritten.
		r.Logger.Debug("discarding cached graph", "error", err)
		observability.Cache().OnCacheMiss(ctx, cache.PrefixGraph)
		return graph.Graph{}, false
	}
	observability.Cache().OnCacheHit(ctx, cache.PrefixGraph)
	return g, true
}

func (r *Runner) store(ctx context.Context, key string, g graph.Graph, logger *log.Logger) {
	data, err := graph.Marshal(g)
	if err != nil {
		logger.Warn("encode graph for cache", "error", err)
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = TTLGraph
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.PrefixGraph, len(data))
}

// Generate runs the pipeline without a cache.
func Generate(text string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.MaxInputSize > 0 {
		if err := errors.ValidateInputSize(len(text), opts.MaxInputSize); err != nil {
			return nil, err
		}
	}
	result, err := generate(text, opts)
	if err != nil {
		return nil, err
	}
	result.Hash = cache.Hash([]byte(text))
	return result, nil
}

func generate(text string, opts Options) (*Result, error) {
	result := &Result{Theme: opts.ResolvedTheme()}

	parseStart := time.Now()
	v, err := jsonvalue.ParseWithOptions([]byte(text), jsonvalue.Options{MaxDepth: opts.MaxDepth})
	if err != nil {
		return nil, err
	}
	result.Stats.ParseTime = time.Since(parseStart)

	buildStart := time.Now()
	g := tree.Build(v)
	result.Stats.BuildTime = time.Since(buildStart)

	layoutStart := time.Now()
	layout.ApplyGraph(&g)
	result.Stats.LayoutTime = time.Since(layoutStart)

	style.Apply(&g, result.Theme)
	if err := g.Validate(); err != nil {
		opts.Logger.Warn("built graph failed validation", "error", err)
	}

	result.Graph = g
	s := statsOf(g)
	result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Depth = s.NodeCount, s.EdgeCount, s.Depth
	return result, nil
}

func statsOf(g graph.Graph) Stats {
	return Stats{
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
		Depth:     layout.ComputeLevels(g.Nodes, g.Edges).Depth(),
	}
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// Package pipeline provides the core JSON-to-graph pipeline for jsontree.
//
// This package implements the complete parse → build → layout → style
// pipeline used by the CLI, the HTTP server and sessions. Centralizing it
// keeps every entry point producing byte-identical graphs for the same input.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: decode the text into an ordered [jsonvalue.Value]
//  2. Build: flatten the value into nodes and edges ([tree.Build])
//  3. Layout: assign level-based positions ([layout.ApplyGraph])
//  4. Style: color nodes and edges for a theme ([style.Apply])
//
// # Usage
//
// Create a Runner and generate a graph:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Generate(ctx, input, pipeline.Options{Theme: "dark"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.NodeCount)
//
// [Generate] runs the same stages without a cache.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsontree/pkg/cache"
	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/jsonvalue"
	"github.com/matzehuels/jsontree/pkg/style"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Sessions
// =============================================================================

const (
	// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is zero.
	DefaultMaxDepth = jsonvalue.DefaultMaxDepth

	// DefaultTheme is the theme used when Options.Theme is empty.
	DefaultTheme = style.ThemeLight
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Theme    string `json:"theme,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"` // bypass the cache read, still write

	// MaxInputSize bounds the input in bytes. Zero means no limit.
	MaxInputSize int `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	theme     style.Theme
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the styled, positioned graph.
	Graph graph.Graph

	// Hash is the content hash of the input text.
	Hash string

	// Theme is the theme the graph was styled with.
	Theme style.Theme

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether Graph came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Depth      int
	ParseTime  time.Duration
	BuildTime  time.Duration
	LayoutTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	theme, err := style.ThemeByName(o.Theme)
	if err != nil {
		return err
	}
	o.theme = theme
	o.Theme = theme.Name

	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxInputSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max input size must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResolvedTheme returns the theme selected by Theme. It is only meaningful
// after ValidateAndSetDefaults.
func (o *Options) ResolvedTheme() style.Theme {
	if o.theme.IsZero() {
		return style.Light
	}
	return o.theme
}

// GraphKeyOpts returns cache key options for the compiled graph.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Theme:    o.Theme,
		MaxDepth: o.MaxDepth,
	}
}

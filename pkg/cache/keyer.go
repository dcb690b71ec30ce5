package cache

import "strconv"

// Key namespaces.
const (
	PrefixGraph   = "graph"
	PrefixSession = "session"
)

// GraphKeyOpts are the generation options that change a cached graph.
type GraphKeyOpts struct {
	Theme    string `json:"theme"`
	MaxDepth int    `json:"max_depth"`
}

// Keyer builds cache keys.
type Keyer interface {
	// GraphKey returns the key of the graph compiled from an input with the
	// given content hash.
	GraphKey(inputHash string, opts GraphKeyOpts) string

	// SessionKey returns the key under which a session is stored.
	SessionKey(id string) string
}

// DefaultKeyer produces "graph:<input>:<theme>:<depth>" and "session:<id>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey appends the options to the input hash. An empty theme is
// written as "-" so keys keep four segments.
func (DefaultKeyer) GraphKey(inputHash string, opts GraphKeyOpts) string {
	theme := opts.Theme
	if theme == "" {
		theme = "-"
	}
	return PrefixGraph + ":" + inputHash + ":" + theme + ":" + strconv.Itoa(opts.MaxDepth)
}

// SessionKey returns "session:<id>".
func (DefaultKeyer) SessionKey(id string) string {
	return PrefixSession + ":" + id
}

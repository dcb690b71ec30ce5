// Package pkg provides the core libraries for jsontree JSON visualization.
//
// # Overview
//
// jsontree turns a JSON document into a tree of nodes and edges, places every
// node on a grid, and lets callers find a node by its JSON path. The same
// pipeline backs the command line, the terminal viewer and the HTTP API.
//
// # Architecture
//
// The data flow through jsontree:
//
//	JSON text
//	    ↓
//	[jsonvalue] package (order-preserving parse)
//	    ↓
//	[tree] package (pre-order nodes, parent-child edges)
//	    ↓
//	[layout] package (x by sibling index, y by depth)
//	    ↓
//	[style] package (theme colors)
//	    ↓
//	[search] package (path lookup and highlight)
//	    ↓
//	JSON/YAML/DOT output
//
// # Quick Start
//
//	res, err := pipeline.Generate(`{"user": {"name": "Ada"}}`, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	found, _ := search.Search(res.Graph.Nodes, "$.user.name", res.Theme)
//	fmt.Println(found.Message)
//
// # Main Packages
//
// [pipeline] - Parse, build, lay out and style a document in one call. The
// [pipeline.Runner] adds graph caching and is shared by every entry point.
//
// [graph] - Node and edge types plus their JSON and YAML encodings.
//
// [session] - One document being edited: its text, graph, search state and
// theme, with debounced focus after a match. Sessions persist through a
// memory, file or Redis store.
//
// [cache] - Compiled graphs keyed by a hash of their input. File, Redis,
// MongoDB and null backends.
//
// [render/nodelink] - Graphviz DOT export for external renderers.
//
// Supporting packages: [config] (TOML settings), [errors] (coded errors),
// [observability] (pipeline hooks), [schedule] (debounced actions),
// [watcher] (file change notification), [httputil] (JSON over HTTP) and
// [buildinfo] (version stamping).
//
// [jsonvalue]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/jsonvalue
// [tree]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/tree
// [layout]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/layout
// [style]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/style
// [search]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/search
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/pipeline#Runner
// [graph]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/graph
// [session]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/render/nodelink
// [config]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/observability
// [schedule]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/schedule
// [watcher]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/watcher
// [httputil]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/jsontree/pkg/buildinfo
package pkg

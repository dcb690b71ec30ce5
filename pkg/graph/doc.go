// Package graph provides the node/edge types produced from a JSON document.
//
// This package defines the canonical wire format for jsontree's graph data,
// used for CLI output files, API responses, caching and session storage.
//
// # Architecture
//
// The package sits between the compiler stages and the outside world:
//
//   - pkg/jsonvalue: parsed, order-preserving JSON (input)
//   - pkg/tree: builds a [Graph] from a value (ids, labels, paths)
//   - pkg/layout: fills in [Node.Position]
//   - pkg/style, pkg/search: fill in [Node.Style] and [Node.Highlighted]
//   - [Graph]: serialization types (this package)
//
// # Core Types
//
//   - [Graph]: ordered node and edge lists
//   - [Node]: one JSON value with its id, label, path and display state
//   - [Edge]: a parent/child relation between two nodes
//   - [Position], [NodeStyle], [EdgeStyle]: display attributes
//
// # Identifiers and Paths
//
// The root node always has id and label "root" and path "$". A child's id is
// its parent's id, a dash and its key (object member name or array index):
//
//	root-user-items-0-name
//
// Paths use "." before object keys and "[i]" for array indices:
//
//	$.user.items[0].name
//
// Dashes and backslashes inside object keys are backslash-escaped in ids, so
// ids stay unique. Paths are not escaped; keys containing "." or "[" can
// make a path ambiguous.
//
// # Serialization
//
//	{
//	  "nodes": [{"id": "root", "label": "root", "kind": "object", "path": "$", ...}],
//	  "edges": [{"id": "e-root-root-user", "source": "root", "target": "root-user"}]
//	}
//
// Common operations:
//
//	graph.WriteFile(g, "graph.json")   // JSON, indented
//	graph.WriteYAML(g, os.Stdout)      // YAML, member order kept
//	g, _ := graph.ReadFile("graph.json")
//
// # Concurrency
//
// A Graph is a plain value. Use [Graph.Clone] before handing a graph to code
// that mutates display state while other goroutines still read it.
package graph

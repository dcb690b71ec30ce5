package graph

import (
	"github.com/matzehuels/jsontree/pkg/jsonvalue"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// RootID is the id (and label) of the node representing the whole document.
const RootID = "root"

// RootPath is the path of the root node.
const RootPath = "$"

// Kind classifies a node for styling.
type Kind string

// Node kinds. Strings, numbers, booleans and null are all primitives.
const (
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindPrimitive Kind = "primitive"
)

// KindOf maps a JSON value to its node kind.
func KindOf(v jsonvalue.Value) Kind {
	switch v.Kind() {
	case jsonvalue.KindObject:
		return KindObject
	case jsonvalue.KindArray:
		return KindArray
	default:
		return KindPrimitive
	}
}

// Valid reports whether k is one of the three node kinds.
func (k Kind) Valid() bool {
	return k == KindObject || k == KindArray || k == KindPrimitive
}

// EdgeID returns the id of the edge from source to target.
func EdgeID(source, target string) string {
	return "e-" + source + "-" + target
}

// =============================================================================
// Display Attributes
// =============================================================================

// Position is a node's layout coordinate. Y grows downward.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeStyle is the display style of a node.
type NodeStyle struct {
	Background string `json:"background" yaml:"background"`
	Color      string `json:"color" yaml:"color"`
	Border     string `json:"border" yaml:"border"`
}

// EdgeStyle is the display style of an edge.
type EdgeStyle struct {
	Stroke string `json:"stroke,omitempty" yaml:"stroke,omitempty"`
}

// =============================================================================
// Node / Edge
// =============================================================================

// Node is one JSON value in the graph.
type Node struct {
	ID          string          `json:"id" yaml:"id"`
	Label       string          `json:"label" yaml:"label"`
	Value       jsonvalue.Value `json:"value" yaml:"value"`
	Kind        Kind            `json:"kind" yaml:"kind"`
	Path        string          `json:"path" yaml:"path"`
	Position    Position        `json:"position" yaml:"position"`
	Highlighted bool            `json:"highlighted" yaml:"highlighted"`
	Style       NodeStyle       `json:"style" yaml:"style"`
}

// IsRoot reports whether n is the document root.
func (n *Node) IsRoot() bool { return n.ID == RootID && n.Path == RootPath }

// Edge connects a parent node (Source) to a child node (Target).
type Edge struct {
	ID     string    `json:"id" yaml:"id"`
	Source string    `json:"source" yaml:"source"`
	Target string    `json:"target" yaml:"target"`
	Style  EdgeStyle `json:"style" yaml:"style"`
}

// NewEdge returns an edge with its id derived from the endpoints.
func NewEdge(source, target string) Edge {
	return Edge{ID: EdgeID(source, target), Source: source, Target: target}
}

// Package tree compiles a parsed JSON document into a node/edge graph.
//
// Every JSON value becomes one [graph.Node]; every parent/child relation
// becomes one [graph.Edge]. Nodes are emitted in pre-order (a parent before
// its children, siblings in document order) and each edge is emitted at the
// position of its target node, so Nodes[i+1] is the target of Edges[i].
//
// # Naming
//
// The root has id "root", label "root" and path "$". For a child reached by
// key k from parent p:
//
//	id:    p.id + "-" + esc(k)
//	label: "[k]" for array elements, k for object members
//	path:  p.path + "[k]" for array elements, p.path + "." + k otherwise
//
// Whether a child is an array element is decided by the parent's kind and
// carried explicitly with each pending child; it is never inferred from the
// id text. Object keys have "\" and "-" escaped as "\\" and "\-", so "a-b"
// under root becomes "root-a\-b" while "b" under "a" stays "root-a-b". Keys
// without either character, and all array indices, are used unchanged.
//
// # Depth
//
// Build walks the document with an explicit stack. Document depth is bounded
// at parse time by jsonvalue.Options.MaxDepth, not here.
package tree

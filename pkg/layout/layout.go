// Package layout assigns coordinates to a built graph.
//
// The layout is layered: y is fixed by depth and each depth's nodes are
// spread horizontally, centered on x = 0, in traversal order. It does not
// keep subtrees together, so nodes from unrelated branches share a row in
// pre-order and a deep branch may sit under a different parent's column.
package layout

import (
	"github.com/matzehuels/jsontree/pkg/graph"
)

// Spacing between neighbouring nodes in a level and between levels.
const (
	LevelWidth  = 180.0
	LevelHeight = 100.0
)

// Levels maps a depth (root = 0) to the ids at that depth in traversal order.
type Levels map[int][]string

// Depth returns the number of levels.
func (l Levels) Depth() int { return len(l) }

// Width returns the size of the most populated level.
func (l Levels) Width() int {
	w := 0
	for _, ids := range l {
		w = max(w, len(ids))
	}
	return w
}

// Root returns the id of the first node that is never an edge target.
func Root(nodes []graph.Node, edges []graph.Edge) (string, bool) {
	targets := make(map[string]bool, len(edges))
	for _, e := range edges {
		targets[e.Target] = true
	}
	for _, n := range nodes {
		if !targets[n.ID] {
			return n.ID, true
		}
	}
	return "", false
}

// ComputeLevels walks the graph from its root in pre-order, children in edge
// order, and records the ids seen at each depth. Each id is visited once, so
// a malformed edge list with cycles still terminates. It returns nil when no
// root exists.
func ComputeLevels(nodes []graph.Node, edges []graph.Edge) Levels {
	root, ok := Root(nodes, edges)
	if !ok {
		return nil
	}

	children := make(map[string][]string, len(nodes))
	for _, e := range edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}

	type item struct {
		id    string
		depth int
	}
	levels := Levels{}
	visited := map[string]bool{}
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[it.id] {
			continue
		}
		visited[it.id] = true
		levels[it.depth] = append(levels[it.depth], it.id)

		kids := children[it.id]
		for i := len(kids) - 1; i >= 0; i-- {
			if !visited[kids[i]] {
				stack = append(stack, item{kids[i], it.depth + 1})
			}
		}
	}
	return levels
}

// Apply returns a copy of nodes with positions assigned. For a level of k
// nodes the i-th node is placed at x = (i - (k-1)/2) * LevelWidth and
// y = depth * LevelHeight. Nodes unreachable from the root keep their
// current position; with no root the nodes are returned unchanged.
func Apply(nodes []graph.Node, edges []graph.Edge) []graph.Node {
	out := append([]graph.Node(nil), nodes...)
	levels := ComputeLevels(nodes, edges)
	if levels == nil {
		return out
	}

	pos := make(map[string]graph.Position, len(nodes))
	for depth, ids := range levels {
		k := float64(len(ids))
		for i, id := range ids {
			pos[id] = graph.Position{
				X: (float64(i) - (k-1)/2) * LevelWidth,
				Y: float64(depth) * LevelHeight,
			}
		}
	}
	for i := range out {
		if p, ok := pos[out[i].ID]; ok {
			out[i].Position = p
		}
	}
	return out
}

// ApplyGraph lays out g in place.
func ApplyGraph(g *graph.Graph) {
	g.Nodes = Apply(g.Nodes, g.Edges)
}

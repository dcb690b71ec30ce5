package tree

import (
	"strconv"
	"strings"

	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/jsonvalue"
)

// idEscaper protects the id separator inside object keys.
var idEscaper = strings.NewReplacer(`\`, `\\`, "-", `\-`)

// frame is a value waiting to be emitted.
type frame struct {
	value    jsonvalue.Value
	key      string
	parentID string
	parent   string // parent path
	inArray  bool
	root     bool
}

// Build returns the graph of v. Positions are zero and styles empty;
// see pkg/layout and pkg/style.
func Build(v jsonvalue.Value) graph.Graph {
	n := v.Count()
	g := graph.Graph{
		Nodes: make([]graph.Node, 0, n),
		Edges: make([]graph.Edge, 0, n-1),
	}

	stack := []frame{{value: v, root: true}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := f.node()
		g.Nodes = append(g.Nodes, node)
		if !f.root {
			g.Edges = append(g.Edges, graph.NewEdge(f.parentID, node.ID))
		}

		// Children are pushed last-first so they pop in document order.
		switch f.value.Kind() {
		case jsonvalue.KindObject:
			members := f.value.Members()
			for i := len(members) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					value:    members[i].Value,
					key:      members[i].Key,
					parentID: node.ID,
					parent:   node.Path,
				})
			}
		case jsonvalue.KindArray:
			items := f.value.Items()
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					value:    items[i],
					key:      strconv.Itoa(i),
					parentID: node.ID,
					parent:   node.Path,
					inArray:  true,
				})
			}
		}
	}
	return g
}

func (f frame) node() graph.Node {
	if f.root {
		return graph.Node{
			ID:    graph.RootID,
			Label: graph.RootID,
			Value: f.value,
			Kind:  graph.KindOf(f.value),
			Path:  graph.RootPath,
		}
	}

	label, path, id := f.key, f.parent+"."+f.key, idEscaper.Replace(f.key)
	if f.inArray {
		label = "[" + f.key + "]"
		path = f.parent + label
		id = f.key
	}
	return graph.Node{
		ID:    f.parentID + "-" + id,
		Label: label,
		Value: f.value,
		Kind:  graph.KindOf(f.value),
		Path:  path,
	}
}

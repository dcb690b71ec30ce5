package tree_test

import (
	"fmt"

	"github.com/matzehuels/jsontree/pkg/jsonvalue"
	"github.com/matzehuels/jsontree/pkg/tree"
)

func ExampleBuild() {
	v, _ := jsonvalue.ParseString(`{"items":[{"name":"x"}]}`)
	g := tree.Build(v)

	for _, n := range g.Nodes {
		fmt.Printf("%-18s %-6s %-16s %s\n", n.ID, n.Label, n.Path, n.Kind)
	}
	fmt.Println(len(g.Edges), "edges")
	// Output:
	// root               root   $                object
	// root-items         items  $.items          array
	// root-items-0       [0]    $.items[0]       object
	// root-items-0-name  name   $.items[0].name  primitive
	// 3 edges
}

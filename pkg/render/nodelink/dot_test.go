package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/search"
	"github.com/matzehuels/jsontree/pkg/style"
)

func sampleGraph(t *testing.T, theme string) pipeline.Result {
	t.Helper()
	res, err := pipeline.Generate(`{"a":1,"list":[true,null]}`, pipeline.Options{Theme: theme})
	if err != nil {
		t.Fatal(err)
	}
	return *res
}

func TestToDOT(t *testing.T) {
	res := sampleGraph(t, "light")
	dot := ToDOT(res.Graph, style.Light, Options{})

	for _, want := range []string{
		"digraph G {",
		`bgcolor="#f9fafb"`,
		`edge [color="#b1b1b7"`,
		`"root" [label="root", fillcolor="#6366f1", fontcolor="#ffffff", color="#fff", penwidth=2]`,
		`"root-list" [label="list", fillcolor="#10b981"`,
		`"root-list-0" [label="[0]", fillcolor="#f59e0b"`,
		`"root" -> "root-a";`,
		`"root-list" -> "root-list-1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned DOT should not carry positions")
	}
}

func TestToDOTHighlightAndTheme(t *testing.T) {
	res := sampleGraph(t, "dark")
	sr, err := search.Search(res.Graph.Nodes, "$.list[1]", style.Dark)
	if err != nil {
		t.Fatal(err)
	}
	res.Graph.Nodes = sr.Nodes

	dot := ToDOT(res.Graph, style.Dark, Options{Detailed: true, Pinned: true})
	for _, want := range []string{
		`bgcolor="#111827"`,
		`edge [color="#666"`,
		`"root-list-1" [label="[1]\n$.list[1]\nnull", fillcolor="#ef4444", fontcolor="#ffffff", color="#dc2626", penwidth=3, tooltip="match"`,
		`pos="0,0!"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestParseBorder(t *testing.T) {
	w, c := parseBorder("3px solid #dc2626")
	if w != 3 || c != "#dc2626" {
		t.Errorf("parseBorder() = %d, %q", w, c)
	}
	if w, c := parseBorder(""); w != 0 || c != "" {
		t.Errorf("parseBorder(\"\") = %d, %q", w, c)
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	res := sampleGraph(t, "light")

	dot := ToDOT(res.Graph, style.Light, Options{Detailed: true, Pinned: true})
	if err := Check(ctx, dot, res.Graph); err != nil {
		t.Fatalf("Check(valid DOT) = %v", err)
	}

	short := res.Graph
	short.Nodes = short.Nodes[:len(short.Nodes)-1]
	if err := Check(ctx, dot, short); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("Check(count mismatch) = %v, want INTERNAL_ERROR", err)
	}

	if err := Check(ctx, "digraph G { a -> ", res.Graph); err == nil {
		t.Error("Check(truncated DOT) should fail")
	}
}

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
	"github.com/matzehuels/jsontree/pkg/style"
)

// DefaultPreviewWidth bounds value previews in detailed labels.
const DefaultPreviewWidth = 40

// pointsPerInch converts layout units (points) to the inches Graphviz uses.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node path and a value preview to each label.
	// When false, only the label is shown.
	Detailed bool

	// Pinned writes each node's computed position as a fixed pos attribute,
	// for renderers that draw with the neato engine.
	Pinned bool
}

// ToDOT converts a graph to Graphviz DOT format using the colors already
// stored on its nodes and edges, and the theme's canvas color.
func ToDOT(g graph.Graph, theme style.Theme, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", theme.Palette.Canvas)
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.6];\n", theme.Palette.EdgeStroke)
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), theme)
		if opts.Pinned {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"",
				fmtFloat(n.Position.X/pointsPerInch), fmtFloat(-n.Position.Y/pointsPerInch)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if e.Style.Stroke != "" && e.Style.Stroke != theme.Palette.EdgeStroke {
			fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.Source, e.Target, e.Style.Stroke)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return n.Label + "\n" + n.Path + "\n" + n.Value.Preview(DefaultPreviewWidth)
}

func fmtAttrs(n graph.Node, label string, theme style.Theme) []string {
	s := n.Style
	if s.Background == "" {
		s = style.NodeStyle(n.Kind, n.Highlighted, theme)
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", s.Background),
		fmt.Sprintf("fontcolor=%q", s.Color),
	}
	width, color := parseBorder(s.Border)
	if color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", color))
	}
	if width > 0 {
		attrs = append(attrs, "penwidth="+strconv.Itoa(width))
	}
	if n.Highlighted {
		attrs = append(attrs, "tooltip=\"match\"")
	}
	return attrs
}

// parseBorder reads a CSS shorthand such as "2px solid #fff".
func parseBorder(border string) (width int, color string) {
	for _, f := range strings.Fields(border) {
		switch {
		case strings.HasSuffix(f, "px"):
			width, _ = strconv.Atoi(strings.TrimSuffix(f, "px"))
		case strings.HasPrefix(f, "#"):
			color = f
		}
	}
	return width, color
}

func fmtFloat(f float64) string {
	if f == 0 {
		f = 0 // no "-0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Check parses dot with Graphviz and verifies that it declares one node per
// graph node and one edge per graph edge. It catches quoting mistakes in
// labels before the document reaches an external renderer.
func Check(ctx context.Context, dot string, g graph.Graph) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "generated DOT does not parse")
	}
	defer parsed.Close()

	nodes, err := parsed.NodeNum()
	if err != nil {
		return fmt.Errorf("count nodes: %w", err)
	}
	edges, err := parsed.EdgeNum()
	if err != nil {
		return fmt.Errorf("count edges: %w", err)
	}
	if nodes != len(g.Nodes) || edges != len(g.Edges) {
		return errors.New(errors.ErrCodeInternal,
			"generated DOT has %d nodes and %d edges, want %d and %d", nodes, edges, len(g.Nodes), len(g.Edges))
	}
	return nil
}

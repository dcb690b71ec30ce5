// Package style assigns display colors to graph nodes and edges.
//
// A [Theme] is passed explicitly to every call that produces styles; there
// is no process-wide "current theme". Node colors are shared by both themes;
// the themes differ in edge stroke and canvas colors.
package style

import (
	"strings"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/graph"
)

// Theme names.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Palette holds every color a renderer needs.
type Palette struct {
	Object      string `json:"object"`
	Array       string `json:"array"`
	Primitive   string `json:"primitive"`
	Highlighted string `json:"highlighted"`
	Text        string `json:"text"`

	Border          string `json:"border"`
	HighlightBorder string `json:"highlight_border"`

	EdgeStroke string `json:"edge_stroke"`
	Canvas     string `json:"canvas"`
	Grid       string `json:"grid"`
}

// Theme is a named palette.
type Theme struct {
	Name    string  `json:"name"`
	Palette Palette `json:"palette"`
}

var basePalette = Palette{
	Object:          "#6366f1",
	Array:           "#10b981",
	Primitive:       "#f59e0b",
	Highlighted:     "#ef4444",
	Text:            "#ffffff",
	Border:          "2px solid #fff",
	HighlightBorder: "3px solid #dc2626",
}

// Light is the default theme.
var Light = Theme{Name: ThemeLight, Palette: withCanvas(basePalette, "#b1b1b7", "#f9fafb", "#aaa")}

// Dark is the dark theme.
var Dark = Theme{Name: ThemeDark, Palette: withCanvas(basePalette, "#666", "#111827", "#444")}

func withCanvas(p Palette, stroke, canvas, grid string) Palette {
	p.EdgeStroke = stroke
	p.Canvas = canvas
	p.Grid = grid
	return p
}

// Themes lists the built-in themes.
func Themes() []Theme { return []Theme{Light, Dark} }

// ThemeByName resolves a theme name case-insensitively. An empty name is Light.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ThemeLight:
		return Light, nil
	case ThemeDark:
		return Dark, nil
	}
	return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (want light or dark)", name)
}

// Toggle returns the other built-in theme.
func (t Theme) Toggle() Theme {
	if t.Name == ThemeDark {
		return Light
	}
	return Dark
}

// IsZero reports whether t is the zero Theme.
func (t Theme) IsZero() bool { return t.Name == "" }

// KindColor returns the background color for a node kind.
func (t Theme) KindColor(k graph.Kind) string {
	switch k {
	case graph.KindObject:
		return t.Palette.Object
	case graph.KindArray:
		return t.Palette.Array
	default:
		return t.Palette.Primitive
	}
}

// NodeStyle returns the style of a node of kind k.
func NodeStyle(k graph.Kind, highlighted bool, t Theme) graph.NodeStyle {
	if highlighted {
		return graph.NodeStyle{
			Background: t.Palette.Highlighted,
			Color:      t.Palette.Text,
			Border:     t.Palette.HighlightBorder,
		}
	}
	return graph.NodeStyle{
		Background: t.KindColor(k),
		Color:      t.Palette.Text,
		Border:     t.Palette.Border,
	}
}

// EdgeStyle returns the style shared by every edge.
func EdgeStyle(t Theme) graph.EdgeStyle {
	return graph.EdgeStyle{Stroke: t.Palette.EdgeStroke}
}

// Apply restyles every node from its kind and highlight flag, and every edge.
// It mutates g in place.
func Apply(g *graph.Graph, t Theme) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.Style = NodeStyle(n.Kind, n.Highlighted, t)
	}
	es := EdgeStyle(t)
	for i := range g.Edges {
		g.Edges[i].Style = es
	}
}

// LegendEntry is one row of the color legend.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend returns the color key shown next to a rendered graph.
func Legend(t Theme) []LegendEntry {
	return []LegendEntry{
		{Label: "Objects", Color: t.Palette.Object},
		{Label: "Arrays", Color: t.Palette.Array},
		{Label: "Primitives", Color: t.Palette.Primitive},
		{Label: "Highlighted", Color: t.Palette.Highlighted},
	}
}

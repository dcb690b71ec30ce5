// Package nodelink exports compiled JSON graphs as Graphviz DOT.
//
// # Overview
//
// Each JSON value becomes a rounded box colored by kind (or by the highlight
// color) and each parent/child relation becomes an arrow. The DOT text is
// data for an external Graphviz-based renderer; this package does not draw.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, style.Light, nodelink.Options{})
//	if err := nodelink.Check(ctx, dot, g); err != nil {
//	    return err
//	}
//
// With Options.Pinned, nodes carry the positions computed by pkg/layout as
// fixed pos attributes, so a neato-based renderer keeps the tree shape.
//
// # Dependencies
//
// [Check] parses the output with [github.com/goccy/go-graphviz].
package nodelink

// Package nodelink renders a referral tree as a Graphviz node-link diagram,
// an alternative to the card grid when the tree is too wide to read.
//
// Convert a layout to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes are pinned to their grid rank so the diagram reads top-to-bottom in
// the same level order as the grid. Active members are drawn filled.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink

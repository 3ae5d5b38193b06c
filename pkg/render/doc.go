// Package render turns a laid-out referral tree into files.
//
// # Overview
//
// Rendering is split by output family:
//
//   - [sink]: static SVG, the interactive HTML page and layout JSON
//   - [nodelink]: a Graphviz node-link diagram of the same tree
//   - [browser]: PNG screenshots of the HTML page through headless Chrome
//
// This package itself holds the SVG conversion helpers shared by the sinks.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg):
//
//	svg := sink.RenderSVG(layout, sink.WithMetrics(m))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
package render

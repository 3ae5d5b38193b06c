// Package sink writes a grid layout as SVG, as the interactive HTML page, or
// as layout JSON.
//
// All sinks measure the layout with the same [measure.Metrics] and draw
// connectors with the same [connector.Style], so the static SVG and the first
// frame of the HTML page match.
//
// # SVG
//
// [RenderSVG] emits cards, connector polylines and, with [WithPopups], one
// hidden tooltip per card plus a small script that keeps at most one open.
//
// # HTML
//
// [RenderHTML] emits a self-contained page: a fixed-size viewport wrapping a
// pannable canvas that holds a CSS grid of cards and a <canvas> for the
// connectors. The page's script redraws connectors on resize, tooltip toggle
// and pointer move, and clamps drag panning to the content.
//
// # JSON
//
// [RenderJSON] exports the grid, the measured card boxes and the connector
// paths.
package sink

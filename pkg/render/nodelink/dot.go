package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/render"
)

// Options configures node-link rendering.
type Options struct {
	// Detailed adds level, column and metadata to node labels.
	Detailed bool
}

// ToDOT converts a layout to Graphviz DOT. Nodes of one level share a rank.
func ToDOT(l grid.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph referrals {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	placed := make(map[string]bool)
	for lvl, row := range l.Rows {
		var ids []string
		for col, c := range row {
			if c.Empty() {
				continue
			}
			placed[c.ID] = true
			ids = append(ids, strconv.Quote(c.ID))
			fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, strings.Join(fmtAttrs(c, lvl, col, opts.Detailed), ", "))
		}
		if len(ids) > 1 {
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		}
	}

	buf.WriteString("\n")
	for _, row := range l.Rows {
		for _, c := range row {
			if c.Empty() || !placed[c.ParentID] {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.ParentID, c.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(c grid.Cell, level, column int, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, level, column, detailed))}
	if c.Active {
		attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=\"#35c07a\"")
	}
	return attrs
}

func fmtLabel(c grid.Cell, level, column int, detailed bool) string {
	if !detailed {
		return c.DisplayLabel()
	}
	parts := []string{fmt.Sprintf("level: %d", level), fmt.Sprintf("column: %d", column)}
	for _, k := range slices.Sorted(maps.Keys(c.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, c.Meta[k]))
	}
	return c.DisplayLabel() + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites Graphviz's point-based root element to a plain
// pixel viewBox so the SVG scales like the other sinks.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via SVG.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

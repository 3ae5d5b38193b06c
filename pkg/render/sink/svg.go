package sink

import (
	"bytes"
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
	"github.com/matzehuels/reftree/pkg/tooltip"
	"github.com/matzehuels/reftree/pkg/viewport"
)

const popupCSS = `
    .tooltip { pointer-events: none; }
    .tooltip[visibility="hidden"] { display: none; }
    .card { cursor: pointer; }`

const popupJS = `
    let open = null;
    document.addEventListener('click', e => {
      const card = e.target.closest('.card');
      const tip = card && document.querySelector('.tooltip[data-for="' + card.dataset.id + '"]');
      if (open) open.setAttribute('visibility', 'hidden');
      if (!tip || tip === open) { open = null; return; }
      tip.setAttribute('visibility', 'visible');
      open = tip;
    });`

const (
	tooltipWidth   = 220
	tooltipLineH   = 18
	tooltipPadding = 10
)

// RenderSVG draws the layout as a standalone SVG document.
func RenderSVG(l grid.Layout, opts ...Option) []byte {
	r := newOptions(opts)
	s := newScene(l, r.metrics, r.offset)

	width, height := s.boxes.Width, s.boxes.Height
	var tips []svgTooltip
	switch {
	case r.popups:
		for _, b := range s.boxes.Boxes {
			tips = append(tips, newSVGTooltip(b, s.cell(b), false))
		}
	case r.open != "":
		if b, ok := s.boxes.Find(r.open); ok {
			tips = append(tips, newSVGTooltip(b, s.cell(b), true))
		}
	}
	// A tooltip hanging below the cards must stay inside the document.
	content := height
	for _, tip := range tips {
		if bottom := tip.place.Bottom(); bottom > content {
			height = max(height, bottom+viewport.DefaultOverlayMargin)
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)

	buf.WriteString("  <g class=\"connectors\">\n")
	conn := connector.Renderer{Style: r.stroke, Offset: r.offset}
	conn.Draw(svgConnectors{&buf}, s.boxes.Boxes, width, height)
	buf.WriteString("  </g>\n")

	for _, b := range s.boxes.Boxes {
		renderCard(&buf, b, s.cell(b), r.theme)
	}

	for _, tip := range tips {
		renderTooltip(&buf, tip.place, tip.lines, r.theme, tip.visible)
	}
	if r.popups {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", popupCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", popupJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// svgTooltip is a tooltip placed under its card, ready to draw.
type svgTooltip struct {
	place   tooltip.Placement
	lines   []string
	visible bool
}

func newSVGTooltip(b measure.Box, c grid.Cell, visible bool) svgTooltip {
	lines := tooltipLines(c)
	return svgTooltip{
		place:   tooltip.Place(b.ID, b.Rect, tooltipWidth, tooltipHeight(len(lines))),
		lines:   lines,
		visible: visible,
	}
}

// svgConnectors is a connector surface that appends polylines to the
// document being built. The document is written once, so resizing and
// clearing have nothing to do.
type svgConnectors struct{ buf *bytes.Buffer }

func (svgConnectors) Resize(float64, float64) {}

func (svgConnectors) Clear() {}

func (c svgConnectors) Stroke(p connector.Path, st connector.Style) { renderPath(c.buf, p, st) }

func renderPath(buf *bytes.Buffer, p connector.Path, st connector.Style) {
	pts := make([]string, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = fmt.Sprintf("%.1f,%.1f", pt.X, pt.Y)
	}
	fmt.Fprintf(buf, `    <polyline class="%s" data-parent="%s" points="%s" fill="none" stroke="%s" stroke-width="%.1f" stroke-linecap="%s"/>`+"\n",
		p.Kind, esc(p.ParentID), strings.Join(pts, " "), st.Color, st.Width, st.Cap)
}

func renderCard(buf *bytes.Buffer, b measure.Box, c grid.Cell, t Theme) {
	class := "card"
	status := t.Muted
	if c.Active {
		class += " active"
		status = t.Active
	}
	r := b.Rect
	fmt.Fprintf(buf, `  <g class="%s" id="card-%s" data-id="%s" data-parent="%s">`+"\n", class, esc(c.ID), esc(c.ID), esc(c.ParentID))
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="10" fill="%s" stroke="%s"/>`+"\n",
		r.Left, r.Top, r.Width, r.Height, t.CardFill, t.CardStroke)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="14" fill="%s">%s</text>`+"\n",
		r.CenterX(), r.CenterY()-4, t.Text, esc(c.DisplayLabel()))
	fmt.Fprintf(buf, `    <text class="status" x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="11" fill="%s">%s</text>`+"\n",
		r.CenterX(), r.CenterY()+14, status, esc(StatusLabel(c)))
	buf.WriteString("  </g>\n")
}

func renderTooltip(buf *bytes.Buffer, p tooltip.Placement, lines []string, t Theme, visible bool) {
	vis := "hidden"
	if visible {
		vis = "visible"
	}
	fmt.Fprintf(buf, `  <g class="tooltip" data-for="%s" visibility="%s">`+"\n", esc(p.ID), vis)
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" stroke="%s"/>`+"\n",
		p.Left, p.Top, p.Box.Width, p.Box.Height, t.CardFill, t.CardStroke)
	for i, line := range lines {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			p.Left+tooltipPadding, p.Top+tooltipPadding+float64(i+1)*tooltipLineH-4, t.Text, esc(line))
	}
	buf.WriteString("  </g>\n")
}

// tooltipLines lists what a card's tooltip shows in SVG, where the card's
// HTML content cannot be embedded.
func tooltipLines(c grid.Cell) []string {
	lines := []string{c.DisplayLabel(), "Status: " + StatusLabel(c)}
	for _, k := range slices.Sorted(maps.Keys(c.Meta)) {
		if k == "status" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %v", k, c.Meta[k]))
	}
	return lines
}

func tooltipHeight(lines int) float64 {
	return float64(lines)*tooltipLineH + 2*tooltipPadding
}

func esc(s string) string { return html.EscapeString(s) }

package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
	"github.com/matzehuels/reftree/pkg/tooltip"
	"github.com/matzehuels/reftree/pkg/viewport"
)

// One terminal cell covers cellW×cellH canvas pixels.
const (
	cellW = 8
	cellH = 16
)

// termMetrics sizes cards in whole cells: 16×4 cards, 2-column gaps, 4-row
// level spacing.
var termMetrics = measure.Metrics{
	CardWidth:  128,
	CardHeight: 64,
	ColGap:     16,
	RowGap:     64,
	Padding:    16,
}

// termOffset puts the connector bus two rows below the parent card.
const termOffset = 32

type cellAttr uint8

const (
	attrBlank cellAttr = iota
	attrLine
	attrCard
	attrActive
	attrSelected
	attrTooltip
)

var attrStyles = map[cellAttr]lipgloss.Style{
	attrBlank:    lipgloss.NewStyle(),
	attrLine:     lipgloss.NewStyle().Foreground(colorGray),
	attrCard:     lipgloss.NewStyle().Foreground(colorWhite),
	attrActive:   lipgloss.NewStyle().Foreground(colorGreen),
	attrSelected: lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
	attrTooltip:  lipgloss.NewStyle().Foreground(colorYellow),
}

// Line directions, combined into a mask per cell.
const (
	dirUp uint8 = 1 << iota
	dirDown
	dirLeft
	dirRight
)

// lineRunes is indexed by direction mask.
var lineRunes = []rune(" │││─┘┐┤─└┌├─┴┬┼")

// canvas is the full drawing in cells, before the viewport crops it.
type canvas struct {
	w, h  int
	runes [][]rune
	attrs [][]cellAttr
	lines [][]uint8
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h}
	c.runes = make([][]rune, h)
	c.attrs = make([][]cellAttr, h)
	c.lines = make([][]uint8, h)
	for y := range h {
		c.runes[y] = []rune(strings.Repeat(" ", w))
		c.attrs[y] = make([]cellAttr, w)
		c.lines[y] = make([]uint8, w)
	}
	return c
}

func (c *canvas) in(x, y int) bool { return x >= 0 && x < c.w && y >= 0 && y < c.h }

func (c *canvas) set(x, y int, r rune, a cellAttr) {
	if c.in(x, y) {
		c.runes[y][x] = r
		c.attrs[y][x] = a
	}
}

func (c *canvas) text(x, y int, s string, a cellAttr) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, a)
	}
}

func (c *canvas) mark(x, y int, d uint8) {
	if c.in(x, y) {
		c.lines[y][x] |= d
	}
}

// stroke adds one axis-aligned segment to the line masks.
func (c *canvas) stroke(a, b connector.Point) {
	x1, y1 := toCol(a.X), toRow(a.Y)
	x2, y2 := toCol(b.X), toRow(b.Y)
	switch {
	case x1 == x2:
		if y1 > y2 {
			y1, y2 = y2, y1
		}
		for y := y1; y <= y2; y++ {
			if y > y1 {
				c.mark(x1, y, dirUp)
			}
			if y < y2 {
				c.mark(x1, y, dirDown)
			}
		}
	case y1 == y2:
		if x1 > x2 {
			x1, x2 = x2, x1
		}
		for x := x1; x <= x2; x++ {
			if x > x1 {
				c.mark(x, y1, dirLeft)
			}
			if x < x2 {
				c.mark(x, y1, dirRight)
			}
		}
	}
}

// Resize is a no-op: the canvas is allocated at its final size.
func (c *canvas) Resize(float64, float64) {}

// Clear drops every connector drawn so far.
func (c *canvas) Clear() {
	for y := range c.lines {
		clear(c.lines[y])
	}
}

// Stroke adds p to the line masks. The terminal has one line weight, so the
// style is ignored.
func (c *canvas) Stroke(p connector.Path, _ connector.Style) {
	for i := 1; i < len(p.Points); i++ {
		c.stroke(p.Points[i-1], p.Points[i])
	}
}

var _ connector.Surface = (*canvas)(nil)

// resolveLines turns the accumulated masks into box-drawing runes.
func (c *canvas) resolveLines() {
	for y := range c.h {
		for x := range c.w {
			if m := c.lines[y][x]; m != 0 {
				c.set(x, y, lineRunes[m], attrLine)
			}
		}
	}
}

// box draws a bordered rectangle and returns its inner width.
func (c *canvas) box(r measure.Rect, a cellAttr) (left, top, inner int) {
	left, top = toCol(r.Left), toRow(r.Top)
	w, h := toCol(r.Width), toRow(r.Height)
	if w < 2 || h < 2 {
		return left, top, 0
	}
	right, bottom := left+w-1, top+h-1
	for x := left; x <= right; x++ {
		for y := top; y <= bottom; y++ {
			c.set(x, y, ' ', a)
		}
		c.set(x, top, '─', a)
		c.set(x, bottom, '─', a)
	}
	for y := top; y <= bottom; y++ {
		c.set(left, y, '│', a)
		c.set(right, y, '│', a)
	}
	c.set(left, top, '╭', a)
	c.set(right, top, '╮', a)
	c.set(left, bottom, '╰', a)
	c.set(right, bottom, '╯', a)
	return left, top, w - 2
}

// drawScene paints connectors, then cards, then the open tooltip. A nil
// conn leaves out the connectors.
func drawScene(l grid.Layout, res measure.Result, conn *connector.Renderer, selected string, tip *tooltip.Placement) *canvas {
	w, h := toColCeil(res.Width), toRowCeil(res.Height)
	if tip != nil {
		w = max(w, toColCeil(tip.Box.Right()))
		h = max(h, toRowCeil(tip.Box.Bottom()))
	}
	c := newCanvas(w, h)

	if conn != nil {
		conn.Draw(c, res.Boxes, float64(w*cellW), float64(h*cellH))
	}
	c.resolveLines()

	for _, b := range res.Boxes {
		cell := l.Cell(b.Level, b.Column)
		a := attrCard
		switch {
		case b.ID == selected:
			a = attrSelected
		case cell.Active:
			a = attrActive
		}
		left, top, inner := c.box(b.Rect, a)
		c.text(left+1, top+1, center(cell.DisplayLabel(), inner), a)
		if cell.Label != "" && cell.Label != cell.ID {
			c.text(left+1, top+2, center(cell.ID, inner), attrLine)
		}
	}

	if tip != nil {
		if lvl, col, ok := l.Position(tip.ID); ok {
			left, top, inner := c.box(tip.Box, attrTooltip)
			for i, line := range tooltipLines(l.Cell(lvl, col)) {
				c.text(left+2, top+1+i, truncate(line, inner-2), attrTooltip)
			}
		}
	}
	return c
}

// crop returns the w×h window of c seen through offset o, styled.
func (c *canvas) crop(o viewport.Offset, w, h int) string {
	dx, dy := toCol(o.X), toRow(o.Y)
	var b strings.Builder
	for sy := range h {
		if sy > 0 {
			b.WriteByte('\n')
		}
		y := sy - dy
		var run []rune
		cur := attrBlank
		flush := func() {
			if len(run) > 0 {
				b.WriteString(attrStyles[cur].Render(string(run)))
				run = run[:0]
			}
		}
		for sx := range w {
			x := sx - dx
			r, a := ' ', attrBlank
			if c.in(x, y) {
				r, a = c.runes[y][x], c.attrs[y][x]
			}
			if a != cur {
				flush()
				cur = a
			}
			run = append(run, r)
		}
		flush()
	}
	return b.String()
}

// plain returns the canvas as unstyled text, one line per row.
func (c *canvas) plain() string {
	lines := make([]string, c.h)
	for y := range c.h {
		lines[y] = strings.TrimRight(string(c.runes[y]), " ")
	}
	return strings.Join(lines, "\n")
}

func toCol(px float64) int     { return int(math.Round(px / cellW)) }
func toRow(px float64) int     { return int(math.Round(px / cellH)) }
func toColCeil(px float64) int { return int(math.Ceil(px / cellW)) }
func toRowCeil(px float64) int { return int(math.Ceil(px / cellH)) }

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func center(s string, n int) string {
	s = truncate(s, n)
	pad := (n - len([]rune(s))) / 2
	return strings.Repeat(" ", max(pad, 0)) + s
}

// Package measure turns a grid layout into card rectangles.
//
// A browser reflows the grid and reports each card's bounding box; reftree
// computes the same boxes from fixed card metrics so connectors, tooltips and
// the viewport can be driven without a DOM. All coordinates are relative to
// the top-left corner of the content (the shared canvas origin), with y
// growing downwards.
package measure

import "github.com/matzehuels/reftree/pkg/grid"

// Rect is an axis-aligned rectangle.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64   { return r.Left + r.Width }
func (r Rect) Bottom() float64  { return r.Top + r.Height }
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right() && y >= r.Top && y <= r.Bottom()
}

// Metrics fixes card size and spacing.
type Metrics struct {
	CardWidth  float64 `toml:"card_width" json:"card_width"`
	CardHeight float64 `toml:"card_height" json:"card_height"`
	ColGap     float64 `toml:"col_gap" json:"col_gap"`
	RowGap     float64 `toml:"row_gap" json:"row_gap"`
	Padding    float64 `toml:"padding" json:"padding"`
}

// DefaultMetrics returns the card metrics used when none are configured.
func DefaultMetrics() Metrics {
	return Metrics{
		CardWidth:  160,
		CardHeight: 72,
		ColGap:     24,
		RowGap:     64,
		Padding:    24,
	}
}

// Box is the measured rectangle of one placed card.
type Box struct {
	ID       string `json:"id"`
	ParentID string `json:"parent,omitempty"`
	Level    int    `json:"level"`
	Column   int    `json:"column"`
	Rect     Rect   `json:"rect"`
}

// Result holds every card box plus the overall content size.
type Result struct {
	Boxes  []Box   `json:"boxes"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Find returns the box with the given id.
func (r Result) Find(id string) (Box, bool) {
	for _, b := range r.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// At returns the topmost box containing (x, y).
func (r Result) At(x, y float64) (Box, bool) {
	for i := len(r.Boxes) - 1; i >= 0; i-- {
		if r.Boxes[i].Rect.Contains(x, y) {
			return r.Boxes[i], true
		}
	}
	return Box{}, false
}

// Measure lays out the non-empty cells of l in row-major order, the order a
// browser would report them in.
func Measure(l grid.Layout, m Metrics) Result {
	res := Result{
		Width:  ContentWidth(l.Columns, m),
		Height: ContentHeight(l.Levels(), m),
	}
	for lvl, row := range l.Rows {
		for col, c := range row {
			if c.Empty() {
				continue
			}
			res.Boxes = append(res.Boxes, Box{
				ID:       c.ID,
				ParentID: c.ParentID,
				Level:    lvl,
				Column:   col,
				Rect:     CellRect(lvl, col, m),
			})
		}
	}
	return res
}

// CellRect returns the card rectangle of grid cell (level, column).
func CellRect(level, column int, m Metrics) Rect {
	return Rect{
		Left:   m.Padding + float64(column)*(m.CardWidth+m.ColGap),
		Top:    m.Padding + float64(level)*(m.CardHeight+m.RowGap),
		Width:  m.CardWidth,
		Height: m.CardHeight,
	}
}

// ContentWidth returns the padded width of a grid with cols columns.
func ContentWidth(cols int, m Metrics) float64 {
	return span(cols, m.CardWidth, m.ColGap) + 2*m.Padding
}

// ContentHeight returns the padded height of a grid with rows levels.
func ContentHeight(rows int, m Metrics) float64 {
	return span(rows, m.CardHeight, m.RowGap) + 2*m.Padding
}

func span(n int, size, gap float64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*size + float64(n-1)*gap
}

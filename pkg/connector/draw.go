package connector

import "github.com/matzehuels/reftree/pkg/measure"

// Style is the stroke applied to every connector path.
type Style struct {
	Color string  `toml:"stroke" json:"color"`
	Width float64 `toml:"stroke_width" json:"width"`
	Cap   string  `toml:"line_cap" json:"cap"`
}

// DefaultStyle is a faint white round-capped line for dark backgrounds.
func DefaultStyle() Style {
	return Style{Color: "rgba(255,255,255,0.20)", Width: 2, Cap: "round"}
}

// Surface is a drawing target sized to the content area.
type Surface interface {
	Resize(width, height float64)
	Clear()
	Stroke(p Path, s Style)
}

// Renderer redraws connectors onto a surface.
type Renderer struct {
	Style  Style
	Offset float64
}

// NewRenderer returns a renderer with the default style and offset.
func NewRenderer() *Renderer {
	return &Renderer{Style: DefaultStyle(), Offset: DefaultOffset}
}

// Draw resizes s to width×height, clears it and strokes every path for
// boxes. A nil surface is ignored. Draw returns the paths it stroked.
func (r *Renderer) Draw(s Surface, boxes []measure.Box, width, height float64) []Path {
	if s == nil {
		return nil
	}
	s.Resize(width, height)
	s.Clear()
	paths := Paths(boxes, r.Offset)
	for _, p := range paths {
		s.Stroke(p, r.Style)
	}
	return paths
}

// Recorder is a Surface that keeps the last frame in memory.
type Recorder struct {
	Width, Height float64
	Paths         []Path
	Styles        []Style
	Frames        int // number of Clear calls
}

func (r *Recorder) Resize(width, height float64) { r.Width, r.Height = width, height }

func (r *Recorder) Clear() {
	r.Paths, r.Styles = nil, nil
	r.Frames++
}

func (r *Recorder) Stroke(p Path, s Style) {
	r.Paths = append(r.Paths, p)
	r.Styles = append(r.Styles, s)
}

var _ Surface = (*Recorder)(nil)

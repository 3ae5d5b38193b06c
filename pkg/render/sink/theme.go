package sink

import (
	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
)

// Theme holds card and page colors.
type Theme struct {
	Background string `toml:"background" json:"background"`
	CardFill   string `toml:"card_fill" json:"card_fill"`
	CardStroke string `toml:"card_stroke" json:"card_stroke"`
	Text       string `toml:"text" json:"text"`
	Muted      string `toml:"muted" json:"muted"`
	Active     string `toml:"active" json:"active"`
}

// DefaultTheme is a dark palette matching the default connector stroke.
func DefaultTheme() Theme {
	return Theme{
		Background: "#12141c",
		CardFill:   "#1e2230",
		CardStroke: "rgba(255,255,255,0.12)",
		Text:       "#f2f4f8",
		Muted:      "#8a90a2",
		Active:     "#35c07a",
	}
}

// StatusLabel returns the status line shown on a card. Active cards always
// read "Active"; others use the "status" meta value, defaulting to "Inactive".
func StatusLabel(c grid.Cell) string {
	if c.Active {
		return "Active"
	}
	if s, ok := c.Meta["status"].(string); ok && s != "" {
		return s
	}
	return "Inactive"
}

// scene is the measured geometry every sink draws from.
type scene struct {
	layout grid.Layout
	boxes  measure.Result
	paths  []connector.Path
}

func newScene(l grid.Layout, m measure.Metrics, offset float64) scene {
	res := measure.Measure(l, m)
	return scene{
		layout: l,
		boxes:  res,
		paths:  connector.Paths(res.Boxes, offset),
	}
}

func (s scene) cell(b measure.Box) grid.Cell {
	return s.layout.Cell(b.Level, b.Column)
}

// Option configures a sink.
type Option func(*options)

type options struct {
	metrics  measure.Metrics
	stroke   connector.Style
	offset   float64
	theme    Theme
	popups   bool
	open     string
	viewport [2]float64
	title    string
}

func newOptions(opts []Option) options {
	o := options{
		metrics:  measure.DefaultMetrics(),
		stroke:   connector.DefaultStyle(),
		offset:   connector.DefaultOffset,
		theme:    DefaultTheme(),
		viewport: [2]float64{DefaultViewportWidth, DefaultViewportHeight},
		title:    "Referral tree",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMetrics sets card size and spacing.
func WithMetrics(m measure.Metrics) Option { return func(o *options) { o.metrics = m } }

// WithStroke sets the connector stroke.
func WithStroke(s connector.Style) Option { return func(o *options) { o.stroke = s } }

// WithOffset sets the connector bus offset below each parent.
func WithOffset(offset float64) Option { return func(o *options) { o.offset = offset } }

// WithTheme sets the card and background colors.
func WithTheme(t Theme) Option { return func(o *options) { o.theme = t } }

// WithPopups embeds a click-to-open tooltip for every card (SVG only; the
// HTML page always has tooltips).
func WithPopups() Option { return func(o *options) { o.popups = true } }

// WithOpenTooltip draws id's tooltip open, as a static snapshot (SVG only).
func WithOpenTooltip(id string) Option { return func(o *options) { o.open = id } }

// WithViewport sets the size of the HTML page's pan window. Non-positive
// values keep the default.
func WithViewport(width, height float64) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.viewport = [2]float64{width, height}
		}
	}
}

// WithTitle sets the HTML page title.
func WithTitle(title string) Option { return func(o *options) { o.title = title } }

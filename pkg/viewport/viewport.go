// Package viewport tracks the pan offset of a content canvas inside a
// fixed-size window.
//
// Every change to the offset is clamped into [Controller.Bounds] before it is
// applied. On an axis where the content fits, the offset is pinned to the
// centering value; otherwise it ranges over [viewport-content, 0]. An open
// overlay that reaches below the content extends the vertical range so the
// overlay stays reachable.
//
// Drags lock to one axis on their first movement: whichever of |dx| and |dy|
// is larger wins, ties lock vertically. Pointer and touch gestures are kept
// apart, so a pointer move never moves a touch drag and vice versa.
package viewport

import (
	"slices"
	"sync"

	"github.com/matzehuels/reftree/pkg/events"
)

// DefaultOverlayMargin is added below an overlay that overflows the content.
const DefaultOverlayMargin = 40

// Size is a width and height.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Offset is the canvas translation.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the valid offset range on each axis.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Clamp returns o moved into b.
func (b Bounds) Clamp(o Offset) Offset {
	return Offset{
		X: clamp(o.X, b.MinX, b.MaxX),
		Y: clamp(o.Y, b.MinY, b.MaxY),
	}
}

// Contains reports whether o lies inside b.
func (b Bounds) Contains(o Offset) bool {
	return o.X >= b.MinX && o.X <= b.MaxX && o.Y >= b.MinY && o.Y <= b.MaxY
}

// Axis is the direction a drag is locked to.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "none"
	}
}

// OverlayFunc reports the bottom edge of the open overlay, relative to the
// canvas origin. open is false when no overlay is shown.
type OverlayFunc func() (bottom float64, open bool)

// Option configures a Controller.
type Option func(*Controller)

// WithOverlay installs the open-overlay query.
func WithOverlay(f OverlayFunc) Option {
	return func(c *Controller) { c.overlay = f }
}

// WithOverlayMargin overrides [DefaultOverlayMargin].
func WithOverlayMargin(m float64) Option {
	return func(c *Controller) { c.margin = m }
}

// WithBus publishes [events.PanUpdated] on bus after every applied offset.
func WithBus(bus *events.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// Controller owns the offset and the drag state machine.
type Controller struct {
	overlay OverlayFunc
	margin  float64
	bus     *events.Bus

	mu       sync.Mutex
	viewport Size
	content  Size
	offset   Offset

	dragging    bool
	isTouch     bool
	axis        Axis
	startX      float64
	startY      float64
	startOffset Offset

	subs []func(Offset)
}

// New returns a controller for a viewport and content of the given sizes,
// centered.
func New(viewport, content Size, opts ...Option) *Controller {
	c := &Controller{margin: DefaultOverlayMargin, viewport: viewport, content: content}
	for _, opt := range opts {
		opt(c)
	}
	c.Center()
	return c
}

// Subscribe registers fn to receive every applied offset.
func (c *Controller) Subscribe(fn func(Offset)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Offset returns the applied offset.
func (c *Controller) Offset() Offset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Viewport returns the window size.
func (c *Controller) Viewport() Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// Content returns the nominal content size.
func (c *Controller) Content() Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// Bounds computes the valid offset range from the current sizes and overlay.
func (c *Controller) Bounds() Bounds {
	c.mu.Lock()
	vp, content := c.viewport, c.content
	c.mu.Unlock()
	return c.bounds(vp, content)
}

func (c *Controller) bounds(vp, content Size) Bounds {
	h := content.H
	if c.overlay != nil {
		if bottom, open := c.overlay(); open && bottom > h {
			h = bottom + c.margin
		}
	}
	var b Bounds
	b.MinX, b.MaxX = axisRange(vp.W, content.W)
	b.MinY, b.MaxY = axisRange(vp.H, h)
	return b
}

func axisRange(view, content float64) (lo, hi float64) {
	if content <= view {
		v := (view - content) / 2
		return v, v
	}
	return view - content, 0
}

// Clamp returns o moved into the current bounds without applying it.
func (c *Controller) Clamp(o Offset) Offset {
	return c.Bounds().Clamp(o)
}

// SetOffset clamps and applies o.
func (c *Controller) SetOffset(o Offset) {
	c.mu.Lock()
	c.offset = o
	c.mu.Unlock()
	c.apply()
}

// Nudge moves the offset by (dx, dy).
func (c *Controller) Nudge(dx, dy float64) {
	c.mu.Lock()
	c.offset.X += dx
	c.offset.Y += dy
	c.mu.Unlock()
	c.apply()
}

// Center resets to horizontally centered, vertical zero, then clamps.
func (c *Controller) Center() {
	c.mu.Lock()
	c.offset = Offset{X: (c.viewport.W - c.content.W) / 2, Y: 0}
	c.mu.Unlock()
	c.apply()
}

// Resize changes the viewport size and recenters.
func (c *Controller) Resize(viewport Size) {
	c.mu.Lock()
	c.viewport = viewport
	c.mu.Unlock()
	c.Center()
}

// SetContent changes the content size and re-clamps the current offset.
func (c *Controller) SetContent(content Size) {
	c.mu.Lock()
	c.content = content
	c.mu.Unlock()
	c.apply()
}

// Refresh re-clamps the current offset, for example after an overlay opened
// or closed.
func (c *Controller) Refresh() {
	c.apply()
}

// apply clamps the offset, then notifies subscribers and the bus outside
// the lock.
func (c *Controller) apply() {
	c.mu.Lock()
	b := c.bounds(c.viewport, c.content)
	c.offset = b.Clamp(c.offset)
	o := c.offset
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(o)
	}
	c.bus.Publish(events.PanUpdated)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

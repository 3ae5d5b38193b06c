// Package tooltip coordinates the per-card overlays: at most one is open at a
// time, and the open one is positioned absolutely on the canvas just below its
// card.
package tooltip

import (
	"sync"

	"github.com/matzehuels/reftree/pkg/events"
	"github.com/matzehuels/reftree/pkg/measure"
)

// Gap is the vertical space between a card and its tooltip.
const Gap = 8

// Placement is where an open tooltip sits on the canvas.
type Placement struct {
	ID       string       `json:"id"`
	Left     float64      `json:"left"`
	Top      float64      `json:"top"`
	Box      measure.Rect `json:"box"`
	Absolute bool         `json:"absolute"`
}

// Bottom returns the lower edge of the placed tooltip.
func (p Placement) Bottom() float64 { return p.Top + p.Box.Height }

// SizeFunc reports the rendered size of a card's tooltip.
type SizeFunc func(id string) (width, height float64)

// Coordinator tracks the single open tooltip.
type Coordinator struct {
	bus  *events.Bus
	size SizeFunc

	mu     sync.Mutex
	active *Placement
}

// New returns a coordinator that publishes [events.TooltipChanged] on bus.
// size may be nil, in which case tooltips are treated as zero-sized.
func New(bus *events.Bus, size SizeFunc) *Coordinator {
	return &Coordinator{bus: bus, size: size}
}

// Place computes the position of a tooltip for a card rectangle.
func Place(id string, card measure.Rect, width, height float64) Placement {
	return Placement{
		ID:       id,
		Left:     card.Left,
		Top:      card.Bottom() + Gap,
		Box:      measure.Rect{Left: card.Left, Top: card.Bottom() + Gap, Width: width, Height: height},
		Absolute: true,
	}
}

// Toggle opens the tooltip for id under card, closing any other, or closes it
// if it is already the open one. It reports whether id is open afterwards.
func (c *Coordinator) Toggle(id string, card measure.Rect) bool {
	c.mu.Lock()
	var open bool
	if c.active != nil && c.active.ID == id {
		c.active = nil
	} else {
		var w, h float64
		if c.size != nil {
			w, h = c.size(id)
		}
		p := Place(id, card, w, h)
		c.active = &p
		open = true
	}
	c.mu.Unlock()

	c.bus.Publish(events.TooltipChanged)
	return open
}

// CloseAll closes the open tooltip, if any.
func (c *Coordinator) CloseAll() {
	c.mu.Lock()
	had := c.active != nil
	c.active = nil
	c.mu.Unlock()

	if had {
		c.bus.Publish(events.TooltipChanged)
	}
}

// Active returns the open tooltip.
func (c *Coordinator) Active() (Placement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return Placement{}, false
	}
	return *c.active, true
}

// IsOpen reports whether id's tooltip is open.
func (c *Coordinator) IsOpen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil && c.active.ID == id
}

// Bottom reports the open tooltip's lower edge. Its signature matches
// viewport.OverlayFunc.
func (c *Coordinator) Bottom() (float64, bool) {
	p, ok := c.Active()
	if !ok {
		return 0, false
	}
	return p.Bottom(), true
}

package viewport

import "math"

// Dragging reports whether a gesture is in progress.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// Axis returns the axis the current gesture is locked to.
func (c *Controller) Axis() Axis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.axis
}

// PointerDown starts a pointer drag at page position (x, y).
func (c *Controller) PointerDown(x, y float64) { c.begin(x, y, false) }

// PointerMove pans a pointer drag. It is ignored during a touch gesture.
func (c *Controller) PointerMove(x, y float64) { c.move(x, y, false) }

// PointerUp ends a pointer drag.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	c.dragging = false
	c.axis = AxisNone
	c.mu.Unlock()
}

// TouchStart starts a single-finger drag at (x, y).
func (c *Controller) TouchStart(x, y float64) { c.begin(x, y, true) }

// TouchMove pans a touch drag. It is ignored during a pointer gesture.
func (c *Controller) TouchMove(x, y float64) { c.move(x, y, true) }

// TouchEnd ends a touch drag.
func (c *Controller) TouchEnd() {
	c.mu.Lock()
	c.dragging = false
	c.isTouch = false
	c.axis = AxisNone
	c.mu.Unlock()
}

func (c *Controller) begin(x, y float64, touch bool) {
	c.mu.Lock()
	c.dragging = true
	c.isTouch = touch
	c.startX, c.startY = x, y
	c.startOffset = c.offset
	c.axis = AxisNone
	c.mu.Unlock()
}

func (c *Controller) move(x, y float64, touch bool) {
	c.mu.Lock()
	if !c.dragging || c.isTouch != touch {
		c.mu.Unlock()
		return
	}
	dx, dy := x-c.startX, y-c.startY
	if c.axis == AxisNone {
		if dx == 0 && dy == 0 {
			c.mu.Unlock()
			return
		}
		c.axis = AxisY
		if math.Abs(dx) > math.Abs(dy) {
			c.axis = AxisX
		}
	}
	if c.axis == AxisX {
		c.offset.X = c.startOffset.X + dx
	} else {
		c.offset.Y = c.startOffset.Y + dy
	}
	c.mu.Unlock()
	c.apply()
}

package grid

import (
	"sync"

	"github.com/matzehuels/reftree/pkg/events"
	"github.com/matzehuels/reftree/pkg/tree"
)

// Rebuilder owns the current grid and replaces it wholesale on every rebuild.
type Rebuilder struct {
	bus  *events.Bus
	opts []Option

	mu      sync.RWMutex
	current Layout
	ready   bool
}

// NewRebuilder creates a rebuilder that announces new grids on bus.
// A nil bus is allowed.
func NewRebuilder(bus *events.Bus, opts ...Option) *Rebuilder {
	return &Rebuilder{bus: bus, opts: opts}
}

// Rebuild re-indexes descs and installs the resulting grid.
// It returns false, leaving the installed grid untouched and publishing
// nothing, when descs cannot be laid out.
func (r *Rebuilder) Rebuild(descs []tree.Descriptor) (Layout, bool) {
	t, ok := tree.Index(descs)
	if !ok {
		return Layout{}, false
	}
	l := Build(t, r.opts...)

	r.mu.Lock()
	r.current, r.ready = l, true
	r.mu.Unlock()

	r.bus.Publish(events.LayoutReady)
	return l, true
}

// Current returns the installed grid, if any rebuild has succeeded.
func (r *Rebuilder) Current() (Layout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.ready
}

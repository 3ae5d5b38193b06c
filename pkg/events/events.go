// Package events carries the notifications that keep reftree's components in
// step: layout readiness, tooltip toggles and pan updates.
//
// Delivery is synchronous and in subscription order. Handlers run on the
// publishing goroutine and must not block; components recompute everything
// from live state on each notification, so there is no payload beyond the
// topic and no coalescing.
package events

import "sync"

// Topic identifies a notification.
type Topic string

// Notifications exchanged between components.
const (
	LayoutReady    Topic = "layout-ready"
	TooltipChanged Topic = "tooltip-changed"
	PanUpdated     Topic = "pan-updated"
	Resized        Topic = "resized"
)

// Handler receives a published topic.
type Handler func(Topic)

// Bus fans out topics to subscribers. The zero value is ready to use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Topic][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for each of topics.
func (b *Bus) Subscribe(h Handler, topics ...Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[Topic][]Handler)
	}
	for _, t := range topics {
		b.handlers[t] = append(b.handlers[t], h)
	}
}

// Publish calls every handler subscribed to t. A nil bus drops the topic.
func (b *Bus) Publish(t Topic) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[t]...)
	b.mu.RUnlock()
	for _, h := range hs {
		h(t)
	}
}

// Package observability lets the pipeline, the cache and the preview server
// report what they do without depending on a metrics or tracing backend.
//
// Libraries emit events through [Pipeline], [Cache] and [HTTP]. Until main
// registers an implementation every event goes to a no-op, so instrumented
// code needs no setup in tests:
//
//	func main() {
//	    observability.Register(myHooks{}) // any mix of the three interfaces
//	    // ...
//	}
//
//	observability.Pipeline().OnLoadStart(ctx, "json", "referrals.json")
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives load, layout and render events.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, kind, ref string)
	OnLoadComplete(ctx context.Context, kind, ref string, count int, duration time.Duration, err error)

	// descriptors is the number of members handed to the grid builder.
	OnLayoutStart(ctx context.Context, descriptors int)
	OnLayoutComplete(ctx context.Context, placed, collisions int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups. keyType is "source", "layout" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives requests handled by the preview server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, requestID, method, path string)
	OnResponse(ctx context.Context, requestID, method, path string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}

// slot holds one registered implementation. Readers never block.
type slot[T any] struct {
	v   atomic.Pointer[T]
	def T
}

func (s *slot[T]) get() T {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.v.Store(&h) }
func (s *slot[T]) reset()  { s.v.Store(nil) }

var (
	pipelineSlot = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.set(h)
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

// Register installs h for every hook interface it implements and reports
// how many it matched.
func Register(h any) int {
	n := 0
	if p, ok := h.(PipelineHooks); ok {
		SetPipelineHooks(p)
		n++
	}
	if c, ok := h.(CacheHooks); ok {
		SetCacheHooks(c)
		n++
	}
	if r, ok := h.(HTTPHooks); ok {
		SetHTTPHooks(r)
		n++
	}
	return n
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op defaults.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}

package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reftree/pkg/observability"
)

// logHooks reports pipeline, cache and server events at debug level.
type logHooks struct {
	logger *log.Logger
}

// RegisterHooks routes observability events to the CLI logger. Events only
// show up with --verbose.
func (c *CLI) RegisterHooks() {
	observability.Register(logHooks{logger: c.Logger.WithPrefix("hooks")})
}

func (h logHooks) OnLoadStart(_ context.Context, kind, ref string) {
	h.logger.Debug("load start", "kind", kind, "source", ref)
}

func (h logHooks) OnLoadComplete(_ context.Context, kind, ref string, count int, d time.Duration, err error) {
	h.logger.Debug("load done", "kind", kind, "source", ref, "members", count, "duration", d, "error", err)
}

func (h logHooks) OnLayoutStart(_ context.Context, descriptors int) {
	h.logger.Debug("layout start", "members", descriptors)
}

func (h logHooks) OnLayoutComplete(_ context.Context, placed, collisions int, d time.Duration, err error) {
	h.logger.Debug("layout done", "placed", placed, "collisions", collisions, "duration", d, "error", err)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "duration", d, "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, requestID, method, path string) {
	h.logger.Debug("request", "id", requestID, "method", method, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, requestID, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "id", requestID, "method", method, "path", path, "status", status, "duration", d)
}

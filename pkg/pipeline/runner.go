package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/reftree/pkg/cache"
	"github.com/matzehuels/reftree/pkg/events"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/observability"
	"github.com/matzehuels/reftree/pkg/source"
	"github.com/matzehuels/reftree/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger: it doesn't store
// pipeline results, so multiple goroutines can share one Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the expiry of layout and artifact entries when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	runID := uuid.NewString()
	opts.Logger = opts.Logger.With("run", runID[:8])

	result := &Result{
		RunID:     runID,
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	descs, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Descriptors = len(descs)
	result.CacheInfo.LoadHit = loadHit
	if data, err := tree.MarshalJSON(descs); err == nil {
		result.TreeHash = cache.Hash(data)
	}

	opts.Logger.Info("loaded members",
		"source", opts.Source.Ref(),
		"count", len(descs),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, descs, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Placed = len(l.Placements)
	result.Stats.Levels = l.Levels()
	result.Stats.Columns = l.Columns
	result.Stats.Collisions = len(l.Collisions)
	result.Stats.Orphans = len(l.Orphans)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"levels", l.Levels(),
		"columns", l.Columns,
		"placed", len(l.Placements),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads descriptors and reports whether they came from cache.
//
// Only database sources are cached: files are cheap to re-read and may change
// between runs without their path changing.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) ([]tree.Descriptor, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	kind := opts.Source.Kind
	if kind == "" {
		kind = source.Detect(opts.Source.Path)
	}
	ref := opts.Source.Ref()
	cacheable := kind == source.KindMongo
	cacheKey := r.Keyer.SourceKey(kind, ref)

	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var src tree.Source
			if err := json.Unmarshal(data, &src); err == nil {
				observability.Cache().OnCacheHit(ctx, "source")
				return src.Nodes, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "source")
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, kind, ref)
	start := time.Now()
	descs, err := source.Load(ctx, opts.Source)
	hooks.OnLoadComplete(ctx, kind, ref, len(descs), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		if data, err := tree.MarshalJSON(descs); err == nil {
			r.set(ctx, "source", cacheKey, data, cache.TTLSource)
		}
	}
	return descs, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) ([]tree.Descriptor, error) {
	descs, _, err := r.LoadWithCacheInfo(ctx, opts)
	return descs, err
}

// LayoutWithCacheInfo computes the grid for descs and reports whether it came
// from cache. A successful layout is announced on opts.Bus.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, descs []tree.Descriptor, opts Options) (grid.Layout, bool, error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	treeData, err := tree.MarshalJSON(descs)
	if err != nil {
		return grid.Layout{}, false, fmt.Errorf("serialize tree for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(treeData), opts.LayoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if cached, err := grid.UnmarshalLayout(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			logLayoutWarnings(opts.Logger, descs, cached)
			opts.Bus.Publish(events.LayoutReady)
			return cached, true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(descs))
	start := time.Now()
	l, err := GenerateLayout(descs, opts)
	hooks.OnLayoutComplete(ctx, len(l.Placements), len(l.Collisions), time.Since(start), err)
	if err != nil {
		return grid.Layout{}, false, err
	}

	if data, err := grid.MarshalLayout(l); err == nil {
		r.set(ctx, "layout", cacheKey, data, cache.TTLLayout)
	}
	opts.Bus.Publish(events.LayoutReady)
	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, descs []tree.Descriptor, opts Options) (grid.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, descs, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l grid.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := grid.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, l, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.set(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l grid.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// set writes to the cache. Failures are logged, not returned.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 && keyType != "source" {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Package pipeline provides the load → layout → render pipeline for reftree.
//
// The CLI, the preview server and the terminal viewer all go through this
// package so that a tree produces the same grid and the same artifacts no
// matter which entry point asked for it.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read member descriptors from a JSON file, widget markup or MongoDB
//  2. Layout: index the descriptors and place them on the grid
//  3. Render: produce SVG, HTML, JSON, DOT, PNG or PDF output
//
// Each stage is cached through a [cache.Cache] and can be run on its own.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{
//	    Source:  source.Spec{Path: "referrals.json"},
//	    Formats: []string{"svg", "html"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reftree/pkg/cache"
	"github.com/matzehuels/reftree/pkg/config"
	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/events"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
	"github.com/matzehuels/reftree/pkg/render/sink"
	"github.com/matzehuels/reftree/pkg/source"
	"github.com/matzehuels/reftree/pkg/source/mongo"
)

// Visualization types.
const (
	VizTypeGrid     = "grid"
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeGrid

// DefaultScale is the device scale factor used for PNG output.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats, in display order.
var ValidFormats = []string{FormatSVG, FormatHTML, FormatJSON, FormatDOT, FormatPNG, FormatPDF}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = []string{VizTypeGrid, VizTypeNodelink}

// nodelinkFormats are the formats the Graphviz renderer can produce.
var nodelinkFormats = []string{FormatSVG, FormatJSON, FormatDOT, FormatPNG, FormatPDF}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options
	Source  source.Spec `json:"-"`
	Refresh bool        `json:"refresh,omitempty"`

	// Layout options
	MinColumns int `json:"min_columns,omitempty"`

	// Render options
	VizType        string          `json:"viz_type,omitempty"`
	Formats        []string        `json:"formats,omitempty"`
	Metrics        measure.Metrics `json:"metrics"`
	Offset         float64         `json:"offset,omitempty"`
	Stroke         connector.Style `json:"stroke"`
	Theme          sink.Theme      `json:"theme"`
	ViewportWidth  float64         `json:"viewport_width,omitempty"`
	ViewportHeight float64         `json:"viewport_height,omitempty"`
	Popups         bool            `json:"popups,omitempty"`
	OpenTooltip    string          `json:"open,omitempty"`
	Title          string          `json:"title,omitempty"`
	Detailed       bool            `json:"detailed,omitempty"` // node-link labels carry level/column/meta
	Scale          float64         `json:"scale,omitempty"`
	ChromePath     string          `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	Bus    *events.Bus `json:"-"`
}

// FromConfig returns options seeded from a loaded configuration. Flags
// applied afterwards override these values.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Source: source.Spec{Mongo: mongo.Options{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			SortField:  cfg.Mongo.SortField,
		}},
		MinColumns:     cfg.Layout.MinColumns,
		Metrics:        cfg.Metrics,
		Offset:         cfg.Layout.ConnectorOffset,
		Stroke:         cfg.ConnectorStyle(),
		Theme:          cfg.Style.Theme,
		ViewportWidth:  cfg.Viewport.Width,
		ViewportHeight: cfg.Viewport.Height,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID correlates log lines and server responses of one run.
	RunID string

	// TreeHash is the content hash of the loaded descriptors.
	TreeHash string

	// Layout is the computed grid.
	Layout grid.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Descriptors int
	Placed      int
	Levels      int
	Columns     int
	Collisions  int
	Orphans     int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !slices.Contains(ValidVizTypes, vizType) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: %s)", vizType, strings.Join(ValidVizTypes, ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForLoad checks that a source is described.
func (o *Options) ValidateForLoad() error {
	o.setLogger()
	if o.Source.Kind == source.KindMongo {
		return o.Source.Mongo.Validate()
	}
	if o.Source.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source path is required")
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.MinColumns <= 0 {
		o.MinColumns = grid.DefaultMinColumns
	}
	o.setLogger()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Metrics == (measure.Metrics{}) {
		o.Metrics = measure.DefaultMetrics()
	}
	if o.Offset <= 0 {
		o.Offset = connector.DefaultOffset
	}
	if o.Stroke == (connector.Style{}) {
		o.Stroke = connector.DefaultStyle()
	}
	if o.Theme == (sink.Theme{}) {
		o.Theme = sink.DefaultTheme()
	}
	if o.ViewportWidth <= 0 || o.ViewportHeight <= 0 {
		o.ViewportWidth, o.ViewportHeight = sink.DefaultViewportWidth, sink.DefaultViewportHeight
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.IsNodelink() {
		for _, f := range o.Formats {
			if !slices.Contains(nodelinkFormats, f) {
				return errors.New(errors.ErrCodeInvalidFormat, "format %q is not available for nodelink diagrams", f)
			}
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	return o.ValidateForRender()
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{MinColumns: o.MinColumns}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	theme, _ := cache.HashJSON(o.Theme)
	return cache.ArtifactKeyOpts{
		Format:     format,
		VizType:    o.VizType,
		CardWidth:  o.Metrics.CardWidth,
		CardHeight: o.Metrics.CardHeight,
		ColGap:     o.Metrics.ColGap,
		RowGap:     o.Metrics.RowGap,
		Padding:    o.Metrics.Padding,
		Offset:     o.Offset,
		Stroke:     fmt.Sprintf("%s/%g/%s", o.Stroke.Color, o.Stroke.Width, o.Stroke.Cap),
		Theme:      theme,
		Viewport:   [2]int{int(o.ViewportWidth), int(o.ViewportHeight)},
		Popups:     o.Popups,
		Open:       o.OpenTooltip,
		Detailed:   o.Detailed,
		Scale:      o.Scale,
	}
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

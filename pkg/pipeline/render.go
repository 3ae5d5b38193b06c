package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
	"github.com/matzehuels/reftree/pkg/render"
	"github.com/matzehuels/reftree/pkg/render/browser"
	"github.com/matzehuels/reftree/pkg/render/nodelink"
	"github.com/matzehuels/reftree/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
// Zero-valued render options take their defaults.
func Render(ctx context.Context, l grid.Layout, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if opts.IsNodelink() {
		return renderNodelink(ctx, l, opts)
	}
	return renderGrid(ctx, l, opts)
}

// renderNodelink draws the tree through Graphviz.
func renderNodelink(ctx context.Context, l grid.Layout, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = grid.MarshalLayout(l)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderGrid draws the card grid with connectors.
func renderGrid(ctx context.Context, l grid.Layout, opts Options) (map[string][]byte, error) {
	sinkOpts := sinkOptions(opts)
	artifacts := make(map[string][]byte)

	var svg []byte
	staticSVG := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(l, sinkOpts...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = staticSVG()
		case FormatHTML:
			data, err = sink.RenderHTML(l, sinkOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(l, sinkOpts...)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
		case FormatPNG:
			data, err = rasterize(ctx, l, staticSVG, opts)
		case FormatPDF:
			data, err = render.ToPDF(ctx, staticSVG())
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported grid format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// rasterize produces PNG output. Headless Chrome renders the interactive page
// with its viewport opened to the full canvas; without Chrome the static SVG
// goes through rsvg-convert.
func rasterize(ctx context.Context, l grid.Layout, staticSVG func() []byte, opts Options) ([]byte, error) {
	if opts.ChromePath != "" || browser.Available() {
		w := measure.ContentWidth(l.Columns, opts.Metrics)
		h := measure.ContentHeight(len(l.Rows), opts.Metrics)
		page, err := sink.RenderHTML(l, append(sinkOptions(opts), sink.WithViewport(w, h))...)
		if err != nil {
			return nil, err
		}
		png, err := browser.Screenshot(ctx, page, browser.Options{
			ExecPath: opts.ChromePath,
			Scale:    opts.Scale,
			Width:    int(math.Ceil(w)) + 48,
			Height:   int(math.Ceil(h)) + 48,
		})
		if err == nil {
			return png, nil
		}
		opts.Logger.Warn("browser screenshot failed, falling back to rsvg-convert", "error", err)
	}
	return render.ToPNG(ctx, staticSVG(), opts.Scale)
}

// sinkOptions translates pipeline options into sink options.
func sinkOptions(opts Options) []sink.Option {
	o := []sink.Option{
		sink.WithMetrics(opts.Metrics),
		sink.WithStroke(opts.Stroke),
		sink.WithOffset(opts.Offset),
		sink.WithTheme(opts.Theme),
		sink.WithViewport(opts.ViewportWidth, opts.ViewportHeight),
	}
	if opts.Popups {
		o = append(o, sink.WithPopups())
	}
	if opts.OpenTooltip != "" {
		o = append(o, sink.WithOpenTooltip(opts.OpenTooltip))
	}
	if opts.Title != "" {
		o = append(o, sink.WithTitle(opts.Title))
	}
	return o
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/pipeline"
)

// renderFlags holds the command-line flags shared by render and visualize.
type renderFlags struct {
	output     string // output file (single format) or base path
	formatsStr string // comma-separated formats
	vizType    string // grid or nodelink
	popups     bool   // tooltips toggle on click in HTML output
	open       string // id of the tooltip shown open
	title      string // page title for HTML output
	detailed   bool   // node-link labels carry level, column and meta
	scale      float64
	chromePath string
	noCache    bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formatsStr, "format", "f", "", "output format(s): svg (default), html, json, dot, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&f.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: grid (default), nodelink")
	cmd.Flags().BoolVar(&f.popups, "popups", true, "toggle member tooltips on click (html)")
	cmd.Flags().StringVar(&f.open, "open", "", "member id whose tooltip starts open")
	cmd.Flags().StringVar(&f.title, "title", "", "page title (html)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show level, column and metadata (nodelink)")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "device scale factor for png output")
	cmd.Flags().StringVar(&f.chromePath, "chrome", "", "path to a Chrome or Chromium binary for png output")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply copies the flags onto opts and validates them.
func (f *renderFlags) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formatsStr)
	opts.VizType = f.vizType
	opts.Popups = f.popups
	opts.Title = f.title
	opts.Detailed = f.detailed
	opts.Scale = f.scale
	opts.ChromePath = f.chromePath
	if f.open != "" {
		if err := errors.ValidateNodeID(f.open); err != nil {
			return err
		}
		opts.OpenTooltip = f.open
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	return pipeline.ValidateVizType(opts.VizType)
}

// renderCommand creates the render command, a shortcut for layout + visualize.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      renderFlags
		src        sourceFlags
		refresh    bool
		minColumns int
	)

	cmd := &cobra.Command{
		Use:   "render [referrals.json|page.html]",
		Short: "Render a referral tree",
		Long: `Render a referral tree.

The render command loads members, computes the grid and renders it in one
step. Cards are placed level by level, centered under their parent, with
orthogonal connectors from every parent to its children.

Formats:
  svg   static drawing of cards and connectors
  html  pannable page with click-to-open tooltips
  json  measured cards, connector paths and viewport bounds
  dot   Graphviz source of the tree
  png   raster image (headless Chrome, or rsvg-convert)
  pdf   vector document (rsvg-convert)

Results are cached, so re-rendering an unchanged tree is immediate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := src.apply(&opts.Source, args); err != nil {
				return err
			}
			if err := flags.apply(&opts); err != nil {
				return err
			}
			if cmd.Flags().Changed("min-columns") {
				opts.MinColumns = minColumns
			}
			opts.Refresh = refresh
			return c.runRender(cmd, opts, flags)
		},
	}

	flags.register(cmd)
	src.register(cmd)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-read database sources instead of using cached members")
	cmd.Flags().IntVar(&minColumns, "min-columns", grid.DefaultMinColumns, "narrowest grid to produce")

	return cmd
}

// runRender executes the full pipeline and writes every artifact.
func (c *CLI) runRender(cmd *cobra.Command, opts pipeline.Options, flags renderFlags) error {
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout())

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spin.Start()

	result, err := runner.Execute(ctx, opts)
	spin.Stop()
	if err != nil {
		p.fail("Render failed")
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, flags.output, sourceBase(opts.Source))
	if err != nil {
		return err
	}
	prog.done("wrote artifacts", "count", len(paths), "run", result.RunID)

	p.success("Render complete")
	for _, path := range paths {
		p.file(path)
	}
	p.stats(result.Stats, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	p.layoutWarnings(result.Layout)
	return nil
}

// visualizeCommand creates the visualize command for rendering a saved layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout",
		Long: `Render a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it. The layout already fixes every card's level and column, so this
step only measures cards, routes connectors and writes the output.

Use 'render' as a shortcut to go directly from members to output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := flags.apply(&opts); err != nil {
				return err
			}
			return c.runVisualize(cmd, args[0], opts, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(cmd *cobra.Command, input string, opts pipeline.Options, flags renderFlags) error {
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout())

	l, err := grid.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %s...", opts.VizType))
	spin.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	spin.Stop()
	if err != nil {
		p.fail("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}

	base := strings.TrimSuffix(strings.TrimSuffix(input, filepath.Ext(input)), ".layout")
	paths, err := writeArtifacts(artifacts, opts.Formats, flags.output, base)
	if err != nil {
		return err
	}

	p.success("Visualization complete")
	for _, path := range paths {
		p.file(path)
	}
	p.stats(layoutStats(l), cacheHit)
	return nil
}

// basePath derives the base output path from the output flag and the input
// stem. A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return input
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to the file it is written to. A single format
// with an explicit output file is written there verbatim.
func outputPaths(formats []string, output, input string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// writeArtifacts writes artifacts in format order and returns the paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	targets := outputPaths(formats, output, input)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := targets[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, err
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

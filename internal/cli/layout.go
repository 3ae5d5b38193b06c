package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/pipeline"
)

// layoutCommand creates the layout command for computing the grid.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		refresh    bool
		minColumns int
		src        sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [referrals.json|page.html]",
		Short: "Compute the referral grid",
		Long: `Compute the referral grid.

The layout command reads member descriptors, finds the root, assigns each
member a level and a column and writes the finished grid as layout.json. The
layout can be rendered later with 'visualize'.

Members can come from a JSON file, a page carrying referral grid markup, or a
MongoDB collection (--kind mongo).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := src.apply(&opts.Source, args); err != nil {
				return err
			}
			if cmd.Flags().Changed("min-columns") {
				opts.MinColumns = minColumns
			}
			opts.Refresh = refresh
			return c.runLayout(cmd, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <source>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-read database sources instead of using cached members")
	cmd.Flags().IntVar(&minColumns, "min-columns", grid.DefaultMinColumns, "narrowest grid to produce")
	src.register(cmd)

	return cmd
}

// runLayout loads the members, computes the grid, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout())

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Loading members...")
	spin.Start()

	descs, err := runner.Load(ctx, opts)
	if err != nil {
		spin.Stop()
		p.fail("Load failed")
		return fmt.Errorf("load %s: %w", opts.Source.Ref(), err)
	}

	spin.SetMessage(fmt.Sprintf("Placing %d members...", len(descs)))
	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, descs, opts)
	spin.Stop()
	if err != nil {
		p.fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = sourceBase(opts.Source) + ".layout.json"
	}
	if err := grid.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	p.success("Layout complete")
	p.file(outputPath)
	p.stats(layoutStats(l), cacheHit)
	p.layoutWarnings(l)
	p.blank()
	p.nextStep("Render", appName+" visualize "+outputPath)

	return nil
}

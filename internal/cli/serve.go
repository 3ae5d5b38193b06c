package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/reftree/pkg/server"
)

// serveCommand creates the serve command for the preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		src     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [referrals.json|page.html]",
		Short: "Serve rendered diagrams over HTTP",
		Long: `Serve rendered diagrams over HTTP.

Every request re-reads the source, so edits to the file (or the collection)
show up on reload. Layouts and artifacts are cached by content.

Routes:
  /              pannable HTML page (?open=<id> opens a tooltip)
  /tree.html     same page, also under its own name
  /tree.svg      static SVG
  /tree.png      PNG
  /tree.dot      Graphviz source
  /nodelink.svg  node-link diagram
  /layout.json   measured cards, connectors and viewport bounds
  /healthz       liveness probe`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := src.apply(&opts.Source, args); err != nil {
				return err
			}
			if addr == "" {
				cfg, _ := c.config()
				addr = cfg.Serve.Addr
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			newPrinter(cmd.OutOrStdout()).info("Serving %s on %s", opts.Source.Ref(), StyleLink.Render("http://"+addr))
			return server.New(runner, opts, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)

	return cmd
}

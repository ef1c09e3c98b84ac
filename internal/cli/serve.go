package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lrvideckis/keygen/internal/server"
	"github.com/lrvideckis/keygen/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		config   string
		noCache  bool
		storeURI string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scoring and saved results over HTTP",
		Long: `Serve scoring and saved results over HTTP.

Endpoints:
  POST /api/score         score a corpus against a layout
  GET  /api/results       list saved layouts, best first
  GET  /api/results/{id}  fetch one saved layout
  GET  /healthz           liveness probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			setup, err := pipeline.LoadSetup(config)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			st, err := c.newStore(cmd, storeURI)
			if err != nil {
				return fmt.Errorf("open result store: %w", err)
			}
			defer st.Close(ctx)

			printInfo("Serving on %s", addr)
			return server.New(runner, setup, st, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&config, "config", "", "TOML config with geometry, weights and layouts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&storeURI, "store", "", "result store: empty for the local file store, or a mongodb:// URI")

	return cmd
}

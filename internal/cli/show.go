package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lrvideckis/keygen/pkg/pipeline"
	"github.com/lrvideckis/keygen/pkg/store"
)

// showCommand creates the show command for displaying layouts.
func (c *CLI) showCommand() *cobra.Command {
	var (
		config   string
		fromID   string
		storeURI string
	)

	cmd := &cobra.Command{
		Use:   "show [layout-name]",
		Short: "Render a layout as a spatial grid",
		Long: `Render a layout as a spatial grid.

Without arguments shows the reference layout. A positional argument names a
layout from the config; --id shows a saved result from the store instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.runShow(cmd.Context(), cmd, config, name, fromID, storeURI)
		},
	}

	cmd.Flags().StringVar(&config, "config", "", "TOML config with geometry, weights and layouts")
	cmd.Flags().StringVar(&fromID, "id", "", "show a saved result by ID")
	cmd.Flags().StringVar(&storeURI, "store", "", "result store: empty for the local file store, or a mongodb:// URI")

	return cmd
}

func (c *CLI) runShow(ctx context.Context, cmd *cobra.Command, config, name, fromID, storeURI string) error {
	setup, err := pipeline.LoadSetup(config)
	if err != nil {
		return err
	}

	if fromID != "" {
		st, err := c.newStore(cmd, storeURI)
		if err != nil {
			return fmt.Errorf("open result store: %w", err)
		}
		defer st.Close(ctx)

		rec, err := st.Get(ctx, fromID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no saved result with ID %s", fromID)
		}
		if err != nil {
			return err
		}
		lay, err := setup.ParseLayout(rec.Layout)
		if err != nil {
			return err
		}
		printKeyValue("saved", rec.CreatedAt.Format("2006-01-02 15:04"))
		printKeyValue("source", rec.Source)
		printKeyValue("average", fmt.Sprintf("%.6f per char", rec.Average))
		printNewline()
		fmt.Println(lay.String())
		return nil
	}

	lay := setup.Reference
	if name != "" {
		named, ok := setup.Layouts[name]
		if !ok {
			return fmt.Errorf("no layout named %q in configuration", name)
		}
		lay = named
	}
	fmt.Println(lay.String())
	return nil
}

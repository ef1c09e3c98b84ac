package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// bestCommand creates the best command for listing saved results.
func (c *CLI) bestCommand() *cobra.Command {
	var (
		limit    int
		storeURI string
	)

	cmd := &cobra.Command{
		Use:   "best",
		Short: "List saved layouts, best first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.newStore(cmd, storeURI)
			if err != nil {
				return fmt.Errorf("open result store: %w", err)
			}
			defer st.Close(ctx)

			recs, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No saved results yet; run a search with --save")
				return nil
			}

			for i, rec := range recs {
				fmt.Println(StyleTitle.Render(fmt.Sprintf("#%d", i+1)) + "  " +
					StyleNumber.Render(fmt.Sprintf("%.6f per char", rec.Average)) + "  " +
					StyleDim.Render(rec.CreatedAt.Format("2006-01-02 15:04")) + "  " +
					StyleDim.Render(rec.Source))
				printDetail("id %s", rec.ID)
			}
			printNewline()
			printNextStep("Inspect one", "keygen show --id <id>")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum results to list")
	cmd.Flags().StringVar(&storeURI, "store", "", "result store: empty for the local file store, or a mongodb:// URI")

	return cmd
}

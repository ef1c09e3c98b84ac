package cli

import (
	"github.com/spf13/cobra"

	"github.com/lrvideckis/keygen/pkg/pipeline"
	"github.com/lrvideckis/keygen/pkg/search"
)

// refineCommand creates the refine command for exhaustive local search.
func (c *CLI) refineCommand() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "refine <corpus>",
		Short: "Exhaustively hill-climb a layout over its single-swap neighborhood",
		Long: `Exhaustively hill-climb a layout over its single-swap neighborhood.

Where 'run' explores stochastically, refine scores every layout one swap away
from the current one and adopts the best improvement, repeating until no swap
helps. Deterministic and complete over the bounded neighborhood; the right
finishing pass after annealing has converged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.OptimizeOptions{
				Mode: pipeline.ModeRefine,
				Search: search.Options{
					Top:   flags.top,
					Swaps: flags.swaps,
				},
				Start: flags.start,
			}
			return c.runSearch(cmd, args[0], flags, opts, false)
		},
	}

	flags.register(cmd)

	return cmd
}

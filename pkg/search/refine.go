package search

import (
	"context"

	"github.com/lrvideckis/keygen/pkg/keyboard"
	"github.com/lrvideckis/keygen/pkg/penalty"
)

// Refine exhaustively hill-climbs from base: each round scores every layout
// in the full single-swap neighborhood and adopts the best improvement,
// stopping when no neighbor beats the current layout. Unlike Anneal this is
// deterministic and complete over the bounded neighborhood, which makes it
// the right finishing pass for a layout annealing already likes.
//
// Returns the opts.Top best layouts seen across all rounds, best first.
// Cancelling ctx stops between candidates and returns what was collected.
func Refine(ctx context.Context, table penalty.QuartadTable, corpusLen int, base keyboard.Layout, model *penalty.Model, opts Options) ([]Candidate, error) {
	opts.normalize()

	board := newLeaderboard(opts.Top)
	current := score(model, table, corpusLen, base.Clone())
	board.offer(current)

	for round := 0; ; round++ {
		improved := false
		neighbors := keyboard.SingleSwaps(current.Layout)
		bestNext := current
		examined := 0
		for {
			lay, ok := neighbors.Next()
			if !ok {
				break
			}
			if examined%128 == 0 && ctx.Err() != nil {
				return board.best, ctx.Err()
			}
			examined++
			cand := score(model, table, corpusLen, lay)
			board.offer(cand)
			if cand.Total < bestNext.Total {
				bestNext = cand
			}
		}
		if bestNext.Total < current.Total {
			current = bestNext
			improved = true
		}
		opts.Logger.Info("refinement round",
			"round", round, "examined", examined, "average", current.Average, "improved", improved)
		if !improved {
			return board.best, nil
		}
	}
}

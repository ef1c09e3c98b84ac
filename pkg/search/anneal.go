package search

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lrvideckis/keygen/pkg/keyboard"
	"github.com/lrvideckis/keygen/pkg/penalty"
)

// Anneal runs opts.Restarts independent simulated-annealing chains from base
// and returns the opts.Top best layouts found across all of them, best
// first. Each chain mutates its current layout with 1..opts.Swaps random
// swaps per iteration and accepts worse candidates with the Metropolis
// probability exp(-Δ/(T·cost)) under a geometric cooling schedule; dividing
// by the current cost keeps the schedule scale-free across corpora.
//
// The quartad table is only read; each chain owns its layouts, so chains run
// concurrently. Cancelling ctx stops all chains and returns the best
// candidates collected so far along with ctx's error.
func Anneal(ctx context.Context, table penalty.QuartadTable, corpusLen int, base keyboard.Layout, model *penalty.Model, opts Options) ([]Candidate, error) {
	seed := opts.normalize()

	var mu sync.Mutex
	board := newLeaderboard(opts.Top)

	g, ctx := errgroup.WithContext(ctx)
	for restart := 0; restart < opts.Restarts; restart++ {
		g.Go(func() error {
			local := annealChain(ctx, table, corpusLen, base, model, opts, restart, seed+int64(restart))
			mu.Lock()
			board.merge(local)
			mu.Unlock()
			return ctx.Err()
		})
	}
	err := g.Wait()
	return board.best, err
}

// annealChain runs one chain to completion or cancellation and returns its
// local leaderboard.
func annealChain(ctx context.Context, table penalty.QuartadTable, corpusLen int, base keyboard.Layout, model *penalty.Model, opts Options, restart int, seed int64) *leaderboard {
	rng := rand.New(rand.NewSource(seed))
	board := newLeaderboard(opts.Top)

	current := score(model, table, corpusLen, base.Clone())
	board.offer(current)
	best := current.Total

	temp := opts.InitialTemp
	for i := 0; i < opts.Iterations; i++ {
		// Cancellation check is cheap relative to a scoring pass.
		if i%64 == 0 && ctx.Err() != nil {
			return board
		}

		cand := current.Layout.Clone()
		cand.Shuffle(1+rng.Intn(opts.Swaps), rng)
		next := score(model, table, corpusLen, cand)

		delta := next.Total - current.Total
		if delta < 0 || rng.Float64() < math.Exp(-delta/(temp*current.Total)) {
			current = next
			board.offer(current)
			if current.Total < best {
				best = current.Total
				opts.Logger.Debug("new chain best",
					"restart", restart, "iteration", i, "average", current.Average)
			}
		}
		temp *= opts.Cooling

		if opts.Progress != nil && i%100 == 0 {
			opts.Progress(Update{
				Restart:   restart,
				Iteration: i,
				Current:   current.Average,
				Best:      bestAverage(board),
			})
		}
	}
	return board
}

func bestAverage(board *leaderboard) float64 {
	if len(board.best) == 0 {
		return 0
	}
	return board.best[0].Average
}

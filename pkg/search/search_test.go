package search

import (
	"context"
	"testing"

	"github.com/lrvideckis/keygen/pkg/keyboard"
	"github.com/lrvideckis/keygen/pkg/penalty"
)

func testFixture() (penalty.QuartadTable, int, keyboard.Layout, *penalty.Model) {
	lay := keyboard.Reference()
	corpus := "the quick brown fox jumps over the lazy dog"
	table := penalty.CompileQuartads(corpus, lay.PositionMap())
	model := penalty.NewModel(lay.Geometry(), penalty.DefaultWeights())
	return table, len(corpus), lay, model
}

func candidateAt(t *testing.T, base keyboard.Layout, m *penalty.Model, table penalty.QuartadTable, corpusLen int, swaps ...keyboard.Swap) Candidate {
	t.Helper()
	lay := base.Clone()
	for _, s := range swaps {
		lay.Swap(s.I, s.J)
	}
	return score(m, table, corpusLen, lay)
}

func TestLeaderboardKeepsBest(t *testing.T) {
	table, n, base, m := testFixture()
	eligible := base.Geometry().EligiblePositions()

	lb := newLeaderboard(2)
	a := candidateAt(t, base, m, table, n)
	b := candidateAt(t, base, m, table, n, keyboard.Swap{I: eligible[0], J: eligible[4]})
	c := candidateAt(t, base, m, table, n, keyboard.Swap{I: eligible[4], J: eligible[9]})
	for _, cand := range []Candidate{a, b, c} {
		lb.offer(cand)
	}

	if len(lb.best) != 2 {
		t.Fatalf("leaderboard holds %d, want 2", len(lb.best))
	}
	if lb.best[0].Total > lb.best[1].Total {
		t.Error("leaderboard must be sorted best first")
	}

	worst := a
	for _, cand := range []Candidate{b, c} {
		if cand.Total > worst.Total {
			worst = cand
		}
	}
	for _, kept := range lb.best {
		if kept.Total == worst.Total {
			t.Error("leaderboard kept the worst of three candidates")
		}
	}
}

func TestLeaderboardDeduplicates(t *testing.T) {
	table, n, base, m := testFixture()

	lb := newLeaderboard(3)
	cand := candidateAt(t, base, m, table, n)
	lb.offer(cand)
	lb.offer(cand)
	if len(lb.best) != 1 {
		t.Errorf("identical layouts occupy %d slots, want 1", len(lb.best))
	}
}

func TestAnnealReturnsSortedCandidates(t *testing.T) {
	table, n, base, m := testFixture()

	opts := Options{Iterations: 60, Restarts: 2, Top: 3, Seed: 1}
	cands, err := Anneal(context.Background(), table, n, base, m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) == 0 || len(cands) > 3 {
		t.Fatalf("got %d candidates, want 1..3", len(cands))
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].Total < cands[i-1].Total {
			t.Fatal("candidates must be sorted best first")
		}
	}
	// Annealing from the reference can never end worse than the reference.
	baseline := score(m, table, n, base)
	if cands[0].Total > baseline.Total {
		t.Errorf("best %f worse than baseline %f", cands[0].Total, baseline.Total)
	}
}

func TestAnnealDeterministicWithSeed(t *testing.T) {
	table, n, base, m := testFixture()

	opts := Options{Iterations: 40, Restarts: 2, Top: 1, Seed: 42}
	a, err := Anneal(context.Background(), table, n, base, m, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Anneal(context.Background(), table, n, base, m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if a[0].Total != b[0].Total {
		t.Errorf("same seed produced %f and %f", a[0].Total, b[0].Total)
	}
}

func TestAnnealHonorsCancellation(t *testing.T) {
	table, n, base, m := testFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := Options{Iterations: 100000, Restarts: 2, Top: 1, Seed: 1}
	cands, err := Anneal(ctx, table, n, base, m, opts)
	if err == nil {
		t.Fatal("cancelled context should surface an error")
	}
	if len(cands) == 0 {
		t.Error("cancellation should still report the candidates collected so far")
	}
}

func TestAnnealReportsProgress(t *testing.T) {
	table, n, base, m := testFixture()

	updates := 0
	opts := Options{
		Iterations: 250,
		Restarts:   1,
		Top:        1,
		Seed:       1,
		Progress: func(u Update) {
			updates++
			if u.Restart != 0 {
				t.Errorf("unexpected restart index %d", u.Restart)
			}
		},
	}
	if _, err := Anneal(context.Background(), table, n, base, m, opts); err != nil {
		t.Fatal(err)
	}
	if updates == 0 {
		t.Error("no progress updates delivered")
	}
}

func TestRefineNeverRegresses(t *testing.T) {
	table, n, base, m := testFixture()

	opts := Options{Top: 1}
	cands, err := Refine(context.Background(), table, n, base, m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	baseline := score(m, table, n, base)
	if cands[0].Total > baseline.Total {
		t.Errorf("refined %f worse than baseline %f", cands[0].Total, baseline.Total)
	}

	// A fixed point: refining the winner again finds nothing better.
	again, err := Refine(context.Background(), table, n, cands[0].Layout, m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if again[0].Total != cands[0].Total {
		t.Errorf("refinement is not a fixed point: %f then %f", cands[0].Total, again[0].Total)
	}
}

func TestRefineHonorsCancellation(t *testing.T) {
	table, n, base, m := testFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Refine(ctx, table, n, base, m, Options{Top: 1})
	if err == nil {
		t.Fatal("cancelled context should surface an error")
	}
}

func TestOptionsNormalize(t *testing.T) {
	var o Options
	seed := o.normalize()
	if seed == 0 {
		t.Error("a zero seed must be replaced by a clock-derived one")
	}
	if o.Iterations != DefaultIterations || o.Restarts != DefaultRestarts ||
		o.Swaps != DefaultSwaps || o.Top != DefaultTop {
		t.Errorf("defaults not applied: %+v", o)
	}

	o = Options{Seed: 7}
	if got := o.normalize(); got != 7 {
		t.Errorf("explicit seed rewritten to %d", got)
	}
}

// Package search drives the layout optimizer: stochastic simulated annealing
// over random swap mutations, and exhaustive hill-climb refinement over the
// full single-swap neighborhood. The quartad table is read-only and shared;
// every worker owns its candidate layouts and position maps, so restarts run
// in parallel without coordination beyond result collection.
package search

import (
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lrvideckis/keygen/pkg/keyboard"
	"github.com/lrvideckis/keygen/pkg/penalty"
)

// Default knobs. Callers override via Options; the search honors them as
// parameters and does not interpret them.
const (
	DefaultIterations = 20000
	DefaultRestarts   = 4
	DefaultSwaps      = 3
	DefaultTop        = 1

	// DefaultInitialTemp and DefaultCooling give a geometric schedule that
	// decays to roughly 1e-4 of the initial temperature over the default
	// iteration count.
	DefaultInitialTemp = 1.0
	DefaultCooling     = 0.9995
)

// Options configures a search run.
type Options struct {
	// Iterations per restart (annealing only).
	Iterations int
	// Restarts is the number of independent parallel annealing chains.
	Restarts int
	// Swaps is the maximum number of random swaps per mutation.
	Swaps int
	// Top is how many best candidates to retain.
	Top int
	// InitialTemp and Cooling define the geometric temperature schedule.
	InitialTemp float64
	Cooling     float64
	// Seed makes runs reproducible; 0 derives a seed from the clock.
	Seed int64
	// Logger receives progress logs; nil discards them.
	Logger *log.Logger
	// Progress, when set, receives periodic updates for live display.
	Progress func(Update)
}

// Update is a point-in-time progress report from one annealing chain.
type Update struct {
	Restart   int
	Iteration int
	Current   float64 // average penalty of the current layout
	Best      float64 // best average penalty seen by this chain
}

// Candidate is one scored layout.
type Candidate struct {
	Layout  keyboard.Layout
	Total   float64
	Average float64
}

// normalize fills defaults in place and returns the effective seed.
func (o *Options) normalize() int64 {
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.Restarts <= 0 {
		o.Restarts = DefaultRestarts
	}
	if o.Swaps <= 0 {
		o.Swaps = DefaultSwaps
	}
	if o.Top <= 0 {
		o.Top = DefaultTop
	}
	if o.InitialTemp <= 0 {
		o.InitialTemp = DefaultInitialTemp
	}
	if o.Cooling <= 0 || o.Cooling >= 1 {
		o.Cooling = DefaultCooling
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Seed == 0 {
		return time.Now().UnixNano()
	}
	return o.Seed
}

// leaderboard keeps the best candidates seen, smallest total first, capped
// at a fixed size. Layouts are deduplicated by their textual form so two
// chains converging on the same layout occupy one slot.
type leaderboard struct {
	limit int
	seen  map[string]bool
	best  []Candidate
}

func newLeaderboard(limit int) *leaderboard {
	return &leaderboard{limit: limit, seen: make(map[string]bool)}
}

func (lb *leaderboard) offer(c Candidate) {
	text, _ := c.Layout.MarshalText()
	key := string(text)
	if lb.seen[key] {
		return
	}
	if len(lb.best) == lb.limit && c.Total >= lb.best[lb.limit-1].Total {
		return
	}
	lb.seen[key] = true
	lb.best = append(lb.best, c)
	sort.Slice(lb.best, func(i, j int) bool { return lb.best[i].Total < lb.best[j].Total })
	if len(lb.best) > lb.limit {
		drop, _ := lb.best[lb.limit].Layout.MarshalText()
		delete(lb.seen, string(drop))
		lb.best = lb.best[:lb.limit]
	}
}

func (lb *leaderboard) merge(other *leaderboard) {
	for _, c := range other.best {
		lb.offer(c)
	}
}

// score evaluates one candidate without diagnostics.
func score(m *penalty.Model, table penalty.QuartadTable, corpusLen int, lay keyboard.Layout) Candidate {
	r := m.ScoreCorpus(table, corpusLen, lay, nil)
	return Candidate{Layout: lay, Total: r.Total, Average: r.Average}
}

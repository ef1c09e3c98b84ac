package penalty

import (
	"fmt"
	"sort"
	"strings"
)

// Breakdown is an Observer that accumulates per-term totals and remembers
// which windows contributed the most to each term. It exists purely for
// diagnostics; scoring math never reads it.
type Breakdown struct {
	totals   map[Term]float64
	highKeys map[Term]map[string]float64
}

// NewBreakdown returns an empty breakdown.
func NewBreakdown() *Breakdown {
	return &Breakdown{
		totals:   make(map[Term]float64),
		highKeys: make(map[Term]map[string]float64),
	}
}

// Record accumulates one cost contribution.
func (b *Breakdown) Record(term Term, window string, cost float64) {
	b.totals[term] += cost
	hk := b.highKeys[term]
	if hk == nil {
		hk = make(map[string]float64)
		b.highKeys[term] = hk
	}
	hk[window] += cost
}

// Total returns the accumulated cost of one term.
func (b *Breakdown) Total(term Term) float64 {
	return b.totals[term]
}

// Sum returns the cost accumulated across all terms. When the breakdown
// observed a full ScoreCorpus pass this equals the pass's Result.Total.
func (b *Breakdown) Sum() float64 {
	s := 0.0
	for _, v := range b.totals {
		s += v
	}
	return s
}

// windowCost pairs a window with its accumulated cost for one term.
type windowCost struct {
	Window string
	Cost   float64
}

// TopWindows returns the n windows contributing the highest absolute cost to
// term, most expensive first.
func (b *Breakdown) TopWindows(term Term, n int) []windowCost {
	hk := b.highKeys[term]
	out := make([]windowCost, 0, len(hk))
	for w, c := range hk {
		out = append(out, windowCost{Window: w, Cost: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return abs(out[i].Cost) > abs(out[j].Cost)
		}
		return out[i].Window < out[j].Window
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// String renders every term total in evaluation order, one per line.
func (b *Breakdown) String() string {
	var sb strings.Builder
	for _, term := range Terms {
		fmt.Fprintf(&sb, "%s: %.4f\n", term, b.totals[term])
	}
	return sb.String()
}

package penalty

import (
	"math"

	"github.com/lrvideckis/keygen/pkg/keyboard"
)

// Term names one component of the cost model.
type Term string

// The model's terms, in increasing history order. One- and two-key terms
// always apply when their history exists; three- and four-key terms fire
// only for the hand patterns they describe.
const (
	TermBase           Term = "base"              // static per-cell ergonomic cost
	TermSwipe          Term = "swipe"             // flat cost of swiping instead of tapping
	TermSwipeDirection Term = "swipe direction"   // swipe runs against the performing hand
	TermTravel         Term = "travel"            // Fitts travel from the previous key
	TermSwipeFinish    Term = "swipe finish"      // completing the previous swipe before moving on
	TermSkipOne        Term = "same hand skip"    // same-hand travel across one opposite-hand key
	TermSkipTwo        Term = "same hand stretch" // same-hand travel across two opposite-hand keys
	TermAlternate3     Term = "alternating hand"  // bonus: three keys strictly alternating
	TermAlternate4     Term = "full alternation"  // bonus: four keys strictly alternating
)

// Terms lists every term in evaluation order.
var Terms = []Term{
	TermBase, TermSwipe, TermSwipeDirection,
	TermTravel, TermSwipeFinish,
	TermSkipOne, TermSkipTwo,
	TermAlternate3, TermAlternate4,
}

// Weights holds every fixed coefficient of the cost model. The defaults are
// one tuning of the general model; alternative tunings are configuration,
// not separate implementations. Nothing here is learned.
type Weights struct {
	// Swipe is the flat surcharge for a swipe over a tap; AgainstHand is
	// added when the direction does not suit the performing thumb.
	Swipe       float64 `toml:"swipe"`
	AgainstHand float64 `toml:"against_hand"`

	// MinTapTime (the Fitts floor A) and FittsK (the fitted constant k)
	// parameterize travel time: max(A, (1/k)·log2(distance/width + 1)).
	MinTapTime float64 `toml:"min_tap_time"`
	FittsK     float64 `toml:"fitts_k"`

	// SkipOne and SkipTwo discount same-hand travel that skips one or two
	// intervening opposite-hand keystrokes; the intervening stroke buys
	// recovery time, so the travel counts at a reduced weight.
	SkipOne float64 `toml:"skip_one"`
	SkipTwo float64 `toml:"skip_two"`

	// Alternate3 and Alternate4 reward strict hand alternation over three
	// and four consecutive keys. Negative: they are bonuses.
	Alternate3 float64 `toml:"alternate3"`
	Alternate4 float64 `toml:"alternate4"`
}

// DefaultWeights returns the built-in tuning.
func DefaultWeights() Weights {
	return Weights{
		Swipe:       0.45,
		AgainstHand: 0.25,
		MinTapTime:  0.12,
		FittsK:      4.9,
		SkipOne:     0.5,
		SkipTwo:     0.25,
		Alternate3:  -0.15,
		Alternate4:  -0.1,
	}
}

// Observer receives per-window, per-term cost contributions when detailed
// diagnostics are requested. Scoring itself never depends on the observer;
// pass nil to skip diagnostic bookkeeping entirely.
type Observer interface {
	Record(term Term, window string, cost float64)
}

// Model scores quartads against candidate layouts. It is pure and safe for
// concurrent use: every method only reads the model and its arguments.
type Model struct {
	geo *keyboard.Geometry
	w   Weights
}

// NewModel builds a model for one geometry and weight tuning.
func NewModel(geo *keyboard.Geometry, w Weights) *Model {
	return &Model{geo: geo, w: w}
}

// Weights returns the model's coefficient tuning.
func (m *Model) Weights() Weights { return m.w }

// Result is the outcome of scoring a full quartad table.
type Result struct {
	// Total is the absolute summed cost, each window weighted by its count.
	Total float64
	// Average is Total divided by the corpus length in bytes. For an empty
	// corpus it is defined as 0: an empty corpus has zero windows and zero
	// total, and 0 keeps NaN out of comparisons.
	Average float64
	// CorpusLen echoes the corpus length so callers can tell a zero-cost
	// corpus from a missing one.
	CorpusLen int
}

// ScoreCorpus folds every (window, count) pair through the single-window
// scorer against lay. The layout's own position map is built here: the
// physical positions of characters change per candidate; only the counts in
// table are fixed. When obs is non-nil every cost contribution is reported
// to it, and Total equals the sum over terms exactly.
func (m *Model) ScoreCorpus(table QuartadTable, corpusLen int, lay keyboard.Layout, obs Observer) Result {
	pm := lay.PositionMap()
	total := 0.0
	for window, count := range table {
		total += m.scoreWindow(window, count, lay, pm, obs)
	}
	avg := 0.0
	if corpusLen > 0 {
		avg = total / float64(corpusLen)
	}
	return Result{Total: total, Average: avg, CorpusLen: corpusLen}
}

// fitts is the Fitts's-Law movement time with the minimum tap-time floor.
func (m *Model) fitts(distance, width float64) float64 {
	t := math.Log2(distance/width+1) / m.w.FittsK
	return math.Max(m.w.MinTapTime, t)
}

// effective returns where the previous keystroke left the thumb: the cell
// center for a tap, the swipe endpoint otherwise.
func (m *Model) effective(p keyboard.Position, lay keyboard.Layout) keyboard.Point {
	if m.geo.IsTap(p) {
		return m.geo.Coord(p)
	}
	return m.geo.SwipeEndpoint(p, &lay)
}

// targetWidth is the Fitts target width of the current keystroke: unit width
// for taps, occupancy-derived for swipes.
func (m *Model) targetWidth(p keyboard.Position, lay keyboard.Layout) float64 {
	if m.geo.IsTap(p) {
		return 1
	}
	_, w := m.geo.SwipeTarget(p, &lay)
	return w
}

// scoreWindow scores one window. Characters are resolved back to front:
// offset 0 is the current keystroke, offsets -1..-3 its history. A term
// whose history is unavailable (the window is shorter, or an earlier
// character is not on the layout) is skipped; that is normal at text
// boundaries, not an error.
func (m *Model) scoreWindow(window string, count int, lay keyboard.Layout, pm *keyboard.PositionMap, obs Observer) float64 {
	runes := []rune(window)
	if len(runes) == 0 {
		return 0
	}
	curr, ok := pm.Lookup(runes[len(runes)-1])
	if !ok {
		return 0
	}
	history := make([]keyboard.Position, 0, 3)
	for i := len(runes) - 2; i >= 0; i-- {
		p, ok := pm.Lookup(runes[i])
		if !ok {
			break
		}
		history = append(history, p)
	}

	geo := m.geo
	n := float64(count)
	total := 0.0
	add := func(term Term, cost float64) {
		total += cost
		if obs != nil {
			obs.Record(term, window, cost)
		}
	}

	// One-key terms.
	add(TermBase, geo.CellBaseCost(curr)*n)
	if !geo.IsTap(curr) {
		add(TermSwipe, m.w.Swipe*n)
		if !geo.SwipeSuitsHand(curr) {
			add(TermSwipeDirection, m.w.AgainstHand*n)
		}
	}

	// Two-key terms.
	if len(history) < 1 {
		return total
	}
	old1 := history[0]
	d := m.effective(old1, lay).Dist(geo.Coord(curr))
	add(TermTravel, m.fitts(d, m.targetWidth(curr, lay))*n)
	if !geo.IsTap(old1) {
		_, w := geo.SwipeTarget(old1, &lay)
		add(TermSwipeFinish, (m.fitts(geo.SwipeDistance, w)-m.w.MinTapTime)*n)
	}

	// Three-key terms.
	if len(history) < 2 {
		return total
	}
	old2 := history[1]
	if !geo.IsSpace(curr) && !geo.IsSpace(old1) && !geo.IsSpace(old2) {
		if geo.SameHand(old2, curr) && !geo.SameHand(old1, curr) {
			d := m.effective(old2, lay).Dist(geo.Coord(curr))
			add(TermSkipOne, m.w.SkipOne*m.fitts(d, m.targetWidth(curr, lay))*n)
		}
		if !geo.SameHand(old2, old1) && !geo.SameHand(old1, curr) {
			add(TermAlternate3, m.w.Alternate3*n)
		}
	}

	// Four-key terms.
	if len(history) < 3 {
		return total
	}
	old3 := history[2]
	if !geo.IsSpace(curr) && !geo.IsSpace(old1) && !geo.IsSpace(old2) && !geo.IsSpace(old3) {
		if geo.SameHand(old3, curr) && !geo.SameHand(old1, curr) && !geo.SameHand(old2, curr) {
			d := m.effective(old3, lay).Dist(geo.Coord(curr))
			add(TermSkipTwo, m.w.SkipTwo*m.fitts(d, m.targetWidth(curr, lay))*n)
		}
		if !geo.SameHand(old3, old2) && !geo.SameHand(old2, old1) && !geo.SameHand(old1, curr) {
			add(TermAlternate4, m.w.Alternate4*n)
		}
	}

	return total
}

package penalty

import (
	"math"
	"testing"

	"github.com/lrvideckis/keygen/pkg/keyboard"
)

const eps = 1e-9

func defaultModel() (*Model, keyboard.Layout) {
	lay := keyboard.Reference()
	return NewModel(lay.Geometry(), DefaultWeights()), lay
}

func scoreOne(t *testing.T, window string) (Result, *Breakdown) {
	t.Helper()
	m, lay := defaultModel()
	bd := NewBreakdown()
	res := m.ScoreCorpus(QuartadTable{window: 1}, len(window), lay, bd)
	return res, bd
}

func TestScoreTapOnly(t *testing.T) {
	// 'e' sits on a tap of a 0.4-cost cell; a one-character window carries
	// only the base term.
	res, bd := scoreOne(t, "e")
	if math.Abs(res.Total-0.4) > eps {
		t.Errorf("Total = %f, want 0.4", res.Total)
	}
	if math.Abs(bd.Total(TermBase)-0.4) > eps {
		t.Errorf("base term = %f, want 0.4", bd.Total(TermBase))
	}
	if bd.Total(TermSwipe) != 0 {
		t.Error("a tap must not pay the swipe term")
	}
}

func TestScoreSwipeSuitingHand(t *testing.T) {
	// ';' is a swipe in a comfortable direction: base + flat swipe cost,
	// no direction surcharge.
	res, bd := scoreOne(t, ";")
	if math.Abs(res.Total-(1.6+0.45)) > eps {
		t.Errorf("Total = %f, want %f", res.Total, 1.6+0.45)
	}
	if bd.Total(TermSwipeDirection) != 0 {
		t.Error("comfortable swipe must not pay the direction term")
	}
}

func TestScoreSwipeAgainstHand(t *testing.T) {
	// '&' swipes against its hand and pays the surcharge on top.
	res, bd := scoreOne(t, "&")
	if math.Abs(res.Total-(0.4+0.45+0.25)) > eps {
		t.Errorf("Total = %f, want %f", res.Total, 0.4+0.45+0.25)
	}
	if math.Abs(bd.Total(TermSwipeDirection)-0.25) > eps {
		t.Errorf("direction term = %f, want 0.25", bd.Total(TermSwipeDirection))
	}
}

func TestScoreTravelFloor(t *testing.T) {
	// Repeating a key travels zero distance; the Fitts floor applies.
	res, bd := scoreOne(t, "ee")
	w := DefaultWeights()
	if math.Abs(bd.Total(TermTravel)-w.MinTapTime) > eps {
		t.Errorf("travel term = %f, want the floor %f", bd.Total(TermTravel), w.MinTapTime)
	}
	if math.Abs(res.Total-(0.4+w.MinTapTime)) > eps {
		t.Errorf("Total = %f, want %f", res.Total, 0.4+w.MinTapTime)
	}
}

func TestScoreTravelAdjacentTaps(t *testing.T) {
	// 't' and 'e' are taps one cell apart: travel is log2(2)/k, above the
	// floor.
	_, bd := scoreOne(t, "te")
	w := DefaultWeights()
	want := math.Log2(2) / w.FittsK
	if math.Abs(bd.Total(TermTravel)-want) > eps {
		t.Errorf("travel term = %f, want %f", bd.Total(TermTravel), want)
	}
}

func TestScoreAlternation(t *testing.T) {
	// 'a' (right), 't' (left), 'e' (right) alternate strictly: the bonus
	// fires and skip-one travel is charged for the a→e reach.
	_, bd := scoreOne(t, "ate")
	w := DefaultWeights()
	if math.Abs(bd.Total(TermAlternate3)-w.Alternate3) > eps {
		t.Errorf("alternation bonus = %f, want %f", bd.Total(TermAlternate3), w.Alternate3)
	}
	if bd.Total(TermSkipOne) <= 0 {
		t.Errorf("skip-one term = %f, want > 0", bd.Total(TermSkipOne))
	}
}

func TestScoreSameHandRunHasNoBonus(t *testing.T) {
	// 's', 't', 'e' are struck by mixed hands but never alternate
	// strictly; no bonus, no skip terms beyond what the pattern earns.
	_, bd := scoreOne(t, "tse")
	if bd.Total(TermAlternate3) != 0 {
		t.Error("no strict alternation, no bonus")
	}
}

func TestScoreWindowSkipsUnplacedHistory(t *testing.T) {
	// '(' is not on the layout. As the current key the window scores zero;
	// as history it truncates the lookback but the current key still scores.
	res, _ := scoreOne(t, "a(")
	if res.Total != 0 {
		t.Errorf("unplaceable current key scored %f", res.Total)
	}

	res2, bd := scoreOne(t, "(e")
	if math.Abs(res2.Total-0.4) > eps {
		t.Errorf("Total = %f, want just the base term", res2.Total)
	}
	if bd.Total(TermTravel) != 0 {
		t.Error("travel must be skipped when the previous key is unplaced")
	}
}

func TestScoreCorpusTotalsMatchBreakdown(t *testing.T) {
	m, lay := defaultModel()
	corpus := "the quick brown fox jumps over the lazy dog; pack my box?"
	table := CompileQuartads(corpus, lay.PositionMap())

	bd := NewBreakdown()
	res := m.ScoreCorpus(table, len(corpus), lay, bd)

	if math.Abs(res.Total-bd.Sum()) > 1e-6 {
		t.Errorf("Total %f != breakdown sum %f", res.Total, bd.Sum())
	}
	if math.Abs(res.Average-res.Total/float64(len(corpus))) > eps {
		t.Errorf("Average %f != Total/len %f", res.Average, res.Total/float64(len(corpus)))
	}
	if res.CorpusLen != len(corpus) {
		t.Errorf("CorpusLen = %d, want %d", res.CorpusLen, len(corpus))
	}
}

func TestScoreCorpusObserverOptional(t *testing.T) {
	m, lay := defaultModel()
	table := CompileQuartads("hello world", lay.PositionMap())

	with := m.ScoreCorpus(table, 11, lay, NewBreakdown())
	without := m.ScoreCorpus(table, 11, lay, nil)
	if with.Total != without.Total {
		t.Errorf("observer changed the score: %f vs %f", with.Total, without.Total)
	}
}

func TestScoreCorpusEmpty(t *testing.T) {
	m, lay := defaultModel()
	res := m.ScoreCorpus(QuartadTable{}, 0, lay, nil)
	if res.Total != 0 || res.Average != 0 {
		t.Errorf("empty corpus scored %+v, want zeros", res)
	}
}

func TestBreakdownTopWindows(t *testing.T) {
	bd := NewBreakdown()
	bd.Record(TermBase, "aa", 1.0)
	bd.Record(TermBase, "bb", 3.0)
	bd.Record(TermBase, "cc", 2.0)

	top := bd.TopWindows(TermBase, 2)
	if len(top) != 2 {
		t.Fatalf("TopWindows returned %d entries, want 2", len(top))
	}
	if top[0].Window != "bb" || top[1].Window != "cc" {
		t.Errorf("TopWindows order = %q, %q; want bb, cc", top[0].Window, top[1].Window)
	}
}

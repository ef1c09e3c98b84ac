package keyboard

import (
	"math/rand"
	"testing"

	"github.com/lrvideckis/keygen/pkg/errors"
)

func TestNewRejectsWrongLength(t *testing.T) {
	geo := DefaultGeometry()
	_, err := New(geo, make([]rune, 10))
	if !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Fatalf("want INVALID_LAYOUT, got %v", err)
	}
}

func TestNewRejectsReservedCell(t *testing.T) {
	geo := DefaultGeometry()
	keys := make([]rune, geo.NumPositions())
	keys[geo.Compose(2, 0, 4)] = 'x' // shift cell
	_, err := New(geo, keys)
	if !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Fatalf("want INVALID_LAYOUT, got %v", err)
	}
}

func TestReferenceValidates(t *testing.T) {
	lay := Reference()
	if err := lay.Validate(); err != nil {
		t.Fatalf("reference layout invalid: %v", err)
	}
}

func TestValidateNamesMissingChar(t *testing.T) {
	lay := Reference().Clone()
	pm := lay.PositionMap()
	p, ok := pm.Lookup('q')
	if !ok {
		t.Fatal("reference should place 'q'")
	}
	lay.keys[p] = 0
	err := lay.Validate()
	if !errors.Is(err, errors.ErrCodeMissingChar) {
		t.Fatalf("want MISSING_CHAR, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := Reference()
	b := a.Clone()
	pm := a.PositionMap()
	p, _ := pm.Lookup('e')
	b.keys[p] = 0
	if r, ok := a.At(p); !ok || r != 'e' {
		t.Error("mutating a clone must not affect the original")
	}
}

func TestSwap(t *testing.T) {
	lay := Reference().Clone()
	pm := lay.PositionMap()
	pe, _ := pm.Lookup('e')
	pt, _ := pm.Lookup('t')
	lay.Swap(pe, pt)
	if r, _ := lay.At(pe); r != 't' {
		t.Errorf("after swap At(pe) = %q, want 't'", r)
	}
	if r, _ := lay.At(pt); r != 'e' {
		t.Errorf("after swap At(pt) = %q, want 'e'", r)
	}
}

func TestShufflePreservesCharacterSet(t *testing.T) {
	lay := Reference().Clone()
	before := charCounts(lay)
	lay.Shuffle(25, rand.New(rand.NewSource(7)))
	after := charCounts(lay)

	if len(before) != len(after) {
		t.Fatalf("character multiset changed: %d vs %d distinct", len(before), len(after))
	}
	for r, n := range before {
		if after[r] != n {
			t.Fatalf("count of %q changed from %d to %d", r, n, after[r])
		}
	}
	if err := lay.Validate(); err != nil {
		t.Fatalf("shuffled layout invalid: %v", err)
	}
}

func charCounts(l Layout) map[rune]int {
	counts := make(map[rune]int)
	for _, r := range l.keys {
		if r != 0 {
			counts[r]++
		}
	}
	return counts
}

func TestMarshalParseRoundTrip(t *testing.T) {
	geo := DefaultGeometry()
	lay := Reference()

	text, err := lay.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(geo, string(text))
	if err != nil {
		t.Fatal(err)
	}
	for p := 0; p < geo.NumPositions(); p++ {
		want, _ := lay.At(Position(p))
		got, _ := back.At(Position(p))
		if want != got {
			t.Fatalf("position %d: %q != %q after round trip", p, got, want)
		}
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := Parse(DefaultGeometry(), "abc")
	if !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Fatalf("want INVALID_LAYOUT, got %v", err)
	}
}

func TestPositionMap(t *testing.T) {
	geo := DefaultGeometry()
	lay := Reference()
	pm := lay.PositionMap()

	// The space bar is always present at the virtual position.
	if p, ok := pm.Lookup(' '); !ok || p != geo.SpacePos {
		t.Errorf("Lookup(' ') = (%d,%v), want (%d,true)", p, ok, geo.SpacePos)
	}

	// Placed characters resolve to the slot that holds them.
	for p := 0; p < geo.NumPositions(); p++ {
		r, ok := lay.At(Position(p))
		if !ok {
			continue
		}
		if got, ok := pm.Lookup(r); !ok || got != Position(p) {
			t.Fatalf("Lookup(%q) = (%d,%v), want (%d,true)", r, got, ok, p)
		}
	}

	// Unplaced and out-of-range characters are absent, not errors.
	if _, ok := pm.Lookup('('); ok {
		t.Error("'(' is not placed and should be absent")
	}
	if _, ok := pm.Lookup(rune(200)); ok {
		t.Error("characters beyond the supported range should be absent")
	}
}

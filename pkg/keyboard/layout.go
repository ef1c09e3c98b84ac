package keyboard

import (
	"math/rand"
	"strings"

	"github.com/lrvideckis/keygen/pkg/errors"
)

// emptyMark encodes an empty slot in the textual layout form. It is outside
// the supported character range, so the encoding is unambiguous.
const emptyMark = '·'

// Layout assigns a character (or nothing) to every grid Position of a
// Geometry. Layouts are cheap to clone; search code clones the base and
// mutates the copy, so candidates never alias each other.
type Layout struct {
	geo  *Geometry
	keys []rune // 0 marks an empty slot
}

// New builds a Layout over geo from per-Position keys. The slice length must
// equal geo.NumPositions() and reserved cells must be empty.
func New(geo *Geometry, keys []rune) (Layout, error) {
	if len(keys) != geo.NumPositions() {
		return Layout{}, errors.New(errors.ErrCodeInvalidLayout,
			"layout has %d slots, geometry wants %d", len(keys), geo.NumPositions())
	}
	for p, r := range keys {
		if r == 0 {
			continue
		}
		row, col, _ := geo.Decompose(Position(p))
		if geo.IsReserved(row, col) {
			return Layout{}, errors.New(errors.ErrCodeInvalidLayout,
				"character %q placed on reserved cell (%d,%d)", r, row, col)
		}
	}
	lay := Layout{geo: geo, keys: make([]rune, len(keys))}
	copy(lay.keys, keys)
	return lay, nil
}

// Geometry returns the geometry this layout is laid out on.
func (l Layout) Geometry() *Geometry { return l.geo }

// At returns the character at p, if any.
func (l Layout) At(p Position) (rune, bool) {
	r := l.keys[p]
	return r, r != 0
}

// Clone returns an independent copy of the layout.
func (l Layout) Clone() Layout {
	keys := make([]rune, len(l.keys))
	copy(keys, l.keys)
	return Layout{geo: l.geo, keys: keys}
}

// Swap exchanges the characters at positions i and j in place.
func (l Layout) Swap(i, j Position) {
	l.keys[i], l.keys[j] = l.keys[j], l.keys[i]
}

// Shuffle applies n random swaps between eligible positions, drawing from
// rng. It mutates the layout in place.
func (l Layout) Shuffle(n int, rng *rand.Rand) {
	eligible := l.geo.EligiblePositions()
	for k := 0; k < n; k++ {
		i := eligible[rng.Intn(len(eligible))]
		j := eligible[rng.Intn(len(eligible))]
		l.Swap(i, j)
	}
}

// Validate checks that the layout covers the full required character set
// (plus the space bar, which the geometry provides). The returned error
// names the first missing character. Run this once on reference layouts at
// startup, not per candidate: swaps preserve the character multiset.
func (l Layout) Validate() error {
	pm := l.PositionMap()
	for _, r := range RequiredChars {
		if _, ok := pm.Lookup(r); !ok {
			return errors.New(errors.ErrCodeMissingChar, "layout is missing character %q", r)
		}
	}
	if _, ok := pm.Lookup(' '); !ok {
		return errors.New(errors.ErrCodeMissingChar, "layout is missing the space bar")
	}
	return nil
}

// MarshalText encodes the layout as one rune per slot, with a middle dot
// marking empty slots. The encoding round-trips through Parse.
func (l Layout) MarshalText() ([]byte, error) {
	var b strings.Builder
	for _, r := range l.keys {
		if r == 0 {
			b.WriteRune(emptyMark)
		} else {
			b.WriteRune(r)
		}
	}
	return []byte(b.String()), nil
}

// Parse decodes the textual layout form produced by MarshalText over geo.
func Parse(geo *Geometry, text string) (Layout, error) {
	runes := []rune(text)
	keys := make([]rune, len(runes))
	for i, r := range runes {
		if r != emptyMark {
			keys[i] = r
		}
	}
	return New(geo, keys)
}

// positionMapSize bounds the supported character range. Characters at or
// beyond it are never placeable and act as window delimiters in corpora.
const positionMapSize = 128

// PositionMap is the character→Position inverse index of one Layout. Build
// it once per candidate and query it for the whole scoring pass.
type PositionMap struct {
	geo *Geometry
	pos [positionMapSize]Position // -1 marks an absent character
}

// PositionMap builds the inverse index in O(layout size). The space bar is
// always present at the geometry's virtual space Position.
func (l Layout) PositionMap() *PositionMap {
	pm := &PositionMap{geo: l.geo}
	for i := range pm.pos {
		pm.pos[i] = -1
	}
	pm.pos[' '] = l.geo.SpacePos
	for p, r := range l.keys {
		if r != 0 && r < positionMapSize {
			pm.pos[r] = Position(p)
		}
	}
	return pm
}

// Lookup returns the Position holding r. Characters outside the supported
// range report not-present rather than failing.
func (pm *PositionMap) Lookup(r rune) (Position, bool) {
	if r < 0 || r >= positionMapSize {
		return -1, false
	}
	p := pm.pos[r]
	return p, p >= 0
}

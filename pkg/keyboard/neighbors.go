package keyboard

// Swap exchanges the characters at two Positions.
type Swap struct {
	I Position
	J Position
}

// overlaps reports whether two swaps touch a common Position.
func (s Swap) overlaps(t Swap) bool {
	return s.I == t.I || s.I == t.J || s.J == t.I || s.J == t.J
}

// Neighbors lazily enumerates every layout reachable from a base layout by a
// bounded number of character swaps, in a fixed deterministic order. The
// sequence is finite and restartable only by constructing a new generator;
// as long as the base layout holds no duplicate characters, distinct cursor
// values never yield the same layout.
type Neighbors struct {
	base   Layout
	single []Swap
	pairs  [][2]int // indices into single; empty for depth-1 generators
	cursor int
}

// SingleSwaps enumerates every layout one swap away from base: all unordered
// pairs of letter-bearing Positions, in lexicographic order. For N eligible
// positions that is N·(N-1)/2 layouts.
func SingleSwaps(base Layout) *Neighbors {
	eligible := base.Geometry().EligiblePositions()
	swaps := make([]Swap, 0, len(eligible)*(len(eligible)-1)/2)
	for a := 0; a < len(eligible); a++ {
		for b := a + 1; b < len(eligible); b++ {
			swaps = append(swaps, Swap{I: eligible[a], J: eligible[b]})
		}
	}
	return &Neighbors{base: base, single: swaps}
}

// DoubleSwaps enumerates every layout two class-constrained swaps away from
// base. Each individual swap keeps characters within their action class, so
// a tap slot only trades with a tap slot and a swipe slot only with a swipe
// slot; no character ever moves into a geometrically incompatible role.
// Disjoint swaps commute, so each unordered pair of disjoint swaps is
// emitted once. Two swaps sharing a Position compose to a 3-cycle of
// their three slots, and every 3-cycle on a slot triple is reachable
// from three different swap pairs; only the pair anchored on the
// triple's lowest Position is enumerated, in both orders, covering the
// two distinct cycles exactly once each.
func DoubleSwaps(base Layout) *Neighbors {
	geo := base.Geometry()
	var taps, swipes []Position
	for _, p := range geo.EligiblePositions() {
		if geo.IsTap(p) {
			taps = append(taps, p)
		} else {
			swipes = append(swipes, p)
		}
	}
	var swaps []Swap
	for _, class := range [][]Position{taps, swipes} {
		for a := 0; a < len(class); a++ {
			for b := a + 1; b < len(class); b++ {
				swaps = append(swaps, Swap{I: class[a], J: class[b]})
			}
		}
	}
	pairs := make([][2]int, 0, len(swaps)*(len(swaps)-1)/2)
	for a := range swaps {
		for b := a + 1; b < len(swaps); b++ {
			s, u := swaps[a], swaps[b]
			switch {
			case !s.overlaps(u):
				pairs = append(pairs, [2]int{a, b})
			case s.I == u.I:
				// Both swaps anchored on the lowest position of the
				// triple; their two orders yield the two 3-cycles.
				pairs = append(pairs, [2]int{a, b}, [2]int{b, a})
			}
		}
	}
	return &Neighbors{base: base, single: swaps, pairs: pairs}
}

// Len returns how many layouts the generator yields in total.
func (n *Neighbors) Len() int {
	if n.pairs != nil {
		return len(n.pairs)
	}
	return len(n.single)
}

// Next clones the base layout, applies the next precomputed swap (or swap
// pair) and advances the cursor. The second return is false once the
// neighborhood is exhausted.
func (n *Neighbors) Next() (Layout, bool) {
	if n.pairs != nil {
		if n.cursor >= len(n.pairs) {
			return Layout{}, false
		}
		p := n.pairs[n.cursor]
		n.cursor++
		lay := n.base.Clone()
		lay.Swap(n.single[p[0]].I, n.single[p[0]].J)
		lay.Swap(n.single[p[1]].I, n.single[p[1]].J)
		return lay, true
	}
	if n.cursor >= len(n.single) {
		return Layout{}, false
	}
	s := n.single[n.cursor]
	n.cursor++
	lay := n.base.Clone()
	lay.Swap(s.I, s.J)
	return lay, true
}

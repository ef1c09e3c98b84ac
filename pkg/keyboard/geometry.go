// Package keyboard models the physical thumb keyboard: its grid geometry,
// concrete character layouts, the character→position inverse index, and the
// swap neighborhoods used by the optimizer.
//
// A keyboard is a grid of cells. Each cell carries several sub-positions: one
// center "tap" and a ring of directional "swipes". A linear Position indexes
// one sub-position; the decomposition into (row, col, sub) and back is a
// bijection over the valid range. Different physical keyboards (grid shape,
// swipe count, reserved structural cells) are the same code parameterized by
// a Geometry value, never separate implementations.
package keyboard

import (
	"fmt"
	"math"
)

// Position is a linear index identifying one physical key action: a tap on a
// cell or one of its directional swipes. The space bar lives at a dedicated
// virtual Position outside the grid range.
type Position int

// Point is a location on the keyboard plane, in cell units.
// X grows rightward along columns, Y grows downward along rows.
type Point struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Cell identifies one key of the grid by row and column.
type Cell struct {
	Row int `toml:"row"`
	Col int `toml:"col"`
}

// Geometry describes one physical keyboard variant as data. All methods that
// take a Position treat out-of-range or class-mismatched input (asking for
// the swipe angle of a tap, the cell of the space bar) as a programming
// error and panic.
type Geometry struct {
	// Rows and Cols give the cell grid dimensions.
	Rows int
	Cols int

	// SubsPerCell is the number of sub-positions per cell. The last
	// sub-position (SubsPerCell-1) is the tap; the first SubsPerCell-1 are
	// swipe directions.
	SubsPerCell int

	// PhaseOffset rotates swipe direction 0 away from due "down-right".
	// A swipe's angle is (sub/numSwipes + PhaseOffset) * 2π.
	PhaseOffset float64

	// SwipeDistance is how far a swipe travels from the cell center,
	// in cell units.
	SwipeDistance float64

	// SwipeWidth is the nominal Fitts target width of a swipe direction
	// whose neighboring directions are both occupied. Each vacant sibling
	// direction adds SwipeWidthVacant and pulls the effective swipe angle
	// SwipeAngleVacant radians toward the vacant side.
	SwipeWidth       float64
	SwipeWidthVacant float64
	SwipeAngleVacant float64

	// LeftCols is the number of leftmost columns operated by the left thumb.
	LeftCols int

	// Reserved lists structural cells (shift, backspace) that never carry
	// characters and are excluded from swaps.
	Reserved []Cell

	// SpacePos is the virtual Position of the space bar. It must satisfy
	// SpacePos % SubsPerCell == SubsPerCell-1 so that space counts as a tap,
	// and must lie at or beyond NumPositions.
	SpacePos Position

	// SpaceCoord overrides the space bar's location on the plane.
	SpaceCoord Point

	// BaseCost is the static ergonomic cost of each cell, indexed
	// [row][col]. SpaceCost is the same for the space bar.
	BaseCost  [][]float64
	SpaceCost float64
}

// NumPositions returns the size of the valid grid Position range.
// Valid grid Positions are [0, NumPositions); SpacePos lies outside it.
func (g *Geometry) NumPositions() int {
	return g.Rows * g.Cols * g.SubsPerCell
}

func (g *Geometry) numSwipes() int {
	return g.SubsPerCell - 1
}

// Decompose splits a grid Position into (row, col, sub). It is the inverse
// of Compose and panics on out-of-range input.
func (g *Geometry) Decompose(p Position) (row, col, sub int) {
	if p < 0 || int(p) >= g.NumPositions() {
		panic(fmt.Sprintf("keyboard: position %d out of range [0,%d)", p, g.NumPositions()))
	}
	sub = int(p) % g.SubsPerCell
	spot := int(p) / g.SubsPerCell
	return spot / g.Cols, spot % g.Cols, sub
}

// Compose is the inverse of Decompose. It panics when row, col or sub lie
// outside the grid.
func (g *Geometry) Compose(row, col, sub int) Position {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols || sub < 0 || sub >= g.SubsPerCell {
		panic(fmt.Sprintf("keyboard: cell (%d,%d) sub %d out of range", row, col, sub))
	}
	return Position((row*g.Cols+col)*g.SubsPerCell + sub)
}

// IsSpace reports whether p is the dedicated space-bar Position.
func (g *Geometry) IsSpace(p Position) bool {
	return p == g.SpacePos
}

// IsTap reports whether p denotes a direct press rather than a swipe.
// The space bar is a tap.
func (g *Geometry) IsTap(p Position) bool {
	return int(p)%g.SubsPerCell == g.SubsPerCell-1
}

// IsReserved reports whether the cell at (row, col) is a structural cell.
func (g *Geometry) IsReserved(row, col int) bool {
	for _, c := range g.Reserved {
		if c.Row == row && c.Col == col {
			return true
		}
	}
	return false
}

// Coord returns the Euclidean center of p's cell, or the configured override
// for the space bar.
func (g *Geometry) Coord(p Position) Point {
	if g.IsSpace(p) {
		return g.SpaceCoord
	}
	row, col, _ := g.Decompose(p)
	return Point{X: float64(col), Y: float64(row)}
}

// SwipeAngle returns the compass angle of a swipe Position in radians,
// measured so that (sin, cos) project onto (Y, X). Panics when p is a tap.
func (g *Geometry) SwipeAngle(p Position) float64 {
	if g.IsTap(p) {
		panic(fmt.Sprintf("keyboard: position %d is a tap, has no swipe angle", p))
	}
	_, _, sub := g.Decompose(p)
	return (float64(sub)/float64(g.numSwipes()) + g.PhaseOffset) * 2 * math.Pi
}

// SwipeTarget returns where a swipe at p effectively ends and how wide its
// Fitts target is, given which sibling swipe directions the layout actually
// populates. A vacant sibling widens the target and lets the effective angle
// drift toward the vacant side. Passing a nil layout yields the nominal
// endpoint and width. Panics when p is a tap.
func (g *Geometry) SwipeTarget(p Position, lay *Layout) (Point, float64) {
	angle := g.SwipeAngle(p)
	width := g.SwipeWidth
	if lay != nil {
		row, col, sub := g.Decompose(p)
		n := g.numSwipes()
		cw := (sub + 1) % n
		ccw := (sub + n - 1) % n
		if _, ok := lay.At(g.Compose(row, col, cw)); !ok {
			width += g.SwipeWidthVacant
			angle += g.SwipeAngleVacant
		}
		if _, ok := lay.At(g.Compose(row, col, ccw)); !ok {
			width += g.SwipeWidthVacant
			angle -= g.SwipeAngleVacant
		}
	}
	end := g.Coord(p)
	sin, cos := math.Sincos(angle)
	end.Y += g.SwipeDistance * sin
	end.X += g.SwipeDistance * cos
	return end, width
}

// SwipeEndpoint returns just the effective endpoint from SwipeTarget.
func (g *Geometry) SwipeEndpoint(p Position, lay *Layout) Point {
	end, _ := g.SwipeTarget(p, lay)
	return end
}

// isLeft reports whether p is struck by the left thumb.
// Panics on the space bar, which belongs to neither hand.
func (g *Geometry) isLeft(p Position) bool {
	if g.IsSpace(p) {
		panic("keyboard: space bar has no hand")
	}
	_, col, _ := g.Decompose(p)
	return col < g.LeftCols
}

// SameHand reports whether p and q are struck by the same thumb.
// Panics when either is the space bar.
func (g *Geometry) SameHand(p, q Position) bool {
	return g.isLeft(p) == g.isLeft(q)
}

// SwipeSuitsHand reports whether the swipe at p runs in a direction that is
// comfortable for the thumb performing it. Even-indexed directions suit the
// left thumb, odd-indexed ones the right. Panics when p is a tap or space.
func (g *Geometry) SwipeSuitsHand(p Position) bool {
	if g.IsTap(p) {
		panic(fmt.Sprintf("keyboard: position %d is a tap, has no swipe direction", p))
	}
	_, _, sub := g.Decompose(p)
	return g.isLeft(p) == (sub%2 == 0)
}

// CellBaseCost returns the static ergonomic cost of pressing p, from the
// per-cell table or the space override.
func (g *Geometry) CellBaseCost(p Position) float64 {
	if g.IsSpace(p) {
		return g.SpaceCost
	}
	row, col, _ := g.Decompose(p)
	return g.BaseCost[row][col]
}

// EligiblePositions returns, in increasing order, every grid Position whose
// cell may carry characters. Reserved cells are excluded; all sub-positions
// of the remaining cells are included.
func (g *Geometry) EligiblePositions() []Position {
	out := make([]Position, 0, g.NumPositions())
	for p := 0; p < g.NumPositions(); p++ {
		row, col, _ := g.Decompose(Position(p))
		if !g.IsReserved(row, col) {
			out = append(out, Position(p))
		}
	}
	return out
}

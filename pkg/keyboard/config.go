package keyboard

import (
	"github.com/lrvideckis/keygen/pkg/errors"
)

// GeometryConfig is the TOML-facing description of a keyboard geometry.
// Zero-valued fields fall back to the built-in default geometry, so a config
// file only needs to state what it changes. New physical variants are data,
// not code.
type GeometryConfig struct {
	Rows             int         `toml:"rows"`
	Cols             int         `toml:"cols"`
	SubsPerCell      int         `toml:"subs_per_cell"`
	PhaseOffset      float64     `toml:"phase_offset"`
	SwipeDistance    float64     `toml:"swipe_distance"`
	SwipeWidth       float64     `toml:"swipe_width"`
	SwipeWidthVacant float64     `toml:"swipe_width_vacant"`
	SwipeAngleVacant float64     `toml:"swipe_angle_vacant"`
	LeftCols         int         `toml:"left_cols"`
	Reserved         []Cell      `toml:"reserved"`
	SpacePos         int         `toml:"space_pos"`
	SpaceCoord       []float64   `toml:"space_coord"` // [x, y]
	BaseCost         [][]float64 `toml:"base_cost"`
	SpaceCost        float64     `toml:"space_cost"`
}

// Build merges the config over the default geometry and validates the
// result.
func (c *GeometryConfig) Build() (*Geometry, error) {
	g := DefaultGeometry()
	if c == nil {
		return g, nil
	}
	if c.Rows > 0 {
		g.Rows = c.Rows
	}
	if c.Cols > 0 {
		g.Cols = c.Cols
	}
	if c.SubsPerCell > 0 {
		g.SubsPerCell = c.SubsPerCell
	}
	if c.PhaseOffset != 0 {
		g.PhaseOffset = c.PhaseOffset
	}
	if c.SwipeDistance > 0 {
		g.SwipeDistance = c.SwipeDistance
	}
	if c.SwipeWidth > 0 {
		g.SwipeWidth = c.SwipeWidth
	}
	if c.SwipeWidthVacant > 0 {
		g.SwipeWidthVacant = c.SwipeWidthVacant
	}
	if c.SwipeAngleVacant > 0 {
		g.SwipeAngleVacant = c.SwipeAngleVacant
	}
	if c.LeftCols > 0 {
		g.LeftCols = c.LeftCols
	}
	if c.Reserved != nil {
		g.Reserved = c.Reserved
	}
	if c.SpacePos > 0 {
		g.SpacePos = Position(c.SpacePos)
	}
	if len(c.SpaceCoord) == 2 {
		g.SpaceCoord = Point{X: c.SpaceCoord[0], Y: c.SpaceCoord[1]}
	}
	if c.BaseCost != nil {
		g.BaseCost = c.BaseCost
	}
	if c.SpaceCost > 0 {
		g.SpaceCost = c.SpaceCost
	}
	return g, validateGeometry(g)
}

func validateGeometry(g *Geometry) error {
	if g.SubsPerCell < 2 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"geometry needs at least one swipe direction and a tap, got subs_per_cell=%d", g.SubsPerCell)
	}
	if int(g.SpacePos) < g.NumPositions() {
		return errors.New(errors.ErrCodeInvalidConfig,
			"space_pos %d collides with the grid range [0,%d)", g.SpacePos, g.NumPositions())
	}
	if !g.IsTap(g.SpacePos) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"space_pos %d must decompose to the tap sub-position", g.SpacePos)
	}
	if len(g.BaseCost) != g.Rows {
		return errors.New(errors.ErrCodeInvalidConfig,
			"base_cost has %d rows, geometry has %d", len(g.BaseCost), g.Rows)
	}
	for r, row := range g.BaseCost {
		if len(row) != g.Cols {
			return errors.New(errors.ErrCodeInvalidConfig,
				"base_cost row %d has %d columns, geometry has %d", r, len(row), g.Cols)
		}
	}
	if g.LeftCols <= 0 || g.LeftCols >= g.Cols {
		return errors.New(errors.ErrCodeInvalidConfig,
			"left_cols %d must split the %d columns between two hands", g.LeftCols, g.Cols)
	}
	for _, c := range g.Reserved {
		if c.Row < 0 || c.Row >= g.Rows || c.Col < 0 || c.Col >= g.Cols {
			return errors.New(errors.ErrCodeInvalidConfig,
				"reserved cell (%d,%d) outside the %dx%d grid", c.Row, c.Col, g.Rows, g.Cols)
		}
	}
	return nil
}

package keyboard

// Default geometry: a 3×6 thumb grid where every cell offers a center tap
// and four diagonal swipes. Position numbering within a cell:
//
//	 2   3
//	   4
//	 1   0
//
// sub 4 is the tap; subs 0..3 are swipes at ((sub/4 + 1/8)·2π), i.e. the
// four diagonals starting at down-right. The shift cell (2,0) and backspace
// cell (2,5) are structural and never carry characters, leaving 16 cells ×
// 5 sub-positions = 80 letter-bearing Positions. The space bar is a virtual
// tap at Position 109 centered below the grid.
func DefaultGeometry() *Geometry {
	return &Geometry{
		Rows:             3,
		Cols:             6,
		SubsPerCell:      5,
		PhaseOffset:      1.0 / 8.0,
		SwipeDistance:    0.45,
		SwipeWidth:       0.7,
		SwipeWidthVacant: 0.3,
		SwipeAngleVacant: 0.13,
		LeftCols:         3,
		Reserved:         []Cell{{Row: 2, Col: 0}, {Row: 2, Col: 5}},
		SpacePos:         109,
		SpaceCoord:       Point{X: 2.5, Y: 3},
		BaseCost: [][]float64{
			{1.6, 1.2, 1.0, 1.0, 1.2, 1.6},
			{1.2, 0.8, 0.6, 0.6, 0.8, 1.2},
			{1.0, 0.6, 0.4, 0.4, 0.6, 1.0},
		},
		SpaceCost: 0.2,
	}
}

// RequiredChars is the character set every strict layout must place:
// all letters and the symbols the keyboard carries, plus the space bar.
const RequiredChars = "`~!@#$%^&*-_=+\\|;:'\",./?qwertyuiopasdfghjklzxcvbnm"

// referenceKeys is the hand-tuned starting layout, cell by cell in Position
// order. 0 marks an empty slot. Bracket pairs ()[]{}<> are deliberately not
// placed; they are added manually to the winning layout afterwards.
var referenceKeys = []rune{
	// row 0
	'b', 0, ';', 0, 'l',
	'z', 0, '*', 0, 'c',
	'?', 0, '#', 0, 'm',
	0, '@', 0, '|', 'p',
	0, '$', 0, '/', 'u',
	0, '"', 0, '%', 'o',
	// row 1
	'j', 0, '+', 0, 'd',
	'g', 0, '\\', 0, 'n',
	'v', 0, 'x', 0, 'r',
	0, '\'', 0, '!', 'a',
	0, 'k', 0, '-', 'i',
	0, '~', 0, '_', 'f',
	// row 2
	0, 0, 0, 0, 0, // shift
	'=', 0, 'q', 0, 's',
	',', '&', 'w', 0, 't',
	'^', 'y', '`', '.', 'e',
	0, ':', 0, 0, 'h',
	0, 0, 0, 0, 0, // backspace
}

// Reference returns the built-in reference layout for the default geometry.
// It is validated once at construction; a missing required character is a
// data error and panics at startup rather than surfacing mid-search.
func Reference() Layout {
	geo := DefaultGeometry()
	lay, err := New(geo, referenceKeys)
	if err != nil {
		panic(err)
	}
	if err := lay.Validate(); err != nil {
		panic(err)
	}
	return lay
}

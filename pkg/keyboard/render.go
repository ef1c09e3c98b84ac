package keyboard

import (
	"fmt"
	"strings"
)

// String renders the layout as a spatial grid for diagnostic display: three
// text lines per cell row showing the swipe characters in their compass
// corners and the tap character in the center. Empty slots render blank and
// the space bar is not part of the grid. Pure formatting; no influence on
// scoring.
func (l Layout) String() string {
	geo := l.geo
	var b strings.Builder
	for row := 0; row < geo.Rows; row++ {
		l.writeRow(&b, row, 2, 3) // north-west, north-east corners
		l.writeRow(&b, row, 4)    // center tap
		l.writeRow(&b, row, 1, 0) // south-west, south-east corners
		b.WriteString(strings.Repeat("------- ", geo.Cols-1))
		b.WriteString("-------\n")
	}
	return b.String()
}

func (l Layout) writeRow(b *strings.Builder, row int, subs ...int) {
	geo := l.geo
	for col := 0; col < geo.Cols; col++ {
		if len(subs) == 1 {
			fmt.Fprintf(b, "   %c   |", l.printable(row, col, subs[0]))
		} else {
			fmt.Fprintf(b, " %c   %c |", l.printable(row, col, subs[0]), l.printable(row, col, subs[1]))
		}
	}
	b.WriteByte('\n')
}

func (l Layout) printable(row, col, sub int) rune {
	if sub >= l.geo.SubsPerCell {
		return ' '
	}
	r, ok := l.At(l.geo.Compose(row, col, sub))
	if !ok {
		return ' '
	}
	return r
}

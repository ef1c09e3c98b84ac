// Package penalty scores keyboard layouts against a text corpus.
//
// A corpus is compiled once into a QuartadTable: occurrence counts of every
// window of up to four consecutive typeable characters. The table's keys are
// raw substrings, so it is independent of any candidate layout and is safely
// shared, read-only, across concurrent evaluations. A Model then folds the
// table against one candidate layout, combining static positional cost,
// swipe cost, Fitts's-Law travel time and hand-alternation adjustments into
// a single scalar (with an optional per-term Observer for diagnostics).
package penalty

import (
	"github.com/lrvideckis/keygen/pkg/keyboard"
)

// QuartadTable maps a corpus window of 1–4 characters to its occurrence
// count. Built once per corpus and reference position map, then reused
// unmodified across many layout evaluations.
type QuartadTable map[string]int

// CompileQuartads scans the corpus and counts every window of up to four
// consecutive placeable characters. A character absent from pm (punctuation
// the keyboard doesn't carry, bytes outside the supported range) resets the
// window to begin strictly after it, so no recorded window ever spans a
// typing gap. Windows shorter than four characters at text boundaries or
// after a reset are recorded too; they later feed only the penalty terms
// whose history they satisfy.
//
// The result is deterministic for a given corpus and position map.
func CompileQuartads(corpus string, pm *keyboard.PositionMap) QuartadTable {
	table := make(QuartadTable)
	start := 0
	for i := 0; i < len(corpus); i++ {
		if _, ok := pm.Lookup(rune(corpus[i])); !ok {
			start = i + 1
			continue
		}
		end := i + 1
		if end-start > 4 {
			start = end - 4
		}
		table[corpus[start:end]]++
	}
	return table
}

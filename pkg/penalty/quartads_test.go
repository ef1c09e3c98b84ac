package penalty

import (
	"testing"

	"github.com/lrvideckis/keygen/pkg/keyboard"
)

func refPM() *keyboard.PositionMap {
	return keyboard.Reference().PositionMap()
}

func TestCompileQuartadsWindows(t *testing.T) {
	// Every character of "ab ab" is placeable (space included), so the
	// window grows to four and then slides.
	table := CompileQuartads("ab ab", refPM())

	want := QuartadTable{
		"a":    1,
		"ab":   1,
		"ab ":  1,
		"ab a": 1,
		"b ab": 1,
	}
	if len(table) != len(want) {
		t.Fatalf("table has %d windows, want %d: %v", len(table), len(want), table)
	}
	for w, n := range want {
		if table[w] != n {
			t.Errorf("count of %q = %d, want %d", w, table[w], n)
		}
	}
}

func TestCompileQuartadsCountsRepeats(t *testing.T) {
	table := CompileQuartads("aaaa", refPM())
	if table["a"] != 1 || table["aa"] != 1 || table["aaa"] != 1 || table["aaaa"] != 1 {
		t.Errorf("unexpected counts: %v", table)
	}

	table = CompileQuartads("aaaaa", refPM())
	if table["aaaa"] != 2 {
		t.Errorf("count of \"aaaa\" = %d, want 2", table["aaaa"])
	}
}

func TestCompileQuartadsResetsOnUnplaceable(t *testing.T) {
	// '(' is not on the layout: the window must restart strictly after it,
	// never spanning the gap.
	table := CompileQuartads("ab(cd", refPM())

	want := QuartadTable{"a": 1, "ab": 1, "c": 1, "cd": 1}
	if len(table) != len(want) {
		t.Fatalf("table has %d windows, want %d: %v", len(table), len(want), table)
	}
	for w, n := range want {
		if table[w] != n {
			t.Errorf("count of %q = %d, want %d", w, table[w], n)
		}
	}
}

func TestCompileQuartadsResetsOnHighBytes(t *testing.T) {
	table := CompileQuartads("a\xc3\xa9b", refPM())
	for w := range table {
		for i := 0; i < len(w); i++ {
			if w[i] >= 128 {
				t.Errorf("window %q spans an unsupported byte", w)
			}
		}
	}
	if table["a"] != 1 || table["b"] != 1 {
		t.Errorf("unexpected counts: %v", table)
	}
	if _, ok := table["ab"]; ok {
		t.Error("windows must not bridge unsupported bytes")
	}
}

func TestCompileQuartadsEmptyCorpus(t *testing.T) {
	if table := CompileQuartads("", refPM()); len(table) != 0 {
		t.Errorf("empty corpus compiled to %v", table)
	}
}

func TestCompileQuartadsDeterministic(t *testing.T) {
	const corpus = "the quick brown fox jumps over the lazy dog"
	a := CompileQuartads(corpus, refPM())
	b := CompileQuartads(corpus, refPM())
	if len(a) != len(b) {
		t.Fatalf("table sizes differ: %d vs %d", len(a), len(b))
	}
	for w, n := range a {
		if b[w] != n {
			t.Fatalf("count of %q differs: %d vs %d", w, n, b[w])
		}
	}
}

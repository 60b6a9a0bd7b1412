package client

import "testing"

func TestWrapLinesSplitsOnWordBoundary(t *testing.T) {
	got := wrapLines([]string{"alice: the quick brown fox"}, 12)
	want := []string{"alice: the", "quick brown", "fox"}
	if len(got) != len(want) {
		t.Fatalf("wrapLines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("wrapLines[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWrapLinesHardBreaksLongWords(t *testing.T) {
	got := wrapLines([]string{"aaaaaaaaaaaaaaaaaaaa"}, 10)
	if len(got) != 2 || got[0] != "aaaaaaaaaa" || got[1] != "aaaaaaaaaa" {
		t.Fatalf("wrapLines = %v", got)
	}
}

func TestWrapLinesKeepsShortLines(t *testing.T) {
	got := wrapLines([]string{"hi", ""}, 40)
	if len(got) != 2 || got[0] != "hi" || got[1] != "" {
		t.Fatalf("wrapLines = %v", got)
	}
}

func TestCountLines(t *testing.T) {
	if got := countLines(""); got != 0 {
		t.Fatalf("countLines(\"\") = %d", got)
	}
	if got := countLines("a"); got != 1 {
		t.Fatalf("countLines(a) = %d", got)
	}
	if got := countLines("a\nb\nc"); got != 3 {
		t.Fatalf("countLines(multi) = %d", got)
	}
}

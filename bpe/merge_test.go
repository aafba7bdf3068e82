package bpe

import "testing"

// lookupMerge builds rankLookup functions over a plain map[string]uint32
// keyed by raw byte span, for use in isolation tests of the merge
// engine without a full BpeEncoding.
func lookupMerge(ranks map[string]uint32) (rankLookup, rankLookup) {
	lookup := func(piece []byte, start, end int) uint32 {
		r, ok := ranks[string(piece[start:end])]
		if !ok {
			return infRank
		}
		return r
	}
	return lookup, lookup
}

func TestBytePairMergeLeftmostTieBreak(t *testing.T) {
	// "ab" and "bc" both rank 0; "abc" is absent, so only one of the
	// two pairs can win. The leftmost ("ab") must be merged first,
	// producing ["ab", "c"].
	ranks := map[string]uint32{
		"a":  10,
		"b":  11,
		"c":  12,
		"ab": 0,
		"bc": 0,
	}
	pairRank, pieceRank := lookupMerge(ranks)
	got := bytePairMerge([]byte("abc"), pairRank, pieceRank)
	want := []Rank{0, 12}
	if !equalRanks(got, want) {
		t.Errorf("got %v, want %v (ab,c)", got, want)
	}
}

func TestBytePairMergeSingleByte(t *testing.T) {
	ranks := map[string]uint32{"a": 5}
	pairRank, pieceRank := lookupMerge(ranks)
	got := bytePairMerge([]byte("a"), pairRank, pieceRank)
	if !equalRanks(got, []Rank{5}) {
		t.Errorf("got %v, want [5]", got)
	}
}

func TestBytePairMergeFullCollapse(t *testing.T) {
	ranks := map[string]uint32{
		"a":   10,
		"b":   11,
		"c":   12,
		"ab":  1,
		"abc": 0,
	}
	pairRank, pieceRank := lookupMerge(ranks)
	got := bytePairMerge([]byte("abc"), pairRank, pieceRank)
	if !equalRanks(got, []Rank{0}) {
		t.Errorf("got %v, want [0] (abc)", got)
	}
}

func equalRanks(a, b []Rank) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

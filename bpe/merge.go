package bpe

import "math"

// infRank marks a pair with no assigned rank: infinitely low merge
// priority, never chosen while any finite-rank pair remains.
const infRank = math.MaxUint32

// part is one element of the working byte-pair-merge state: the byte
// offset it starts at, and the rank of merging it with its current
// right neighbor (infRank if that pair has no vocabulary entry).
type part struct {
	start int
	rank  uint32
}

// rankLookup resolves the rank of piece[start:end], or infRank if that
// byte span has no vocabulary entry.
type rankLookup func(piece []byte, start, end int) uint32

// bytePairMerge runs the canonical tiktoken byte-pair merge over a
// single fragment's bytes and returns the resulting piece ranks, in
// order, via pieceRank (a single-piece lookup covering the whole final
// span).
//
// Ties are broken leftmost-first: among parts sharing the current
// minimum rank, the scan below only replaces minRank on a strict '<',
// so the first (leftmost) minimum found is always the one kept.
func bytePairMerge(piece []byte, pairRank rankLookup, pieceRank rankLookup) []Rank {
	if len(piece) == 1 {
		return []Rank{Rank(pieceRank(piece, 0, 1))}
	}

	parts := make([]part, 0, len(piece)+1)
	minIdx := -1
	minRank := uint32(infRank)
	for i := 0; i < len(piece)-1; i++ {
		r := pairRank(piece, i, i+2)
		if r < minRank {
			minRank = r
			minIdx = i
		}
		parts = append(parts, part{start: i, rank: r})
	}
	parts = append(parts, part{start: len(piece) - 1, rank: infRank})
	parts = append(parts, part{start: len(piece), rank: infRank})

	// spanRank computes the rank of merging parts[i] with its current
	// right neighbor by looking at the four-part window [i, i+3): the
	// resulting span runs from parts[i].start to parts[i+3].start. If
	// there is no part at i+3, the merged part would have no right
	// neighbor left to pair with, so it gets infRank.
	spanRank := func(i int) uint32 {
		if i < 0 || i+3 >= len(parts) {
			return infRank
		}
		return pairRank(piece, parts[i].start, parts[i+3].start)
	}

	for minRank != infRank {
		i := minIdx
		if i > 0 {
			parts[i-1].rank = spanRank(i - 1)
		}
		parts[i].rank = spanRank(i)
		parts = append(parts[:i+1], parts[i+2:]...)

		minIdx = -1
		minRank = infRank
		for j := 0; j < len(parts)-1; j++ {
			if parts[j].rank < minRank {
				minRank = parts[j].rank
				minIdx = j
			}
		}
	}

	out := make([]Rank, 0, len(parts)-1)
	for i := 0; i < len(parts)-1; i++ {
		out = append(out, Rank(pieceRank(piece, parts[i].start, parts[i+1].start)))
	}
	return out
}

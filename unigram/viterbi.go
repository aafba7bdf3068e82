package unigram

import "fmt"

// negInf is a score below any real piece score (negative
// log-probabilities never get this small). viterbiSegment does not use
// it: reachability is tracked in its reached table.
const negInf = -1e18

// step records, for each reachable byte offset, the offset it was
// reached from and the token ids emitted by that step (more than one
// only for a byte-fallback step).
type step struct {
	from int
	ids  []int
}

// viterbiSegment finds the maximum-log-probability segmentation of
// text into vocabulary pieces and byte-fallback tokens, using m's
// trie and byte-fallback table. Byte fallback for the rune at i is
// only recorded if nothing — from any earlier position — has already
// reached i's end offset, so a vocabulary match always wins
// regardless of score, per the byte-fallback precedence invariant.
func viterbiSegment(m *Model, text string) ([]int, error) {
	n := len(text)
	best := make([]float64, n+1)
	reached := make([]bool, n+1)
	prev := make([]step, n+1)

	best[0] = 0
	reached[0] = true
	prev[0] = step{from: -1}

	for i := 0; i < n; i++ {
		if !reached[i] {
			continue
		}
		for _, mt := range m.trie.findPiecesAt(text, i) {
			cand := best[i] + mt.score
			if !reached[mt.end] || cand > best[mt.end] {
				best[mt.end] = cand
				reached[mt.end] = true
				prev[mt.end] = step{from: i, ids: []int{mt.id}}
			}
		}
		r, size := decodeRuneAt(text, i)
		end := i + size
		if !reached[end] {
			prev[end] = step{from: i, ids: m.byteFallbackIDs(r)}
			best[end] = best[i] // byte fallback is scored as 0
			reached[end] = true
		}
	}

	if !reached[n] {
		return nil, fmt.Errorf("unigram: no segmentation reaches end of input (len=%d)", n)
	}

	var ids []int
	for pos := n; pos > 0; {
		s := prev[pos]
		for i := len(s.ids) - 1; i >= 0; i-- {
			ids = append(ids, s.ids[i])
		}
		pos = s.from
	}
	reverse(ids)
	return ids, nil
}

func reverse(ids []int) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}

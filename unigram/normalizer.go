package unigram

import (
	"strings"
	"unicode"
)

// metaSymbol is SentencePiece's stand-in for a literal space, U+2581
// LOWER ONE EIGHTH BLOCK.
const metaSymbol = '▁'

// normalizer applies SentencePiece's pre-segmentation text rewrite:
// optional whitespace collapsing, an optional leading dummy space, and
// meta-symbol substitution for every remaining space.
type normalizer struct {
	addDummyPrefix         bool
	removeExtraWhitespaces bool
}

func (n normalizer) normalize(text string) string {
	if n.removeExtraWhitespaces {
		text = collapseWhitespace(text)
	}
	// The empty-input short-circuit (no dummy prefix on empty text)
	// only applies once whitespace collapsing has had a chance to
	// reduce the input to "" — without removeExtraWhitespaces, an
	// empty input still gets the dummy prefix like any other text.
	if n.addDummyPrefix && (text != "" || !n.removeExtraWhitespaces) {
		text = " " + text
	}
	return strings.ReplaceAll(text, " ", string(metaSymbol))
}

// denormalize is the inverse transform applied after decode: restore
// spaces, then strip the single leading one introduced by the dummy
// prefix.
func (n normalizer) denormalize(text string) string {
	text = strings.ReplaceAll(text, string(metaSymbol), " ")
	if n.addDummyPrefix {
		text = strings.TrimPrefix(text, " ")
	}
	return text
}

func collapseWhitespace(text string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

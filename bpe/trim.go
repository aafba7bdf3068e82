package bpe

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// TrimDirection selects which end of a token run context-packing
// utilities trim from.
type TrimDirection uint

const (
	TrimTop TrimDirection = iota
	TrimBottom
	TrimNone
)

// TokensValidUTF8 reports whether decoding ranks produces well-formed
// UTF-8. Canonical tiktoken decoders store raw bytes directly, so this
// stdlib check on the concatenated decoder bytes is the byte-exact
// equivalent of the legacy rune-packed-decoder lookup table: no
// per-vocabulary precomputed table is needed.
func (e *BpeEncoding) TokensValidUTF8(ranks Ranks) bool {
	b, err := e.DecodeBytes(ranks)
	if err != nil {
		return false
	}
	return utf8.Valid(b)
}

// TrimToValidUTF8 drops trailing ranks one at a time until the
// remaining run decodes to well-formed UTF-8. It never drops more
// than necessary to reach the nearest earlier whole-piece boundary.
func (e *BpeEncoding) TrimToValidUTF8(ranks Ranks) Ranks {
	for len(ranks) > 0 && !e.TokensValidUTF8(ranks) {
		ranks = ranks[:len(ranks)-1]
	}
	return ranks
}

// TrimNewlines drops whole lines from the top or bottom of a decoded
// token run until it fits within limit tokens after re-encoding.
func (e *BpeEncoding) TrimNewlines(ranks Ranks, direction TrimDirection, limit int) Ranks {
	if len(ranks) <= limit {
		return ranks
	}
	if direction == TrimNone {
		return Ranks{}
	}
	decoded, err := e.Decode(ranks)
	if err != nil {
		decoded = string(mustDecodeLossy(e, ranks))
	}
	lines := strings.Split(decoded, "\n")

	var start, end, step int
	switch direction {
	case TrimTop:
		start, end, step = len(lines)-1, -1, -1
	case TrimBottom:
		start, end, step = 0, len(lines), 1
	}

	acc := Ranks{}
	for idx := start; idx != end; idx += step {
		line := lines[idx]
		if direction == TrimTop {
			line = "\n" + line
		} else {
			line = line + "\n"
		}
		lineRanks := e.Encode(line, nil)
		if len(lineRanks)+len(acc) > limit {
			return acc
		}
		if direction == TrimTop {
			acc = append(append(Ranks{}, lineRanks...), acc...)
		} else {
			acc = append(acc, lineRanks...)
		}
	}
	return acc
}

func mustDecodeLossy(e *BpeEncoding, ranks Ranks) []byte {
	b, _ := e.DecodeBytes(ranks)
	return b
}

// AlignAndSizeTokens truncates tokens to desiredLength, then trims
// back to a whole-piece, valid-UTF-8 boundary, re-encoding across the
// cut point since decode/re-encode can change the token count. It
// returns the aligned run and how many of the original tokens were
// consumed.
func (e *BpeEncoding) AlignAndSizeTokens(tokens Ranks, desiredLength int) (aligned Ranks, consumed int) {
	if desiredLength > len(tokens) {
		desiredLength = len(tokens)
	}
	chunk := tokens[:desiredLength]
	trimmed := e.TrimToValidUTF8(chunk)
	idx := len(trimmed)
	if len(trimmed) == len(chunk) {
		return trimmed, idx
	}

	decoded, _ := e.Decode(trimmed)
	chunk = e.Encode(decoded, nil)
	remainder := desiredLength - len(chunk)
	if remainder <= 0 {
		return chunk, idx
	}

	end := idx + remainder
	if end > len(tokens) {
		end = len(tokens)
	}
	addl := e.TrimToValidUTF8(tokens[idx:end])
	chunk = append(chunk, addl...)
	idx += len(addl)

	for {
		decoded, _ = e.Decode(chunk)
		reencoded := e.Encode(decoded, nil)
		chunk = reencoded
		if len(chunk) <= desiredLength && e.TokensValidUTF8(chunk) {
			break
		}
		chunk = chunk[:len(chunk)-1]
		idx--
	}
	return chunk, idx
}

// TrimIncompleteSentence drops a trailing sentence fragment that does
// not end in a Unicode punctuation character, unless doing so would remove more
// than 20% of the text.
func (e *BpeEncoding) TrimIncompleteSentence(ranks Ranks) (Ranks, error) {
	decoded, err := e.Decode(ranks)
	if err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(decoded,
		prose.WithTagging(false), prose.WithExtraction(false), prose.WithTokenization(false))
	if err != nil {
		return nil, err
	}
	sentences := doc.Sentences()
	if len(sentences) == 0 {
		return ranks, nil
	}
	last := sentences[len(sentences)-1].Text

	var lastRune rune
	for _, r := range last {
		if !unicode.IsSpace(r) {
			lastRune = r
		}
	}
	text := doc.Text
	if !unicode.IsPunct(lastRune) {
		if trimPos := strings.LastIndex(text, last); trimPos >= 1 {
			text = doc.Text[:trimPos-1]
		}
	}
	text = strings.TrimSpace(text)
	if float64(len(text)) < float64(len(doc.Text))*0.8 {
		return ranks, nil
	}
	return e.Encode(text, nil), nil
}

// TrimSentences trims whole sentences from the top or bottom of a
// decoded token run until it fits within limit tokens.
func (e *BpeEncoding) TrimSentences(ranks Ranks, direction TrimDirection, limit int) (Ranks, error) {
	if len(ranks) <= limit {
		return ranks, nil
	}
	if direction == TrimNone {
		return Ranks{}, nil
	}
	decoded, err := e.Decode(ranks)
	if err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(decoded,
		prose.WithTagging(false), prose.WithExtraction(false), prose.WithTokenization(false))
	if err != nil {
		return nil, err
	}
	sentences := doc.Sentences()

	var start, end, step, textBegin, textEnd, lastSentence int
	textEnd = len(doc.Text)
	switch direction {
	case TrimTop:
		start, end, step = len(sentences)-1, -1, -1
	case TrimBottom:
		start, end, step = 0, len(sentences), 1
	default:
		return Ranks{}, nil
	}

	for idx := start; idx != end; idx += step {
		sentence := sentences[idx].Text
		switch direction {
		case TrimTop:
			sentenceIdx := strings.LastIndex(doc.Text[textBegin:], sentence) + textBegin
			if sentenceIdx > 0 && sentenceIdx < len(doc.Text) && unicode.IsSpace(rune(doc.Text[sentenceIdx])) {
				sentenceIdx--
			}
			toTokenize := doc.Text[sentenceIdx:]
			if len(e.Encode(toTokenize, nil)) >= limit {
				toEncode := doc.Text[textEnd:]
				return e.Encode(toEncode, nil), nil
			}
			textEnd = sentenceIdx - 1
		case TrimBottom:
			sentenceIdx := strings.Index(doc.Text[textBegin:textEnd], sentence) + textBegin
			sentenceEnd := sentenceIdx + len(sentence)
			if sentenceEnd < textEnd && doc.Text[sentenceEnd:sentenceEnd+1] == "\n" {
				sentenceEnd++
			}
			toTokenize := doc.Text[0:sentenceEnd]
			if len(e.Encode(toTokenize, nil)) >= limit {
				toEncode := doc.Text[0:lastSentence]
				return e.Encode(toEncode, nil), nil
			}
			lastSentence = sentenceEnd
			textBegin += len(sentence)
		}
	}
	return Ranks{}, nil
}

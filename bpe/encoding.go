// Package bpe implements byte-pair-encoding tokenization compatible
// with OpenAI's tiktoken, plus the CLIP text-encoder specialization.
package bpe

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// SpecialToken pairs a reserved literal with its fixed rank.
type SpecialToken struct {
	Literal string
	Rank    Rank
}

// Hooks lets a specialization (CLIP) rewrite text before encoding and
// rewrite the token stream after encoding, and rewrite the token
// stream before decoding. A plain BpeEncoding uses the identity hooks.
type Hooks struct {
	BeforeEncode func(text string) string
	AfterEncode  func(ranks Ranks) Ranks
	BeforeDecode func(ranks Ranks) Ranks
}

// BpeEncoding is an immutable, concurrency-safe tiktoken-compatible
// encoder/decoder. Construct one via a registry entry (see registry.go)
// or NewBpeEncoding directly from a loaded vocabulary.
type BpeEncoding struct {
	name string

	encoder map[string]Rank
	decoder map[Rank][]byte

	specialEncoder map[string]Rank
	specialDecoder map[Rank]string
	specialPattern *regexp.Regexp // alternation of quoted special literals, or nil

	pattern *regexp.Regexp

	cache *mergeCache
	hooks Hooks
}

// NewBpeEncoding builds an encoding from a byte-sequence-to-rank
// vocabulary, a pre-tokenization pattern, and a set of special tokens.
// The decoder is derived from the encoder; ranks must be unique across
// both tables.
func NewBpeEncoding(name string, vocab map[string]Rank, pattern string, specials []SpecialToken) (*BpeEncoding, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	decoder := make(map[Rank][]byte, len(vocab))
	for piece, rank := range vocab {
		if _, dup := decoder[rank]; dup {
			return nil, fmt.Errorf("%w: duplicate rank %d", ErrMalformedVocabulary, rank)
		}
		decoder[rank] = []byte(piece)
	}

	specialEncoder := make(map[string]Rank, len(specials))
	specialDecoder := make(map[Rank]string, len(specials))
	quoted := make([]string, 0, len(specials))
	for _, s := range specials {
		if _, dup := decoder[s.Rank]; dup {
			return nil, fmt.Errorf("%w: special rank %d collides with regular vocabulary", ErrMalformedVocabulary, s.Rank)
		}
		specialEncoder[s.Literal] = s.Rank
		specialDecoder[s.Rank] = s.Literal
		quoted = append(quoted, regexp.QuoteMeta(s.Literal))
	}
	// Longest literal first, so overlapping specials (one a prefix of
	// another) prefer the longer match, mirroring alternation order
	// sensitivity in RE2.
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

	var specialPat *regexp.Regexp
	if len(quoted) > 0 {
		specialPat, err = compilePattern(strings.Join(quoted, "|"))
		if err != nil {
			return nil, err
		}
	}

	return &BpeEncoding{
		name:           name,
		encoder:        vocab,
		decoder:        decoder,
		specialEncoder: specialEncoder,
		specialDecoder: specialDecoder,
		specialPattern: specialPat,
		pattern:        re,
		cache:          newMergeCache(),
		hooks:          Hooks{},
	}, nil
}

// Name returns the name the encoding was constructed with (its
// registry name when built by GetBpe).
func (e *BpeEncoding) Name() string { return e.name }

// SpecialTokens returns the set of special-token literals this
// encoding recognizes.
func (e *BpeEncoding) SpecialTokens() []string {
	out := make([]string, 0, len(e.specialEncoder))
	for lit := range e.specialEncoder {
		out = append(out, lit)
	}
	return out
}

// Encode tokenizes text. allowedSpecial names which special-token
// literals, if found in text, are emitted as their reserved rank
// rather than tokenized byte-wise; pass nil to disallow all of them.
func (e *BpeEncoding) Encode(text string, allowedSpecial map[string]struct{}) Ranks {
	if e.hooks.BeforeEncode != nil {
		text = e.hooks.BeforeEncode(text)
	}
	out := e.encode(text, allowedSpecial)
	if e.hooks.AfterEncode != nil {
		out = e.hooks.AfterEncode(out)
	}
	return out
}

// EncodeWithSpecialTokens encodes text treating every known special
// token literal as allowed.
func (e *BpeEncoding) EncodeWithSpecialTokens(text string) Ranks {
	allowed := make(map[string]struct{}, len(e.specialEncoder))
	for lit := range e.specialEncoder {
		allowed[lit] = struct{}{}
	}
	return e.Encode(text, allowed)
}

func (e *BpeEncoding) encode(text string, allowedSpecial map[string]struct{}) Ranks {
	out := make(Ranks, 0, len(text)/3+1)
	rest := text
	for len(rest) > 0 {
		loc, lit := e.nextAllowedSpecial(rest, allowedSpecial)
		var chunk string
		if loc == nil {
			chunk, rest = rest, ""
		} else {
			chunk, rest = rest[:loc[0]], rest[loc[1]:]
		}
		out = append(out, e.encodeOrdinary(chunk)...)
		if loc != nil {
			out = append(out, e.specialEncoder[lit])
		}
	}
	return out
}

// nextAllowedSpecial finds the first special-token match in text that
// is present in allowedSpecial. Matches of specials not in
// allowedSpecial are skipped over (that literal tokenizes byte-wise
// like any other text).
func (e *BpeEncoding) nextAllowedSpecial(text string, allowedSpecial map[string]struct{}) ([]int, string) {
	if e.specialPattern == nil || len(allowedSpecial) == 0 {
		return nil, ""
	}
	searchFrom := 0
	for searchFrom <= len(text) {
		loc := e.specialPattern.FindStringIndex(text[searchFrom:])
		if loc == nil {
			return nil, ""
		}
		start, end := loc[0]+searchFrom, loc[1]+searchFrom
		lit := text[start:end]
		if _, ok := allowedSpecial[lit]; ok {
			return []int{start, end}, lit
		}
		searchFrom = start + 1
	}
	return nil, ""
}

func (e *BpeEncoding) encodeOrdinary(text string) Ranks {
	out := make(Ranks, 0, len(text)/3+1)
	for _, frag := range e.pattern.FindAllString(text, -1) {
		out = append(out, e.encodeFragment(frag)...)
	}
	return out
}

func (e *BpeEncoding) encodeFragment(frag string) Ranks {
	if r, ok := e.encoder[frag]; ok {
		return Ranks{r}
	}
	if cached, ok := e.cache.get(frag); ok {
		return cached
	}
	pairRank := func(piece []byte, start, end int) uint32 {
		r, ok := e.encoder[string(piece[start:end])]
		if !ok {
			return infRank
		}
		return uint32(r)
	}
	ranks := bytePairMerge([]byte(frag), pairRank, pairRank)
	e.cache.put(frag, ranks)
	return ranks
}

// Decode renders a rank sequence back to text. Ranks outside both the
// regular and special decoders are an error; invalid UTF-8 in the
// decoded bytes is replaced by U+FFFD rather than failing.
func (e *BpeEncoding) Decode(ranks Ranks) (string, error) {
	if e.hooks.BeforeDecode != nil {
		ranks = e.hooks.BeforeDecode(ranks)
	}
	b, err := e.DecodeBytes(ranks)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

// DecodeBytes is Decode without the final UTF-8 string conversion;
// useful for streaming decoders that need to detect split multi-byte
// characters at a buffer boundary.
func (e *BpeEncoding) DecodeBytes(ranks Ranks) ([]byte, error) {
	out := make([]byte, 0, len(ranks)*3)
	for _, r := range ranks {
		if b, ok := e.decoder[r]; ok {
			out = append(out, b...)
			continue
		}
		if lit, ok := e.specialDecoder[r]; ok {
			out = append(out, lit...)
			continue
		}
		return nil, fmt.Errorf("%w: %d", ErrUnknownToken, r)
	}
	return out, nil
}

// Package unigram implements SentencePiece-compatible Unigram
// language-model tokenization: Viterbi segmentation over a trie of
// vocabulary pieces, with byte-fallback for codepoints the
// vocabulary does not cover.
package unigram

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/arborcode/tokensuite/resources"
	"github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
)

const (
	sentencepieceNormal      = sentencepiece.ModelProto_SentencePiece_NORMAL
	sentencepieceUserDefined = sentencepiece.ModelProto_SentencePiece_USER_DEFINED
	sentencepieceByte        = sentencepiece.ModelProto_SentencePiece_BYTE
)

// Model is an immutable, concurrency-safe Unigram tokenizer built
// from a decoded SentencePiece ModelProto. Safe for concurrent reads
// once constructed.
type Model struct {
	pieces       []pieceRecord
	trie         *trieNode
	byteFallback map[byte]int // hex-decoded byte -> token id
	idToByte     map[int]byte // inverse of byteFallback, for Decode
	norm         normalizer
	unkID        int
	bosID        int
	eosID        int
}

var byteFallbackPattern = regexp.MustCompile(`^<0x([0-9A-Fa-f]{2})>$`)

// NewModelFromBytes builds a Model from a serialized SentencePiece
// ModelProto.
func NewModelFromBytes(raw []byte) (*Model, error) {
	dm, err := decodeModelProto(raw)
	if err != nil {
		return nil, err
	}
	return newModelFromDecoded(dm)
}

func newModelFromDecoded(dm *decodedModel) (*Model, error) {
	m := &Model{
		pieces:       dm.pieces,
		trie:         newTrieNode(),
		byteFallback: make(map[byte]int),
		idToByte:     make(map[int]byte),
		unkID:        dm.unkID,
		bosID:        dm.bosID,
		eosID:        dm.eosID,
		norm: normalizer{
			addDummyPrefix:         dm.addDummyPrefix,
			removeExtraWhitespaces: dm.removeExtraWhitespaces,
		},
	}

	seen := make(map[string]bool, len(dm.pieces))
	for id, p := range dm.pieces {
		switch p.kind {
		case sentencepieceByte:
			if sub := byteFallbackPattern.FindStringSubmatch(p.text); sub != nil {
				b, err := strconv.ParseUint(sub[1], 16, 8)
				if err != nil {
					return nil, fmt.Errorf("%w: malformed byte piece %q", ErrMalformedVocabulary, p.text)
				}
				m.byteFallback[byte(b)] = id
				m.idToByte[id] = byte(b)
			}
		case sentencepieceNormal, sentencepieceUserDefined:
			if seen[p.text] {
				continue
			}
			seen[p.text] = true
			m.trie.insert(p.text, id, p.score)
		}
	}
	return m, nil
}

// LoadSentencePiece resolves a model identifier (local path, embedded
// default, or URL) through the resources fetcher boundary and parses
// it as a SentencePiece ModelProto.
func LoadSentencePiece(ctx context.Context, rsrc string) (*Model, error) {
	raw, err := resources.Fetch(ctx, rsrc)
	if err != nil {
		return nil, fmt.Errorf("unigram: fetching %s: %w", rsrc, err)
	}
	return NewModelFromBytes(raw)
}

// VocabSize is the number of pieces (the highest valid token id + 1).
func (m *Model) VocabSize() int { return len(m.pieces) }

// BosID, EosID, UnkID are the fixed ids configured on the model's
// TrainerSpec (defaulting to 1, 2, 0 respectively when the model
// omits them).
func (m *Model) BosID() int { return m.bosID }
func (m *Model) EosID() int { return m.eosID }
func (m *Model) UnkID() int { return m.unkID }

// Encode tokenizes text into piece ids via Viterbi segmentation over
// the normalized form of text.
func (m *Model) Encode(text string) ([]int, error) {
	normalized := m.norm.normalize(text)
	return viterbiSegment(m, normalized)
}

// Decode renders a piece-id sequence back to text. Maximal runs of
// byte-fallback ids are grouped and UTF-8-decoded together so that
// multi-byte characters split across several byte tokens are
// reassembled correctly; bytes that still do not form valid UTF-8 are
// replaced by U+FFFD.
func (m *Model) Decode(ids []int) (string, error) {
	var out []byte
	var byteRun []byte
	flush := func() {
		out = append(out, byteRun...)
		byteRun = nil
	}
	for _, id := range ids {
		if id < 0 || id >= len(m.pieces) {
			return "", fmt.Errorf("%w: %d", ErrUnknownToken, id)
		}
		if b, ok := m.byteForID(id); ok {
			byteRun = append(byteRun, b)
			continue
		}
		flush()
		out = append(out, m.pieces[id].text...)
	}
	flush()
	return m.norm.denormalize(strings.ToValidUTF8(string(out), "�")), nil
}

func (m *Model) byteForID(id int) (byte, bool) {
	b, ok := m.idToByte[id]
	return b, ok
}

// byteFallbackIDs UTF-8-encodes r and maps each byte to its
// byte-fallback token id, or to UnkID for any byte that has no
// byte-fallback piece.
func (m *Model) byteFallbackIDs(r rune) []int {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		if id, ok := m.byteFallback[buf[i]]; ok {
			ids[i] = id
		} else {
			ids[i] = m.unkID
		}
	}
	return ids
}

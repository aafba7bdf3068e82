package bpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// tinyVocab is a byte-level vocabulary big enough to exercise the
// merge engine and special-token scanning without needing a real
// downloaded rank file.
func tinyVocab() map[string]Rank {
	v := map[string]Rank{}
	for b := 0; b < 256; b++ {
		v[string([]byte{byte(b)})] = Rank(b)
	}
	v["he"] = 256
	v["ll"] = 257
	v["hell"] = 258
	v["hello"] = 259
	v[" world"] = 260
	return v
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc, err := NewBpeEncoding("tiny", tinyVocab(), r50kPattern, nil)
	assert.NoError(t, err)

	text := "hello world"
	ranks := enc.Encode(text, nil)
	assert.NotEmpty(t, ranks)

	decoded, err := enc.Decode(ranks)
	assert.NoError(t, err)
	assert.Equal(t, text, decoded)
}

func TestEncodeMergesGreedyByRank(t *testing.T) {
	enc, err := NewBpeEncoding("tiny", tinyVocab(), r50kPattern, nil)
	assert.NoError(t, err)

	ranks := enc.encodeFragment("hello")
	assert.Equal(t, Ranks{259}, ranks)
}

func TestSpecialTokenScanning(t *testing.T) {
	vocab := tinyVocab()
	enc, err := NewBpeEncoding("tiny", vocab, r50kPattern, []SpecialToken{
		{Literal: "<|endoftext|>", Rank: 50256},
	})
	assert.NoError(t, err)

	allowed := map[string]struct{}{"<|endoftext|>": {}}
	ranks := enc.Encode("hi<|endoftext|>there", allowed)
	assert.Contains(t, ranks, Rank(50256))

	// Without allowedSpecial, the literal is tokenized byte-wise and
	// 50256 never appears.
	ranksDisallowed := enc.Encode("hi<|endoftext|>there", nil)
	assert.NotContains(t, ranksDisallowed, Rank(50256))
}

func TestDecodeUnknownTokenErrors(t *testing.T) {
	enc, err := NewBpeEncoding("tiny", tinyVocab(), r50kPattern, nil)
	assert.NoError(t, err)

	_, err = enc.Decode(Ranks{99999})
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestNewBpeEncodingRejectsDuplicateRanks(t *testing.T) {
	vocab := map[string]Rank{"a": 0, "b": 0}
	_, err := NewBpeEncoding("bad", vocab, r50kPattern, nil)
	assert.ErrorIs(t, err, ErrMalformedVocabulary)
}

func TestMergeCacheHitProducesSameResult(t *testing.T) {
	enc, err := NewBpeEncoding("tiny", tinyVocab(), r50kPattern, nil)
	assert.NoError(t, err)

	first := enc.encodeFragment("hello")
	second := enc.encodeFragment("hello")
	assert.Equal(t, first, second)
}

package bpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func wordVocab() map[string]Rank {
	v := map[string]Rank{}
	for b := 0; b < 256; b++ {
		v[string([]byte{byte(b)})] = Rank(b)
	}
	words := []string{"The", " quick", " brown", " fox", ".", "\n", " jumps", " again"}
	for i, w := range words {
		v[w] = Rank(300 + i)
	}
	return v
}

func TestTokensValidUTF8(t *testing.T) {
	enc, err := NewBpeEncoding("tiny", wordVocab(), r50kPattern, nil)
	assert.NoError(t, err)

	ranks := enc.Encode("The quick brown fox.", nil)
	assert.True(t, enc.TokensValidUTF8(ranks))

	// A lone leading byte of a would-be multi-byte rune (if such a
	// piece existed) would fail; simulate with an unknown-continuation
	// byte piece directly.
	assert.False(t, enc.TokensValidUTF8(Ranks{0xC2}))
}

func TestTrimNewlinesTrimsBottom(t *testing.T) {
	enc, err := NewBpeEncoding("tiny", wordVocab(), r50kPattern, nil)
	assert.NoError(t, err)

	text := "The quick\nbrown fox"
	ranks := enc.Encode(text, nil)
	trimmed := enc.TrimNewlines(ranks, TrimBottom, 4)
	assert.LessOrEqual(t, len(trimmed), 4)
}

func TestAlignAndSizeTokensNeverExceedsDesiredLength(t *testing.T) {
	enc, err := NewBpeEncoding("tiny", wordVocab(), r50kPattern, nil)
	assert.NoError(t, err)

	ranks := enc.Encode("The quick brown fox jumps again.", nil)
	aligned, consumed := enc.AlignAndSizeTokens(ranks, 3)
	assert.LessOrEqual(t, len(aligned), 3)
	assert.LessOrEqual(t, consumed, len(ranks))
}
